// Package tg: транспорт шлюза поверх TDLib (go-tdlib).
package tg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/phone"
	"github.com/larriantoniy/wa_gateway/internal/ports"
)

var ErrRateLimited = errors.New("tdlib: too many requests")

const (
	eventBuffer  = 32
	qrPollPeriod = time.Second
)

// Transport реализует ports.Transport через TDLib
type Transport struct {
	log    *slog.Logger
	cfg    Config
	params *client.SetTdlibParametersRequest

	events    chan domain.Event
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	client *client.Client
	chats  map[string]int64 // цифры номера → id приватного чата
}

// NewFactory: фабрика для SessionController: новый Transport на каждую реинициализацию
func NewFactory(cfg Config) ports.TransportFactory {
	return func(log *slog.Logger) (ports.Transport, error) {
		return New(cfg, log)
	}
}

func New(cfg Config, log *slog.Logger) (*Transport, error) {
	sessionDir := cfg.sessionDir()
	dbDir := filepath.Join(sessionDir, "database")
	filesDir := filepath.Join(sessionDir, "files")

	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir files dir: %w", err)
	}

	if _, err := client.SetLogVerbosityLevel(&client.SetLogVerbosityLevelRequest{
		NewVerbosityLevel: 1,
	}); err != nil {
		log.Error("TDLib SetLogVerbosityLevel", "error", err)
	}

	return &Transport{
		log:    log.With("component", "tdlib", "session", cfg.Session),
		cfg:    cfg,
		params: cfg.ToTdParams(dbDir, filesDir),
		events: make(chan domain.Event, eventBuffer),
		done:   make(chan struct{}),
		chats:  make(map[string]int64),
	}, nil
}

func (t *Transport) Events() <-chan domain.Event { return t.events }

// Start запускает авторизацию в фоне и сразу возвращается
func (t *Transport) Start(ctx context.Context) error {
	if t.isClosed() {
		return errTransportClosed
	}
	go t.run(ctx)
	return nil
}

func (t *Transport) run(ctx context.Context) {
	checkConnectivity(ctx, t.log, t.cfg.Proxy)

	auth := &qrAuthorizer{t: t, params: t.params, poll: qrPollPeriod}
	tdCli, err := client.NewClient(auth, t.cfg.options()...)
	if err != nil {
		if t.isClosed() {
			return
		}
		t.log.Error("TDLib NewClient error", "error", err)
		t.emit(domain.Event{Type: domain.EventAuthFailure, Payload: err.Error()})
		return
	}
	t.attach(tdCli)

	me, err := tdCli.GetMe()
	if err != nil {
		t.log.Error("GetMe failed", "error", err)
		t.emit(domain.Event{Type: domain.EventAuthFailure, Payload: err.Error()})
		return
	}
	t.emit(domain.Event{Type: domain.EventAuthenticated})

	listener := tdCli.GetListener()
	defer listener.Close()

	t.log.Info("TDLib client initialized and authorized", "self_id", me.Id)
	t.emit(domain.Event{Type: domain.EventReady})

	for {
		select {
		case <-t.done:
			return
		case <-ctx.Done():
			return
		case update, ok := <-listener.Updates:
			if !ok {
				t.emit(domain.Event{Type: domain.EventDisconnected, Payload: "update stream closed"})
				return
			}
			t.processUpdate(tdCli, update)
		}
	}
}

func (t *Transport) processUpdate(c *client.Client, update client.Type) {
	switch upd := update.(type) {
	case *client.UpdateNewMessage:
		msg, ok := inboundFromMessage(upd.Message, func(userID int64) (string, error) {
			u, err := c.GetUser(&client.GetUserRequest{UserId: userID})
			if err != nil {
				return "", err
			}
			return u.PhoneNumber, nil
		})
		if ok {
			t.emit(domain.Event{Type: domain.EventMessage, Message: msg})
		}

	case *client.UpdateAuthorizationState:
		if reason, down := disconnectReason(upd.AuthorizationState); down {
			t.log.Warn("authorization lost", "state", reason)
			t.emit(domain.Event{Type: domain.EventDisconnected, Payload: reason})
		}
	}
}

// SendText: адрес → пользователь по номеру → приватный чат → текст
func (t *Transport) SendText(ctx context.Context, to, text string) (string, error) {
	c := t.current()
	if c == nil {
		return "", domain.ErrSessionNotReady
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chatID, err := t.chatFor(c, phone.Digits(to))
	if err != nil {
		return "", t.sendError(to, err)
	}

	msg, err := c.SendMessage(&client.SendMessageRequest{
		ChatId: chatID,
		InputMessageContent: &client.InputMessageText{
			Text:       &client.FormattedText{Text: text},
			ClearDraft: true,
		},
	})
	if err != nil {
		return "", t.sendError(to, err)
	}
	return strconv.FormatInt(msg.Id, 10), nil
}

func (t *Transport) chatFor(c *client.Client, digits string) (int64, error) {
	t.mu.Lock()
	id, ok := t.chats[digits]
	t.mu.Unlock()
	if ok {
		return id, nil
	}

	user, err := c.SearchUserByPhoneNumber(&client.SearchUserByPhoneNumberRequest{PhoneNumber: digits})
	if err != nil {
		return 0, fmt.Errorf("search user %s: %w", digits, err)
	}
	chat, err := c.CreatePrivateChat(&client.CreatePrivateChatRequest{UserId: user.Id})
	if err != nil {
		return 0, fmt.Errorf("create chat with %d: %w", user.Id, err)
	}

	t.mu.Lock()
	t.chats[digits] = chat.Id
	t.mu.Unlock()
	return chat.Id, nil
}

func (t *Transport) sendError(to string, err error) error {
	if isTooManyRequests(err) {
		t.log.Error("SendMessage rate-limited: too many requests", "to", to, "error", err)
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	t.log.Error("SendMessage failed", "to", to, "error", err)
	return err
}

func (t *Transport) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
		if c := t.current(); c != nil {
			c.Close()
		}
		t.log.Info("TDLib client closed")
	})
}

func (t *Transport) attach(c *client.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.client = c
}

func (t *Transport) current() *client.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client
}

func (t *Transport) isClosed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// emit блокируется, пока подписчик не прочтёт событие или транспорт не закроют
func (t *Transport) emit(ev domain.Event) {
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

// inboundFromMessage пропускает только текст от другого пользователя с известным номером
func inboundFromMessage(m *client.Message, lookupPhone func(userID int64) (string, error)) (*domain.InboundMessage, bool) {
	if m == nil || m.IsOutgoing {
		return nil, false
	}
	sender, ok := m.SenderId.(*client.MessageSenderUser)
	if !ok {
		return nil, false
	}
	content, ok := m.Content.(*client.MessageText)
	if !ok || content.Text == nil {
		return nil, false
	}

	number, err := lookupPhone(sender.UserId)
	if err != nil || number == "" {
		return nil, false
	}

	return &domain.InboundMessage{
		Sender:     phone.Address(number),
		Body:       content.Text.Text,
		ReceivedAt: time.Unix(int64(m.Date), 0),
	}, true
}

func disconnectReason(state client.AuthorizationState) (string, bool) {
	switch state.(type) {
	case *client.AuthorizationStateLoggingOut, *client.AuthorizationStateClosing, *client.AuthorizationStateClosed:
		return state.AuthorizationStateType(), true
	default:
		return "", false
	}
}

func isTooManyRequests(err error) bool {
	var tdErr *client.Error
	if errors.As(err, &tdErr) {
		if tdErr.Code == 429 {
			return true
		}
		if strings.Contains(strings.ToLower(tdErr.Message), "too many requests") {
			return true
		}
	}
	return false
}
