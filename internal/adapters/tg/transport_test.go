package tg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

func textMessage(userID int64, text string) *client.Message {
	return &client.Message{
		SenderId: &client.MessageSenderUser{UserId: userID},
		Content:  &client.MessageText{Text: &client.FormattedText{Text: text}},
		Date:     1700000000,
	}
}

func phoneBook(book map[int64]string) func(int64) (string, error) {
	return func(id int64) (string, error) {
		p, ok := book[id]
		if !ok {
			return "", errors.New("no such user")
		}
		return p, nil
	}
}

func TestInboundFromMessage(t *testing.T) {
	lookup := phoneBook(map[int64]string{7: "6281234", 8: ""})

	msg, ok := inboundFromMessage(textMessage(7, "!help"), lookup)
	require.True(t, ok)
	assert.Equal(t, "6281234@c.us", msg.Sender)
	assert.Equal(t, "!help", msg.Body)
	assert.Equal(t, time.Unix(1700000000, 0), msg.ReceivedAt)

	outgoing := textMessage(7, "hi")
	outgoing.IsOutgoing = true
	photo := &client.Message{
		SenderId: &client.MessageSenderUser{UserId: 7},
		Content:  &client.MessagePhoto{},
	}
	fromChat := &client.Message{
		SenderId: &client.MessageSenderChat{ChatId: -100},
		Content:  &client.MessageText{Text: &client.FormattedText{Text: "x"}},
	}

	for name, m := range map[string]*client.Message{
		"nil":        nil,
		"outgoing":   outgoing,
		"photo":      photo,
		"chat":       fromChat,
		"no phone":   textMessage(8, "x"),
		"lookup err": textMessage(9, "x"),
	} {
		_, ok := inboundFromMessage(m, lookup)
		assert.False(t, ok, name)
	}
}

func TestDisconnectReason(t *testing.T) {
	reason, down := disconnectReason(&client.AuthorizationStateClosed{})
	assert.True(t, down)
	assert.Equal(t, client.TypeAuthorizationStateClosed, reason)

	_, down = disconnectReason(&client.AuthorizationStateLoggingOut{})
	assert.True(t, down)

	_, down = disconnectReason(&client.AuthorizationStateReady{})
	assert.False(t, down)
}

func TestIsTooManyRequests(t *testing.T) {
	assert.True(t, isTooManyRequests(&client.Error{Code: 429, Message: "FLOOD"}))
	assert.True(t, isTooManyRequests(fmt.Errorf("send: %w", &client.Error{Code: 400, Message: "Too Many Requests: retry after 5"})))
	assert.False(t, isTooManyRequests(&client.Error{Code: 400, Message: "PHONE_NOT_FOUND"}))
	assert.False(t, isTooManyRequests(errors.New("429")))
}

func TestToTdParams(t *testing.T) {
	p := Config{ApiID: 42, ApiHash: "hash"}.ToTdParams("/db", "/files")
	assert.Equal(t, int32(42), p.ApiId)
	assert.Equal(t, "hash", p.ApiHash)
	assert.Equal(t, "/db", p.DatabaseDirectory)
	assert.Equal(t, "/files", p.FilesDirectory)
	assert.Equal(t, "en", p.SystemLanguageCode)
	assert.Equal(t, "Notification Gateway", p.DeviceModel)

	p = Config{LangCode: "id", DeviceModel: "Server"}.ToTdParams("", "")
	assert.Equal(t, "id", p.SystemLanguageCode)
	assert.Equal(t, "Server", p.DeviceModel)
}

func TestProxyOptions(t *testing.T) {
	assert.Empty(t, Config{}.options())
	assert.Empty(t, Config{Proxy: &ProxyConfig{Server: "h", Port: 1}}.options(), "disabled proxy")
	assert.Len(t, Config{Proxy: &ProxyConfig{Enabled: true, Server: "h", Port: 1080}}.options(), 1)
}

func TestProxyNetworks(t *testing.T) {
	assert.Equal(t, []string{"tcp4"}, proxyNetworks("10.0.0.1"))
	assert.Equal(t, []string{"tcp6"}, proxyNetworks("::1"))
	assert.Equal(t, []string{"tcp6", "tcp4"}, proxyNetworks("proxy.example"))
}

func bareTransport() *Transport {
	return &Transport{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		events: make(chan domain.Event, 1),
		done:   make(chan struct{}),
		chats:  make(map[string]int64),
	}
}

func TestTransport_EmitUnblocksOnClose(t *testing.T) {
	tr := bareTransport()
	tr.emit(domain.Event{Type: domain.EventQR, Payload: "a"})

	returned := make(chan struct{})
	go func() {
		tr.emit(domain.Event{Type: domain.EventQR, Payload: "b"})
		close(returned)
	}()

	tr.Close()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("emit stayed blocked after Close")
	}
	tr.Close()
}

func TestTransport_SendBeforeAuth(t *testing.T) {
	tr := bareTransport()
	defer tr.Close()

	_, err := tr.SendText(context.Background(), "6281234@c.us", "hi")
	require.ErrorIs(t, err, domain.ErrSessionNotReady)
}

func TestTransport_StartAfterClose(t *testing.T) {
	tr := bareTransport()
	tr.Close()
	require.ErrorIs(t, tr.Start(context.Background()), errTransportClosed)
}
