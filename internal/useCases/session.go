package useCases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/ports"
)

// RetryPolicy: фиксированная задержка перед реинициализацией.
// MaxAttempts == 0 означает «без ограничения».
type RetryPolicy struct {
	Delay       time.Duration
	MaxAttempts int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delay: 5 * time.Second}
}

type stopper interface {
	Stop() bool
}

// afterFunc совпадает по смыслу с time.AfterFunc
type afterFunc func(d time.Duration, f func()) stopper

func timeAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// допустимые переходы; всё, чего нет в таблице, логируется и игнорируется
var transitions = map[domain.SessionState]map[domain.EventType]domain.SessionState{
	domain.StateInitializing: {
		domain.EventQR:            domain.StateAwaitingScan,
		domain.EventAuthenticated: domain.StateAuthenticated,
		domain.EventReady:         domain.StateReady,
		domain.EventAuthFailure:   domain.StateFailed,
		domain.EventDisconnected:  domain.StateDisconnected,
	},
	domain.StateAwaitingScan: {
		domain.EventQR:            domain.StateAwaitingScan,
		domain.EventAuthenticated: domain.StateAuthenticated,
		domain.EventReady:         domain.StateReady,
		domain.EventAuthFailure:   domain.StateFailed,
		domain.EventDisconnected:  domain.StateDisconnected,
	},
	domain.StateAuthenticated: {
		domain.EventReady:        domain.StateReady,
		domain.EventAuthFailure:  domain.StateFailed,
		domain.EventDisconnected: domain.StateDisconnected,
	},
	domain.StateReady: {
		domain.EventAuthFailure:  domain.StateFailed,
		domain.EventDisconnected: domain.StateDisconnected,
	},
}

// SessionController владеет единственной сессией и текущим транспортом.
//
// События транспорта читает одна горутина на поколение транспорта, поэтому
// переходы применяются строго по одному и по порядку. Мьютекс нужен только
// для читателей снаружи (HTTP-хендлеры, DispatchService).
type SessionController struct {
	log     *slog.Logger
	factory ports.TransportFactory
	qr      ports.QRRenderer
	retry   RetryPolicy
	after   afterFunc
	now     func() time.Time

	mu         sync.RWMutex
	session    domain.Session
	transport  ports.Transport
	generation uint64
	stop       chan struct{} // закрывается при смене поколения
	attempts   int
	pending    stopper // запланированная реинициализация
	closed     bool
	ctx        context.Context

	onInbound    func(domain.InboundMessage)
	onTransition []func(domain.Status)

	wg sync.WaitGroup
}

type SessionOption func(*SessionController)

func WithRetryPolicy(p RetryPolicy) SessionOption {
	return func(c *SessionController) { c.retry = p }
}

func WithClock(now func() time.Time) SessionOption {
	return func(c *SessionController) { c.now = now }
}

func NewSessionController(
	log *slog.Logger,
	factory ports.TransportFactory,
	qr ports.QRRenderer,
	opts ...SessionOption,
) *SessionController {
	c := &SessionController{
		log:     log.With("component", "session"),
		factory: factory,
		qr:      qr,
		retry:   DefaultRetryPolicy(),
		after:   timeAfterFunc,
		now:     time.Now,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = domain.Session{State: domain.StateInitializing, LastTransition: c.now()}
	return c
}

// OnInbound задаёт обработчик входящих сообщений. Вызывать до Start.
func (c *SessionController) OnInbound(fn func(domain.InboundMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInbound = fn
}

// OnTransition подписывает наблюдателя на снимки статуса после каждого перехода
func (c *SessionController) OnTransition(fn func(domain.Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTransition = append(c.onTransition, fn)
}

// Start поднимает первый транспорт. ctx живёт всё время работы контроллера.
func (c *SessionController) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.initialize()
}

// Close останавливает таймер реинициализации, читателя событий и транспорт
func (c *SessionController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.pending != nil {
		if c.pending.Stop() {
			// таймер не успел сработать, reinitialize не вызовет Done
			c.wg.Done()
		}
		c.pending = nil
	}
	t := c.transport
	c.transport = nil
	c.supersedeLocked()
	c.mu.Unlock()

	if t != nil {
		t.Close()
	}
	c.wg.Wait()
	c.log.Info("session controller stopped")
}

func (c *SessionController) Status() domain.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Status()
}

func (c *SessionController) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.State == domain.StateReady
}

// PendingAuthArtifact рендерит свежий data URI текущего QR.
// ok == false, если сессия не ждёт сканирования.
func (c *SessionController) PendingAuthArtifact(ctx context.Context) (string, bool, error) {
	c.mu.RLock()
	state, payload := c.session.State, c.session.PendingAuthArtifact
	c.mu.RUnlock()

	if state != domain.StateAwaitingScan || payload == "" {
		return "", false, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	uri, err := c.qr.DataURI(payload)
	if err != nil {
		c.log.Error("Error generating QR code", "error", err)
		return "", false, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	return uri, true, nil
}

// SendText отправляет готовый текст на каноничный адрес через текущий транспорт
func (c *SessionController) SendText(ctx context.Context, to, text string) (string, error) {
	c.mu.RLock()
	ready := c.session.State == domain.StateReady
	t := c.transport
	c.mu.RUnlock()

	if !ready || t == nil {
		return "", domain.ErrSessionNotReady
	}
	return t.SendText(ctx, to, text)
}

// initialize заменяет текущий транспорт новым. Безопасно вызывать повторно:
// каждый вызов полностью вытесняет предыдущий транспорт.
func (c *SessionController) initialize() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	old := c.transport
	c.transport = nil
	c.supersedeLocked()
	gen := c.generation
	stop := c.stop
	ctx := c.ctx
	status, changed := c.setStateLocked(domain.StateInitializing, "")
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if changed {
		c.notify(status)
	}
	c.log.Info("initializing transport", "generation", gen)

	t, err := c.factory(c.log.With("generation", gen))
	if err != nil {
		c.fail(gen, domain.EventAuthFailure, fmt.Errorf("%w: create: %w", domain.ErrTransportFailure, err))
		return
	}

	c.mu.Lock()
	if c.closed || c.generation != gen {
		c.mu.Unlock()
		t.Close()
		return
	}
	c.transport = t
	// подписываемся до Start, чтобы не потерять первые события
	c.wg.Add(1)
	c.mu.Unlock()

	go c.consume(gen, stop, t.Events())

	if err := t.Start(ctx); err != nil {
		c.fail(gen, domain.EventAuthFailure, fmt.Errorf("%w: start: %w", domain.ErrTransportFailure, err))
	}
}

// supersedeLocked закрывает stop-канал текущего поколения и открывает новое
func (c *SessionController) supersedeLocked() {
	if c.stop != nil {
		close(c.stop)
	}
	c.generation++
	c.stop = make(chan struct{})
}

func (c *SessionController) consume(gen uint64, stop <-chan struct{}, events <-chan domain.Event) {
	defer c.wg.Done()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handle(gen, ev)
		}
	}
}

func (c *SessionController) handle(gen uint64, ev domain.Event) {
	if ev.Type == domain.EventMessage {
		c.mu.RLock()
		fn, current := c.onInbound, c.generation == gen
		c.mu.RUnlock()
		if current && fn != nil && ev.Message != nil {
			fn(*ev.Message)
		}
		return
	}

	switch ev.Type {
	case domain.EventAuthFailure:
		c.fail(gen, ev.Type, fmt.Errorf("%w: %s", domain.ErrAuthFailure, ev.Payload))
	case domain.EventDisconnected:
		c.fail(gen, ev.Type, fmt.Errorf("%w: %s", domain.ErrTransportFailure, ev.Payload))
	default:
		c.apply(gen, ev)
	}
}

func (c *SessionController) apply(gen uint64, ev domain.Event) {
	c.mu.Lock()
	if c.generation != gen || c.closed {
		c.mu.Unlock()
		return
	}
	next, ok := transitions[c.session.State][ev.Type]
	if !ok {
		from := c.session.State
		c.mu.Unlock()
		c.log.Warn("ignoring transport event", "event", ev.Type, "state", from)
		return
	}

	artifact := ""
	if ev.Type == domain.EventQR {
		artifact = ev.Payload
	}
	if next == domain.StateReady {
		c.attempts = 0
	}
	status, _ := c.setStateLocked(next, artifact)
	c.mu.Unlock()

	c.log.Info("session event", "event", ev.Type, "state", next)
	c.notify(status)
}

// fail переводит сессию в Failed/Disconnected и планирует ровно одну реинициализацию
func (c *SessionController) fail(gen uint64, evType domain.EventType, cause error) {
	c.mu.Lock()
	if c.generation != gen || c.closed {
		c.mu.Unlock()
		return
	}
	next, ok := transitions[c.session.State][evType]
	if !ok {
		// уже в Failed/Disconnected, реинициализация запланирована
		c.mu.Unlock()
		return
	}
	status, _ := c.setStateLocked(next, "")

	scheduled := false
	if c.pending == nil && (c.retry.MaxAttempts == 0 || c.attempts < c.retry.MaxAttempts) {
		c.attempts++
		c.wg.Add(1)
		c.pending = c.after(c.retry.Delay, c.reinitialize)
		scheduled = true
	}
	attempts := c.attempts
	c.mu.Unlock()

	if evType == domain.EventAuthFailure {
		c.log.Error("session failed", "event", evType, "error", cause)
	} else {
		c.log.Warn("session disconnected", "event", evType, "reason", cause)
	}
	switch {
	case scheduled:
		c.log.Info("reinitialization scheduled", "delay", c.retry.Delay, "attempt", attempts)
	case c.retry.MaxAttempts > 0 && attempts >= c.retry.MaxAttempts:
		c.log.Error("reconnect attempts exhausted, session stays down", "attempts", attempts)
	}
	c.notify(status)
}

func (c *SessionController) reinitialize() {
	defer c.wg.Done()

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	c.initialize()
}

// setStateLocked меняет состояние; QR хранится только в AwaitingScan
func (c *SessionController) setStateLocked(next domain.SessionState, artifact string) (domain.Status, bool) {
	changed := c.session.State != next || c.session.PendingAuthArtifact != artifact
	c.session.State = next
	if next == domain.StateAwaitingScan {
		c.session.PendingAuthArtifact = artifact
	} else {
		c.session.PendingAuthArtifact = ""
	}
	if changed {
		c.session.LastTransition = c.now()
	}
	return c.session.Status(), changed
}

func (c *SessionController) notify(status domain.Status) {
	c.mu.RLock()
	observers := append([]func(domain.Status){}, c.onTransition...)
	c.mu.RUnlock()
	for _, fn := range observers {
		fn(status)
	}
}
