package rest

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsSendBuffer = 8
)

type wsClient struct {
	conn *websocket.Conn
	send chan domain.Status
	done chan struct{}
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.done) })
}

// StatusHub рассылает снимки статуса сессии подписчикам websocket.
// Publish вешается на SessionController.OnTransition.
type StatusHub struct {
	log      *slog.Logger
	session  SessionView
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func NewStatusHub(log *slog.Logger, session SessionView, checkOrigin func(r *http.Request) bool) *StatusHub {
	return &StatusHub{
		log:     log.With("component", "ws"),
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// Publish не блокирует: медленный клиент отключается
func (h *StatusHub) Publish(st domain.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- st:
		default:
			h.log.Warn("ws client too slow, dropping")
			delete(h.clients, c)
			c.close()
		}
	}
}

// Close отключает всех клиентов и ждёт их горутины
func (h *StatusHub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *StatusHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.log.Warn("ws upgrade failed", "error", err, "request_id", RequestID(r.Context()))
		return
	}

	c := &wsClient{
		conn: conn,
		send: make(chan domain.Status, wsSendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	// снимок под локом хаба: Publish не обгонит его
	c.send <- h.session.Status()
	h.clients[c] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()

	defer h.wg.Done()
	h.log.Info("ws client connected", "remote", clientIP(r))

	readDone := make(chan struct{})
	go h.readLoop(c, readDone)
	h.writeLoop(c)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = conn.Close()
	<-readDone
	h.log.Info("ws client disconnected", "remote", clientIP(r))
}

// readLoop нужен только для pong и обнаружения закрытия
func (h *StatusHub) readLoop(c *wsClient, done chan<- struct{}) {
	defer close(done)
	defer c.close()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StatusHub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		case st := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteJSON(st); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// OriginChecker пускает websocket только с разрешённых origin; "*": любой
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// не браузер
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
