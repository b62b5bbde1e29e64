// Package rest - HTTP API сервиса уведомлений.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Limit  int
	Window time.Duration
	Block  time.Duration
}

type RouterConfig struct {
	APIKey         string
	AllowedOrigins []string
	RateLimit      RateLimit
	// nil: без ограничения частоты
	Redis redis.Cmdable
}

func NewRouter(log *slog.Logger, cfg RouterConfig, h *Handler, hub *StatusHub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", headerAPIKey},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         300,
	}))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/health", h.Health)

	r.Route("/api", func(api chi.Router) {
		if cfg.Redis != nil {
			api.Use(RateLimiter(log, cfg.Redis, cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.Block, "wa_gateway:rl"))
		}
		api.Use(apiKeyAuth(log, cfg.APIKey))

		api.Get("/auth/qr", h.GetQR)
		api.Get("/auth/status", h.GetStatus)
		api.Get("/auth/ws", hub.ServeWS)

		api.Post("/message/send", h.SendMessage)
		api.Post("/message/welcome", h.SendWelcome)

		api.Post("/notification/payment", h.SendPayment)
		api.Post("/notification/withdrawal", h.SendWithdrawal)
		api.Post("/notification/system", h.SendSystem)
	})

	return r
}

// Server: http.Server с graceful shutdown по ctx
type Server struct {
	log *slog.Logger
	srv *http.Server
	hub *StatusHub
}

func NewServer(log *slog.Logger, port int, handler http.Handler, hub *StatusHub) *Server {
	return &Server{
		log: log,
		hub: hub,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run блокируется до отмены ctx или ошибки listener-а
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// hijacked websocket-соединения Shutdown не закрывает
	s.hub.Close()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}
