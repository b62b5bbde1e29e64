package rest

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	headerAPIKey    = "x-api-key"
	headerRequestID = "X-Request-Id"
	queryAPIKey     = "api_key"
)

type ctxKey int

const ctxRequestID ctxKey = iota

// RequestID достаёт id запроса, выставленный requestLogger
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// requestLogger присваивает запросу id и пишет method/path/status/duration
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), ctxRequestID, id)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("API Request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start),
				"request_id", id,
			)
		})
	}
}

// recoverer отвечает 500 вместо обрыва соединения
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Server Error",
					"path", r.URL.Path,
					"request_id", RequestID(r.Context()),
					"panic", fmt.Sprint(rec),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// apiKeyAuth сверяет x-api-key; для websocket допускается ?api_key=
func apiKeyAuth(log *slog.Logger, key string) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(headerAPIKey)
			if got == "" && websocket.IsWebSocketUpgrade(r) {
				got = r.URL.Query().Get(queryAPIKey)
			}
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				log.Warn("Invalid API key attempt", "ip", clientIP(r), "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter: фиксированное окно в Redis по IP клиента.
// При превышении лимита клиент блокируется на blockDuration.
// Если Redis недоступен, запрос пропускается.
func RateLimiter(log *slog.Logger, rdb redis.Cmdable, limit int, window, blockDuration time.Duration, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := keyPrefix + ":ip:" + clientIP(r)
			blockKey := key + ":blocked"

			if blocked, _ := rdb.Get(ctx, blockKey).Result(); blocked == "1" {
				ttl, _ := rdb.TTL(ctx, blockKey).Result()
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
				return
			}

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				log.Warn("rate limiter unavailable, passing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(ctx, key, window)
			}

			if count > int64(limit) {
				rdb.Set(ctx, blockKey, "1", blockDuration)
				w.Header().Set("Retry-After", strconv.Itoa(int(blockDuration.Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
				return
			}

			ttl, _ := rdb.TTL(ctx, key).Result()
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP: после middleware.RealIP в RemoteAddr лежит адрес клиента
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
