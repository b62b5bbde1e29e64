package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/larriantoniy/wa_gateway/internal/adapters/qr"
	"github.com/larriantoniy/wa_gateway/internal/adapters/redisq"
	"github.com/larriantoniy/wa_gateway/internal/adapters/rest"
	"github.com/larriantoniy/wa_gateway/internal/adapters/tg"
	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/larriantoniy/wa_gateway/internal/ports"
	"github.com/larriantoniy/wa_gateway/internal/useCases"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and keep the chat session alive",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	logger := setupLogger(cfg.Env)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	renderer, err := buildRenderer(cfg)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := connectRedis(ctx, logger, cfg.Redis)
	var (
		limiter     redis.Cmdable
		withdrawals ports.WithdrawalQueue
	)
	if rdb != nil {
		defer rdb.Close()
		limiter = rdb
		withdrawals = redisq.NewWithdrawalStream(rdb, cfg.Redis.WithdrawalStream)
	}

	ctrl := useCases.NewSessionController(
		logger,
		tg.NewFactory(tdConfig(cfg)),
		qr.NewRenderer(qr.DefaultSize),
		useCases.WithRetryPolicy(useCases.RetryPolicy{
			Delay:       cfg.Session.ReconnectDelay,
			MaxAttempts: cfg.Session.MaxReconnects,
		}),
	)

	dispatch := useCases.NewDispatchService(logger, ctrl, renderer, loc)
	commands := useCases.NewCommandDispatcher(logger, ctrl, renderer, withdrawals)
	listener := useCases.NewListener(ctx, logger, commands)
	ctrl.OnInbound(listener.Handle)

	hub := rest.NewStatusHub(logger, ctrl, rest.OriginChecker(cfg.HTTP.AllowedOrigins))
	ctrl.OnTransition(hub.Publish)

	router := rest.NewRouter(logger, rest.RouterConfig{
		APIKey:         cfg.HTTP.APIKey,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit: rest.RateLimit{
			Limit:  cfg.HTTP.RateLimit,
			Window: cfg.HTTP.RateWindow,
			Block:  cfg.HTTP.RateBlock,
		},
		Redis: limiter,
	}, rest.NewHandler(logger, ctrl, dispatch), hub)

	logger.Info("notification gateway starting",
		"env", cfg.Env,
		"port", cfg.HTTP.Port,
		"allowed_origins", cfg.HTTP.AllowedOrigins,
		"redis", rdb != nil,
	)

	ctrl.Start(ctx)
	runErr := rest.NewServer(logger, cfg.HTTP.Port, router, hub).Run(ctx)

	ctrl.Close()
	listener.Wait()
	logger.Info("exit")
	return runErr
}

// connectRedis: пустой адрес: работаем без Redis (без rate limit и очереди выводов)
func connectRedis(ctx context.Context, logger *slog.Logger, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not set: rate limiting and withdrawal queue disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// лимитер fail-open: недоступный Redis старту не мешает
		logger.Warn("redis ping failed", "addr", cfg.Addr, "error", err)
	}
	return rdb
}
