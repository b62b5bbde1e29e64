package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/larriantoniy/wa_gateway/internal/adapters/tg"
	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/larriantoniy/wa_gateway/internal/ports"
	"github.com/larriantoniy/wa_gateway/internal/templates"
)

const (
	envDev  = "dev"
	envProd = "prod"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Notification gateway over a personal chat account",
	Long: `gateway keeps one authenticated chat session alive and sends
templated notifications through it over an HTTP API.

Commands:
  serve     - run the HTTP API and the session
  auth      - interactive first login via QR code
  templates - inspect the message template catalog`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (or set CONFIG_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == envDev {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// buildRenderer: встроенный каталог плюс переопределения из YAML
func buildRenderer(cfg *config.AppConfig) (*templates.Renderer, error) {
	var src ports.TemplateSource = config.NewYAMLTemplateRepo(cfg.Templates.Path)
	overrides, err := src.LoadTemplates()
	if err != nil {
		return nil, err
	}
	return templates.NewRenderer(templates.Default().With(overrides...)), nil
}

func tdConfig(cfg *config.AppConfig) tg.Config {
	td := tg.Config{
		ApiID:   cfg.TDLib.ApiID,
		ApiHash: cfg.TDLib.ApiHash,
		BaseDir: cfg.TDLib.BaseDir,
		Session: cfg.TDLib.Session,
	}
	if p := cfg.TDLib.Proxy; p.Enabled {
		td.Proxy = &tg.ProxyConfig{
			Enabled:  true,
			Server:   p.Server,
			Port:     p.Port,
			Username: p.Username,
			Password: p.Password,
		}
	}
	return td
}
