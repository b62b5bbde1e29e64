package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Env       string          `yaml:"env" env:"APP_ENV" env-default:"dev"`
	Timezone  string          `yaml:"timezone" env:"TIMEZONE" env-default:"Asia/Jakarta"`
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Templates TemplatesConfig `yaml:"templates"`
	TDLib     TDLibConfig     `yaml:"tdlib"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"PORT" env-default:"3000"`
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:8000"`
	RateLimit      int           `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"100"`
	RateWindow     time.Duration `yaml:"rate_window" env:"RATE_WINDOW" env-default:"15m"`
	RateBlock      time.Duration `yaml:"rate_block" env:"RATE_BLOCK" env-default:"15m"`
}

// RedisConfig: пустой Addr - Redis не используется
type RedisConfig struct {
	Addr             string `yaml:"addr" env:"REDIS_ADDR"`
	Password         string `yaml:"password" env:"REDIS_PASS"`
	DB               int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	WithdrawalStream string `yaml:"withdrawal_stream" env:"WITHDRAWAL_STREAM" env-default:"withdrawals:requests"`
}

type SessionConfig struct {
	ReconnectDelay time.Duration `yaml:"reconnect_delay" env:"RECONNECT_DELAY" env-default:"5s"`
	MaxReconnects  int           `yaml:"max_reconnects" env:"MAX_RECONNECTS" env-default:"0"`
}

type TemplatesConfig struct {
	Path string `yaml:"path" env:"TEMPLATES_PATH"`
}

type TDLibConfig struct {
	ApiID   int32       `yaml:"api_id" env:"TELEGRAM_API_ID"`
	ApiHash string      `yaml:"api_hash" env:"TELEGRAM_API_HASH"`
	BaseDir string      `yaml:"base_dir" env:"TDLIB_BASE_DIR" env-default:"./tdlib-sessions"`
	Session string      `yaml:"session" env:"TDLIB_SESSION" env-default:"gateway"`
	Proxy   ProxyConfig `yaml:"proxy"`
}

type ProxyConfig struct {
	Enabled  bool   `yaml:"enabled" env:"TDLIB_PROXY_ENABLED"`
	Server   string `yaml:"server" env:"TDLIB_PROXY_SERVER"`
	Port     int32  `yaml:"port" env:"TDLIB_PROXY_PORT"`
	Username string `yaml:"username" env:"TDLIB_PROXY_USERNAME"`
	Password string `yaml:"password" env:"TDLIB_PROXY_PASSWORD"`
}

// Load читает .env (если есть), затем YAML по path и переменные окружения.
// Пустой path: только окружение. Окружение перекрывает файл.
func Load(path string) (*AppConfig, error) {
	// .env необязателен
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg AppConfig
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфига %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения окружения: %w", err)
	}

	cfg.HTTP.AllowedOrigins = trimAll(cfg.HTTP.AllowedOrigins)
	return &cfg, nil
}

// Location: часовой пояс для системных уведомлений
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ValidateTDLib: без api id/hash TDLib не стартует
func (c *AppConfig) ValidateTDLib() error {
	if c.TDLib.ApiID == 0 || c.TDLib.ApiHash == "" || c.TDLib.BaseDir == "" {
		return errors.New("TELEGRAM_API_ID, TELEGRAM_API_HASH, TDLIB_BASE_DIR должны быть заданы")
	}
	return nil
}

// ValidateServe: проверки для полного сервиса с HTTP API
func (c *AppConfig) ValidateServe() error {
	if err := c.ValidateTDLib(); err != nil {
		return err
	}
	if c.HTTP.APIKey == "" {
		return errors.New("API_KEY должен быть задан")
	}
	if c.HTTP.RateLimit <= 0 || c.HTTP.RateWindow <= 0 {
		return fmt.Errorf("invalid rate limit %d per %s", c.HTTP.RateLimit, c.HTTP.RateWindow)
	}
	return nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
