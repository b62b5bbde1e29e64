package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:8000"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 100, cfg.HTTP.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.HTTP.RateWindow)
	assert.Equal(t, 5*time.Second, cfg.Session.ReconnectDelay)
	assert.Zero(t, cfg.Session.MaxReconnects)
	assert.Equal(t, "withdrawals:requests", cfg.Redis.WithdrawalStream)
	assert.Equal(t, "./tdlib-sessions", cfg.TDLib.BaseDir)
	assert.Equal(t, "gateway", cfg.TDLib.Session)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", `
env: prod
http:
  port: 8080
  api_key: from-file
  allowed_origins: ["https://a.example", "https://b.example"]
session:
  reconnect_delay: 10s
  max_reconnects: 3
tdlib:
  api_id: 12345
  api_hash: abc
`)
	t.Setenv("API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "from-env", cfg.HTTP.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Session.ReconnectDelay)
	assert.Equal(t, 3, cfg.Session.MaxReconnects)
	require.NoError(t, cfg.ValidateServe())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &AppConfig{HTTP: HTTPConfig{RateLimit: 1, RateWindow: time.Minute}}
	require.Error(t, cfg.ValidateTDLib())

	cfg.TDLib = TDLibConfig{ApiID: 1, ApiHash: "h", BaseDir: "d"}
	require.NoError(t, cfg.ValidateTDLib())
	require.Error(t, cfg.ValidateServe(), "api key is required")

	cfg.HTTP.APIKey = "k"
	require.NoError(t, cfg.ValidateServe())
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "UTC"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), loc.String())

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	require.Error(t, err)
}

func TestYAMLTemplateRepo(t *testing.T) {
	path := writeFile(t, "templates.yaml", `
templates:
  - id: registration
    body: "Halo {name}"
  - id: promo
    body: "Diskon {percent}%"
`)
	got, err := NewYAMLTemplateRepo(path).LoadTemplates()
	require.NoError(t, err)
	assert.Equal(t, []domain.Template{
		{ID: "registration", Body: "Halo {name}"},
		{ID: "promo", Body: "Diskon {percent}%"},
	}, got)
}

func TestYAMLTemplateRepo_EmptyPath(t *testing.T) {
	got, err := NewYAMLTemplateRepo("").LoadTemplates()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestYAMLTemplateRepo_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty id":  "templates:\n  - body: x\n",
		"duplicate": "templates:\n  - {id: a, body: x}\n  - {id: a, body: y}\n",
		"broken":    "templates: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewYAMLTemplateRepo(writeFile(t, "t.yaml", body)).LoadTemplates()
			require.Error(t, err)
		})
	}
}
