package tg

import (
	"path/filepath"

	"github.com/zelenin/go-tdlib/client"
)

// Config: параметры одной TDLib-сессии шлюза
type Config struct {
	ApiID   int32
	ApiHash string
	BaseDir string // "./tdlib-sessions"
	Session string // имя каталога сессии внутри BaseDir

	DeviceModel        string
	SystemVersion      string
	ApplicationVersion string
	LangCode           string

	Proxy *ProxyConfig
}

type ProxyConfig struct {
	Enabled  bool
	Server   string
	Port     int32
	Username string
	Password string
}

func (c Config) sessionDir() string {
	return filepath.Join(c.BaseDir, c.Session)
}

func (c Config) ToTdParams(dbDir, filesDir string) *client.SetTdlibParametersRequest {
	lang := c.LangCode
	if lang == "" {
		lang = "en"
	}

	systemVersion := c.SystemVersion
	if systemVersion == "" {
		systemVersion = "Linux"
	}

	appVersion := c.ApplicationVersion
	if appVersion == "" {
		appVersion = "1.0"
	}

	deviceModel := c.DeviceModel
	if deviceModel == "" {
		deviceModel = "Notification Gateway"
	}

	return &client.SetTdlibParametersRequest{
		UseTestDc:           false,
		DatabaseDirectory:   dbDir,
		FilesDirectory:      filesDir,
		UseFileDatabase:     false,
		UseChatInfoDatabase: true,
		UseMessageDatabase:  false,
		UseSecretChats:      false,
		ApiId:               c.ApiID,
		ApiHash:             c.ApiHash,
		SystemLanguageCode:  lang,
		DeviceModel:         deviceModel,
		SystemVersion:       systemVersion,
		ApplicationVersion:  appVersion,
	}
}

// options - SOCKS5-прокси, если включён
func (c Config) options() []client.Option {
	if c.Proxy == nil || !c.Proxy.Enabled || c.Proxy.Server == "" || c.Proxy.Port == 0 {
		return nil
	}
	return []client.Option{client.WithProxy(&client.AddProxyRequest{
		Server: c.Proxy.Server,
		Port:   c.Proxy.Port,
		Enable: true,
		Type: &client.ProxyTypeSocks5{
			Username: c.Proxy.Username,
			Password: c.Proxy.Password,
		},
	})}
}
