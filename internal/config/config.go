// Package config loads the service configuration from a TOML file with
// environment-variable overrides for secrets and endpoints.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":3000"
	DefaultGraphBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion      = "v18.0"
	DefaultUploadEndpoint  = "http://localhost:8000/upload_resume/"
	DefaultAnalyzeEndpoint = "http://localhost:8000/analyze-resume/"
	DefaultSessionBackend  = "memory"
	DefaultSessionTTLHours = 24
	DefaultRedisAddr       = "127.0.0.1:6379"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	WhatsApp WhatsAppConfig `toml:"whatsapp"`
	Backend  BackendConfig  `toml:"backend"`
	Session  SessionConfig  `toml:"session"`
	Redis    RedisConfig    `toml:"redis"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`
}

type WhatsAppConfig struct {
	VerifyToken   string `toml:"verify_token" validate:"required"`
	AccessToken   string `toml:"access_token" validate:"required"`
	PhoneNumberID string `toml:"phone_number_id" validate:"required"`
	GraphBaseURL  string `toml:"graph_base_url" validate:"required,url"`
	APIVersion    string `toml:"api_version" validate:"required"`
}

type BackendConfig struct {
	UploadEndpoint  string `toml:"upload_endpoint" validate:"required,url"`
	AnalyzeEndpoint string `toml:"analyze_endpoint" validate:"required,url"`
}

type SessionConfig struct {
	// Backend selects the session store: "memory" or "redis".
	Backend  string `toml:"backend" validate:"oneof=memory redis"`
	TTLHours int    `toml:"ttl_hours" validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Load reads the TOML file at path (defaults applied for absent keys; a
// missing file is not an error), then applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		WhatsApp: WhatsAppConfig{
			GraphBaseURL: DefaultGraphBaseURL,
			APIVersion:   DefaultAPIVersion,
		},
		Backend: BackendConfig{
			UploadEndpoint:  DefaultUploadEndpoint,
			AnalyzeEndpoint: DefaultAnalyzeEndpoint,
		},
		Session: SessionConfig{
			Backend:  DefaultSessionBackend,
			TTLHours: DefaultSessionTTLHours,
		},
		Redis: RedisConfig{
			Addr: DefaultRedisAddr,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over the file values.
// Secrets are expected to arrive this way rather than living in the file.
func applyEnvOverrides(cfg *Config) {
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.WhatsApp.VerifyToken = getEnv("WHATSAPP_VERIFY_TOKEN", cfg.WhatsApp.VerifyToken)
	cfg.WhatsApp.AccessToken = getEnv("WHATSAPP_ACCESS_TOKEN", cfg.WhatsApp.AccessToken)
	cfg.WhatsApp.PhoneNumberID = getEnv("WHATSAPP_PHONE_NUMBER_ID", cfg.WhatsApp.PhoneNumberID)
	cfg.WhatsApp.GraphBaseURL = getEnv("WHATSAPP_GRAPH_BASE_URL", cfg.WhatsApp.GraphBaseURL)
	cfg.WhatsApp.APIVersion = getEnv("WHATSAPP_API_VERSION", cfg.WhatsApp.APIVersion)
	cfg.Backend.UploadEndpoint = getEnv("UPLOAD_ENDPOINT", cfg.Backend.UploadEndpoint)
	cfg.Backend.AnalyzeEndpoint = getEnv("ANALYZE_ENDPOINT", cfg.Backend.AnalyzeEndpoint)
	cfg.Session.Backend = getEnv("SESSION_BACKEND", cfg.Session.Backend)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
