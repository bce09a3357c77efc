package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultAppName          = "OrderKing"
	defaultAppEnv           = "development"
	defaultPort             = "2025"
	defaultLogLevel         = "info"
	defaultShutdownDelay    = 10 * time.Second
	defaultTokenTTL         = 24 * time.Hour
	defaultResetCodeTTL     = time.Hour
	defaultRotationInterval = 60 * time.Second
	defaultSMTPPort         = "465"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName          string
	AppEnv           string
	Port             string
	LogLevel         string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	TokenTTL         time.Duration
	ResetCodeTTL     time.Duration
	RotationInterval time.Duration
	ShutdownPeriod   time.Duration
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPass         string
	SMTPFrom         string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         defaultTokenTTL,
		ResetCodeTTL:     defaultResetCodeTTL,
		RotationInterval: defaultRotationInterval,
		ShutdownPeriod:   defaultShutdownDelay,
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnv("SMTP_PORT", defaultSMTPPort),
		SMTPUser:         strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPass:         strings.TrimSpace(os.Getenv("SMTP_PASS")),
		SMTPFrom:         os.Getenv("SMTP_FROM"),
	}

	durations := []struct {
		envVar string
		dst    *time.Duration
	}{
		{"TOKEN_TTL", &cfg.TokenTTL},
		{"RESET_CODE_TTL", &cfg.ResetCodeTTL},
		{"ROTATION_INTERVAL", &cfg.RotationInterval},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
	}
	for _, d := range durations {
		if v := os.Getenv(d.envVar); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.envVar, err)
			}
			*d.dst = parsed
		}
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	if !isDev(cfg.AppEnv) {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// MailConfigured reports whether enough SMTP settings are present to send real email.
func (c Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return isDev(c.AppEnv)
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
