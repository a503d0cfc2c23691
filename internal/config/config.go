package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultAppName        = "SeamlessWallet"
	defaultAppEnv         = "development"
	defaultPort           = "3000"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultCurrency       = "THB"
	defaultBalance        = "1000"
	defaultOperatorToken  = "T65-AWDF-WAUE-OQ09-GST1"
	defaultCallTimeout    = 10 * time.Second
	defaultHistoryTimeout = 15 * time.Second
	defaultWagerTTL       = 24 * time.Hour
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	// Upstream aggregator contract.
	UpstreamURL     string
	UpstreamAPIKey  string
	UpstreamTimeout time.Duration
	HistoryTimeout  time.Duration
	// The aggregator endpoint is a fixed private partner host whose certificate
	// chain is not publicly anchored; verification is disabled on purpose.
	UpstreamSkipTLSVerify bool

	// Shared secret the aggregator presents on inbound wallet calls. Distinct
	// from UpstreamAPIKey, which authenticates our outbound calls.
	AgentSecret string

	// Operator identity embedded in locally synthesized launch URLs.
	OperatorToken string

	DefaultBalance  decimal.Decimal
	DefaultCurrency string

	ShutdownPeriod time.Duration
	WagerTTL       time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:               getEnv("APP_NAME", defaultAppName),
		AppEnv:                getEnv("APP_ENV", defaultAppEnv),
		Port:                  getEnv("PORT", defaultPort),
		LogLevel:              strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		UpstreamURL:           os.Getenv("API_ENDPOINT"),
		UpstreamAPIKey:        os.Getenv("API_KEY"),
		AgentSecret:           os.Getenv("AGENT_SECRET"),
		OperatorToken:         getEnv("OPERATOR_TOKEN", defaultOperatorToken),
		DefaultCurrency:       getEnv("DEFAULT_CURRENCY", defaultCurrency),
		UpstreamTimeout:       defaultCallTimeout,
		HistoryTimeout:        defaultHistoryTimeout,
		UpstreamSkipTLSVerify: true,
		ShutdownPeriod:        defaultShutdownDelay,
		WagerTTL:              defaultWagerTTL,
	}

	if v := os.Getenv("UPSTREAM_TLS_VERIFY"); v != "" {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid UPSTREAM_TLS_VERIFY: %w", err)
		}
		cfg.UpstreamSkipTLSVerify = !verify
	}

	balance, err := decimal.NewFromString(getEnv("DEFAULT_BALANCE", defaultBalance))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DEFAULT_BALANCE: %w", err)
	}
	if balance.IsNegative() {
		return Config{}, fmt.Errorf("DEFAULT_BALANCE must not be negative")
	}
	cfg.DefaultBalance = balance

	durations := []struct {
		env    string
		target *time.Duration
	}{
		{"UPSTREAM_TIMEOUT", &cfg.UpstreamTimeout},
		{"HISTORY_TIMEOUT", &cfg.HistoryTimeout},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
		{"WAGER_TTL", &cfg.WagerTTL},
	}
	for _, d := range durations {
		if v := os.Getenv(d.env); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.env, err)
			}
			*d.target = parsed
		}
	}

	if cfg.UpstreamURL == "" {
		return Config{}, fmt.Errorf("API_ENDPOINT must be set")
	}
	if cfg.UpstreamAPIKey == "" {
		return Config{}, fmt.Errorf("API_KEY must be set")
	}
	if cfg.AgentSecret == "" {
		return Config{}, fmt.Errorf("AGENT_SECRET must be set")
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
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

// IsDev reports whether the application runs in a development environment,
// where Postgres and Redis may be replaced by in-memory backends.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
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
