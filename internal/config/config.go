package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Shares   SharesConfig   `mapstructure:"shares"`
	Venues   []VenueConfig  `mapstructure:"venues"`
	Callers  []CallerConfig `mapstructure:"callers"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	ReadOnly bool   `mapstructure:"read_only"`
	LogLevel string `mapstructure:"log_level"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
	AdminKey      string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
	TelemetryTTLSeconds   int    `mapstructure:"telemetry_ttl_seconds"`
}

type LedgerConfig struct {
	// Designated accounts the platform and reserve portions accrue to.
	PlatformAccount string `mapstructure:"platform_account"`
	ReserveAccount  string `mapstructure:"reserve_account"`
	// Max records returned per history page.
	HistoryPageMax int    `mapstructure:"history_page_max"`
	AuditLogDir    string `mapstructure:"audit_log_dir"`
}

type SharesConfig struct {
	UserBps     int64 `mapstructure:"user_bps"`
	PlatformBps int64 `mapstructure:"platform_bps"`
	ReserveBps  int64 `mapstructure:"reserve_bps"`
}

type VenueConfig struct {
	Name    string `mapstructure:"name"`
	Kind    string `mapstructure:"kind"` // "sim" or "remote"
	BaseURL string `mapstructure:"base_url"`
	WSURL   string `mapstructure:"ws_url"`
	APIKey  string `mapstructure:"api_key"`

	// Sim venue knobs.
	APYBps          int64  `mapstructure:"apy_bps"`
	WithdrawCapBps  int64  `mapstructure:"withdraw_cap_bps"` // 0 = no cap
	InitialHealthy  bool   `mapstructure:"initial_healthy"`
	TimeoutMs       int    `mapstructure:"timeout_ms"`
	Retries         int    `mapstructure:"retries"`
	HealthTTLSecs   int    `mapstructure:"health_ttl_seconds"`
	PollIntervalSec int    `mapstructure:"poll_interval_seconds"`
	Version         string `mapstructure:"version"`
}

type CallerConfig struct {
	ID     string  `mapstructure:"id"`
	Name   string  `mapstructure:"name"`
	APIKey string  `mapstructure:"api_key"`
	Role   string  `mapstructure:"role"`
	QPS    float64 `mapstructure:"qps"`
	Burst  int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. YIELDGATE_DATABASE_DSN
	viper.SetEnvPrefix("yieldgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_only", false)
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("auth.admin_key", "")
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("redis.telemetry_ttl_seconds", 30)
	viper.SetDefault("ledger.platform_account", "platform-treasury")
	viper.SetDefault("ledger.reserve_account", "risk-reserve")
	viper.SetDefault("ledger.history_page_max", 500)
	viper.SetDefault("ledger.audit_log_dir", "./logs")
	viper.SetDefault("shares.user_bps", 7000)
	viper.SetDefault("shares.platform_bps", 2000)
	viper.SetDefault("shares.reserve_bps", 500)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
