package config

import (
	"bytes"
	_ "embed"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log        LogConfig      `mapstructure:"log"`
	HTTP       HTTPConfig     `mapstructure:"http"`
	MySQL      DatabaseConfig `mapstructure:"mysql"`
	ClickHouse DatabaseConfig `mapstructure:"clickhouse"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Kafka      KafkaConfig    `mapstructure:"kafka"`
	API        APIConfig      `mapstructure:"api"`
	Sync       SyncConfig     `mapstructure:"sync"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	ResultsTopic string        `mapstructure:"results_topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// APIConfig groups everything about talking to the seller API.
type APIConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Rate           RateConfig    `mapstructure:"rate"`
	Retry          RetryConfig   `mapstructure:"retry"`
	Report         ReportConfig  `mapstructure:"report"`
}

// RateConfig is the per-credential sliding-window request budget.
type RateConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	MaxParallel int           `mapstructure:"max_parallel"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
}

// ReportConfig bounds the asynchronous report poll loop.
type ReportConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxPolls     int           `mapstructure:"max_polls"`
}

type SyncConfig struct {
	MaxTenants     int           `mapstructure:"max_tenants"`
	ChunkSize      int           `mapstructure:"chunk_size"`
	OrdersDaysBack int           `mapstructure:"orders_days_back"`
	StocksFirstRun int           `mapstructure:"stocks_first_run_days"`
	AdvertBatch    int           `mapstructure:"advert_batch"`
	AdvertInterval time.Duration `mapstructure:"advert_interval"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (WBSYNC_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (WBSYNC_*, nested keys joined with underscores)
	v.SetEnvPrefix("WBSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
