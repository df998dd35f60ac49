package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Token    TokenConfig    `mapstructure:"token"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RateLimit is requests per RateWindow per client IP.
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql or postgres
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig enables the redis-backed revocation list when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type TokenConfig struct {
	Prefix       string        `mapstructure:"prefix"`
	Issuer       string        `mapstructure:"issuer"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyRetention time.Duration `mapstructure:"key_retention"`
}

type PaymentConfig struct {
	MinTxHashLength int `mapstructure:"min_tx_hash_length"`
	// HorizonURL switches on transaction lookups against a Stellar Horizon server.
	HorizonURL     string        `mapstructure:"horizon_url"`
	HorizonTimeout time.Duration `mapstructure:"horizon_timeout"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("server.port", "8099")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_window", 60*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "ethicrawler:ethicrawler@tcp(localhost:3306)/ethicrawler?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "ethicrawler:revoked")

	v.SetDefault("token.prefix", "ethicrawler")
	v.SetDefault("token.issuer", "ethicrawler")
	v.SetDefault("token.ttl", 24*time.Hour)
	v.SetDefault("token.key_retention", 24*time.Hour)

	v.SetDefault("payment.min_tx_hash_length", 10)
	v.SetDefault("payment.horizon_url", "")
	v.SetDefault("payment.horizon_timeout", 10*time.Second)

	v.SetDefault("admin.api_key", "")
}

// Load reads defaults, then the YAML file at path (if non-empty), then
// ETHICRAWLER_* environment variables, e.g. ETHICRAWLER_DATABASE_DSN.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("ethicrawler")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
