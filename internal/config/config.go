package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "STOREFRONT"

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Storage StorageConfig `mapstructure:"storage"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
}

type NotifyConfig struct {
	Driver    string `mapstructure:"driver"`
	QueueSize int    `mapstructure:"queue_size"`
	Workers   int    `mapstructure:"workers"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("storage.backend", "memory")

	v.SetDefault("mysql.dsn", "root:root@tcp(localhost:3306)/storefront")
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 25)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("mysql.migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.lock_ttl", 30*time.Second)
	v.SetDefault("redis.catalog_ttl", 5*time.Minute)

	v.SetDefault("notify.driver", "log")
	v.SetDefault("notify.queue_size", 1000)
	v.SetDefault("notify.workers", 4)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "storefront.notifications")

	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.issuer", "storefront")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads defaults, then the optional config file, then STOREFRONT_*
// environment variables (STOREFRONT_MYSQL_DSN overrides mysql.dsn).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "mysql":
	default:
		return fmt.Errorf("storage.backend must be memory or mysql, got %q", c.Storage.Backend)
	}

	switch c.Notify.Driver {
	case "log":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return errors.New("kafka.brokers and kafka.topic are required for the kafka notifier")
		}
	default:
		return fmt.Errorf("notify.driver must be log or kafka, got %q", c.Notify.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}
