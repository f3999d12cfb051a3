package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"go-inventory-pos/pkg/database"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	Business BusinessConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	URL      string `envconfig:"DATABASE_URL"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"inventory"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}

// Options converts the settings into the pool description pkg/database opens.
func (d DBConfig) Options() database.Options {
	return database.Options{
		DSN:             d.DSN(),
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET" default:"your-super-secret-key-change-in-production"`
	Issuer          string `envconfig:"JWT_ISSUER" default:"go-inventory-pos"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
}

// TTL is the lifetime of an issued token.
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpirationHours) * time.Hour
}

type BusinessConfig struct {
	ReversalWindow    time.Duration `envconfig:"REVERSAL_WINDOW" default:"48h"`
	TransactionPrefix string        `envconfig:"TRANSACTION_PREFIX" default:"TRX"`
	TxMaxRetries      int           `envconfig:"TX_MAX_RETRIES" default:"3"`
}

type RedisConfig struct {
	URL      string        `envconfig:"REDIS_URL"`
	StockTTL time.Duration `envconfig:"STOCK_CACHE_TTL" default:"30s"`
}

func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.URL) != "" }

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"inventory-events"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 && k.Brokers[0] != "" }

type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Business.ReversalWindow <= 0 {
		return nil, fmt.Errorf("REVERSAL_WINDOW must be positive")
	}
	if cfg.Business.TxMaxRetries < 0 {
		cfg.Business.TxMaxRetries = 0
	}
	return &cfg, nil
}
