package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Payment   PaymentConfig
	Mail      MailConfig
	Auth      AuthConfig
	Uploads   UploadConfig
	Reconcile ReconcileConfig
}

type ServerConfig struct {
	Addr string `env:"SERVER_ADDR" envDefault:":8080"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"postgres"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// PaymentConfig 外部金流供應商設定。WebhookSecret 用於驗證回呼簽章。
type PaymentConfig struct {
	BaseURL       string        `env:"PAYMENT_BASE_URL" envDefault:"https://api.stripe.com"`
	SecretKey     string        `env:"PAYMENT_SECRET_KEY"`
	WebhookSecret string        `env:"PAYMENT_WEBHOOK_SECRET"`
	Timeout       time.Duration `env:"PAYMENT_TIMEOUT" envDefault:"10s"`
}

type MailConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"localhost"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM" envDefault:"no-reply@landsteward.org"`
}

type AuthConfig struct {
	Secret string `env:"AUTH_SECRET"`
}

type UploadConfig struct {
	Dir string `env:"UPLOAD_DIR" envDefault:"uploads"`
}

// ReconcileInterval 補發票券的巡檢間隔
type ReconcileConfig struct {
	Interval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`
}

var AppConfig *Config

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	AppConfig = cfg
	return cfg, nil
}

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":0"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5433", // 測試 DB 用 5433 port
			User:     "postgres",
			Password: "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6380", // 測試 Redis 用 6380 port
			DB:   1,
		},
		Payment: PaymentConfig{
			BaseURL:       "http://localhost:12111",
			SecretKey:     "sk_test_local",
			WebhookSecret: "whsec_test_local",
			Timeout:       2 * time.Second,
		},
		Mail: MailConfig{
			Host: "localhost",
			Port: 1025,
			From: "no-reply@landsteward.test",
		},
		Auth:      AuthConfig{Secret: "test-secret"},
		Uploads:   UploadConfig{Dir: "uploads_test"},
		Reconcile: ReconcileConfig{Interval: time.Minute},
	}
}
