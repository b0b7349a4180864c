package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Paystack   PaystackConfig
	Cloudinary CloudinaryConfig
	Mail       MailConfig
	Wallet     WalletConfig
	App        AppConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type PaystackConfig struct {
	BaseURL   string
	SecretKey string
	// BankCacheTTL bounds how long the bank list is served from memory.
	BankCacheTTL time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// AdminAddress receives contact-form messages.
	AdminAddress string
}

type WalletConfig struct {
	// CallbackSecret signs deposit callback URLs.
	CallbackSecret string
	// CallbackExpiry is how long a signed callback URL stays valid.
	CallbackExpiry time.Duration
	// StaleAfter is how long a withdrawal may sit in PENDING before the
	// retry sweep re-queries the gateway for it.
	StaleAfter time.Duration
	// RetrySchedule is the cron spec for the withdrawal retry sweep.
	RetrySchedule string
}

type AppConfig struct {
	// BaseURL is the public URL of this API, used to build callback URLs.
	BaseURL string
	// FrontendURL is where deposit callbacks redirect the browser.
	FrontendURL string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8080"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "terravest:terravest@tcp(localhost:3306)/terravest?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  time.Hour,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "terravest",
		},
		Paystack: PaystackConfig{
			BaseURL:      envOr("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey:    os.Getenv("PAYSTACK_SECRET_KEY"),
			BankCacheTTL: 12 * time.Hour,
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		Mail: MailConfig{
			Host:         envOr("MAIL_HOST", "localhost"),
			Port:         envIntOr("MAIL_PORT", 587),
			Username:     os.Getenv("MAIL_USERNAME"),
			Password:     os.Getenv("MAIL_PASSWORD"),
			From:         envOr("MAIL_FROM", "no-reply@terravest.org"),
			AdminAddress: envOr("MAIL_ADMIN", "info@terravest.org"),
		},
		Wallet: WalletConfig{
			CallbackSecret: envOr("CALLBACK_SIGNING_SECRET", "change-me-callback"),
			CallbackExpiry: 10 * time.Minute,
			StaleAfter:     15 * time.Minute,
			RetrySchedule:  envOr("WITHDRAWAL_RETRY_SCHEDULE", "@every 10m"),
		},
		App: AppConfig{
			BaseURL:     envOr("APP_BASE_URL", "http://localhost:8080"),
			FrontendURL: envOr("FRONTEND_URL", "http://localhost:3000"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
