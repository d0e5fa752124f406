package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is loaded once at process
// start, validated eagerly, and never mutated afterwards.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// SiteURL is the public base URL used to build post-payment
	// callback targets and receipt links.
	SiteURL string

	Paystack PaystackConfig
	Donation DonationConfig
	Email    EmailConfig

	AdminAPIToken string

	LogLevel string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
}

type PaystackConfig struct {
	// SecretKey authenticates API calls and signs webhook deliveries.
	SecretKey string
	BaseURL   string
}

type DonationConfig struct {
	// MinimumAmount is expressed in the donor-facing currency.
	MinimumAmount float64
	// BaseCurrency is the default donor currency and the display
	// currency campaign totals are aggregated in.
	BaseCurrency string
	// SettlementCurrency is the currency the gateway account settles in.
	SettlementCurrency string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
	FromName     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "zakatd"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		SiteURL:     strings.TrimRight(getenv("SITE_URL", "http://localhost:3000"), "/"),
		Paystack: PaystackConfig{
			SecretKey: strings.TrimSpace(getenv("PAYSTACK_SECRET_KEY", "")),
			BaseURL:   strings.TrimRight(getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
		},
		Donation: DonationConfig{
			MinimumAmount:      getenvFloat("DONATION_MINIMUM_AMOUNT", 1),
			BaseCurrency:       strings.ToUpper(getenv("DONATION_BASE_CURRENCY", "USD")),
			SettlementCurrency: strings.ToUpper(getenv("PAYSTACK_SETTLEMENT_CURRENCY", "NGN")),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			From:         getenv("EMAIL_FROM", "giving@zakatfoundation.org"),
			FromName:     getenv("EMAIL_FROM_NAME", "Zakat Foundation"),
		},
		AdminAPIToken:     strings.TrimSpace(getenv("ADMIN_API_TOKEN", "")),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "zakat"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
	}
}

// Validate fails fast on configuration the service cannot run without.
func (c Config) Validate() error {
	if c.Paystack.SecretKey == "" {
		return errors.New("PAYSTACK_SECRET_KEY is not set")
	}
	if c.Donation.MinimumAmount <= 0 {
		return errors.New("DONATION_MINIMUM_AMOUNT must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
