// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Midtrans    MidtransConfig
	Storage     StorageConfig
	Frontend    FrontendConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Database       string
	SSLMode        string
	ConnectTimeout int // in seconds
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    int
	LogLevel       string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type MidtransConfig struct {
	ServerKey       string
	IsProduction    bool
	MerchantName    string
	EnabledPayments []string
	ExpiryDays      int
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

type FrontendConfig struct {
	BaseURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			Database:       getEnv("DB_NAME", "caufi"),
			SSLMode:        getEnv("DB_SSL_MODE", "disable"),
			ConnectTimeout: getEnvAsInt("DB_CONNECT_TIMEOUT", 10),
			MaxOpenConns:   getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:    getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:       getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		Midtrans: MidtransConfig{
			ServerKey:       getEnv("MIDTRANS_SERVER_KEY", ""),
			IsProduction:    getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
			MerchantName:    getEnv("MIDTRANS_MERCHANT_NAME", "Caufi Store"),
			EnabledPayments: getEnvAsSlice("MIDTRANS_ENABLED_PAYMENTS", defaultEnabledPayments),
			ExpiryDays:      getEnvAsInt("MIDTRANS_EXPIRY_DAYS", 1),
		},
		Storage: StorageConfig{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("R2_BUCKET", "caufi-assets"),
			PublicBaseURL:   getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "https://caufi.nickopusan.dev"),
		},
	}

	return config, config.Validate()
}

var defaultEnabledPayments = []string{
	"gopay", "shopeepay", "credit_card",
	"bca_va", "bni_va", "bri_va", "cimb_va", "permata_va",
	"indomaret", "alfamart",
}

// DSN builds the postgres connection string. The session time zone is
// pinned to WIB so stored timestamps line up with the payment provider's
// expiry windows.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d TimeZone=Asia/Jakarta",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode, d.ConnectTimeout,
	)
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Midtrans.ServerKey == "" && c.Environment == "production" {
		return fmt.Errorf("midtrans server key is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
