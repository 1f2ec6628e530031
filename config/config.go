package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PayHere holds the merchant credentials and callback locations for the
// PayHere checkout. MerchantSecret must never leave the process.
type PayHere struct {
	MerchantID     string `json:"merchant_id"`
	MerchantSecret string `json:"-"`
	Sandbox        bool   `json:"sandbox"`
	SandboxURL     string `json:"sandbox_url"`
	ProductionURL  string `json:"production_url"`
	FrontendURL    string `json:"frontend_url"`
	BackendURL     string `json:"backend_url"`
}

// CheckoutURL is the gateway page the client form posts to.
func (p PayHere) CheckoutURL() string {
	if p.Sandbox {
		return p.SandboxURL
	}
	return p.ProductionURL
}

type Mail struct {
	SendGridAPIKey string `json:"-"`
	FromAddress    string
	FromName       string
}

type Config struct {
	Port           string
	GinMode        string
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string `json:"-"`
	DBName         string
	JWTSecret      string `json:"-"`
	TokenTTL       time.Duration
	AllowedOrigins []string
	AdminUserID    string
	AdminEmail     string
	AdminAPIKey    string `json:"-"`
	PayHere        PayHere
	Mail           Mail
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	return Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		DBHost:         getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:         getEnvOrDefault("DB_PORT", "5432"),
		DBUser:         getEnvOrDefault("DB_USER", "postgres"),
		DBPassword:     getEnvOrDefault("DB_PASSWORD", ""),
		DBName:         getEnvOrDefault("DB_NAME", "boostbench"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:       getDurationEnv("TOKEN_TTL_HOURS", 24, time.Hour),
		AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AdminUserID:    getEnvOrDefault("ADMIN_USER_ID", ""),
		AdminEmail:     getEnvOrDefault("ADMIN_EMAIL", ""),
		AdminAPIKey:    getEnvOrDefault("ADMIN_API_KEY", ""),
		PayHere: PayHere{
			MerchantID:     getEnvOrDefault("PAYHERE_MERCHANT_ID", ""),
			MerchantSecret: getEnvOrDefault("PAYHERE_MERCHANT_SECRET", ""),
			Sandbox:        getBoolEnv("PAYHERE_SANDBOX", true),
			SandboxURL:     getEnvOrDefault("PAYHERE_SANDBOX_URL", "https://sandbox.payhere.lk/pay/checkout"),
			ProductionURL:  getEnvOrDefault("PAYHERE_PRODUCTION_URL", "https://www.payhere.lk/pay/checkout"),
			FrontendURL:    strings.TrimRight(getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
			BackendURL:     strings.TrimRight(getEnvOrDefault("BACKEND_URL", "http://localhost:8080"), "/"),
		},
		Mail: Mail{
			SendGridAPIKey: getEnvOrDefault("SENDGRID_API_KEY", ""),
			FromAddress:    getEnvOrDefault("MAIL_FROM_ADDRESS", "no-reply@boostbench.lk"),
			FromName:       getEnvOrDefault("MAIL_FROM_NAME", "BoostBench"),
		},
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.PayHere.MerchantID == "" {
		errs = append(errs, errors.New("PAYHERE_MERCHANT_ID is required"))
	}
	if c.PayHere.MerchantSecret == "" {
		errs = append(errs, errors.New("PAYHERE_MERCHANT_SECRET is required"))
	}
	return errors.Join(errs...)
}

// DSN returns DATABASE_URL when set, otherwise a key/value postgres DSN.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
