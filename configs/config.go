package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// Config returns the value of an environment variable, loading .env on first use.
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
	return os.Getenv(key)
}

type AppConfig struct {
	AppName     string
	Env         string
	Port        string
	FrontendURL string
	CORSOrigins string

	DBDriver    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminPassword string
	AdminFullName string

	LogLevel  string
	LogFormat string

	SettingsTTL time.Duration

	GatewayBaseURL       string
	GatewayKeyID         string
	GatewayKeySecret     string
	GatewayWebhookSecret string
	GatewayCurrency      string

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	StorageDriver string
	CloudinaryURL string
	AWSRegion     string
	AWSAccessKey  string
	AWSSecretKey  string
	AWSBucket     string

	PDFRenderer     string
	VoucherTemplate string

	FormRateLimit int
}

func Load() *AppConfig {
	return &AppConfig{
		AppName:     withDefault("APP_NAME", "Travel Agency"),
		Env:         withDefault("APP_ENV", "development"),
		Port:        withDefault("PORT", "8080"),
		FrontendURL: withDefault("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigins: withDefault("CORS_ORIGINS", "*"),

		DBDriver:    withDefault("DB_DRIVER", "postgres"),
		DatabaseURL: Config("DATABASE_URL"),

		JWTSecret: Config("JWT_SECRET"),
		JWTTTL:    durationOr("JWT_TTL", 72*time.Hour),

		AdminEmail:    Config("ADMIN_EMAIL"),
		AdminPassword: Config("ADMIN_PASSWORD"),
		AdminFullName: withDefault("ADMIN_FULL_NAME", "Administrator"),

		LogLevel:  withDefault("LOG_LEVEL", "info"),
		LogFormat: withDefault("LOG_FORMAT", "json"),

		SettingsTTL: durationOr("SETTINGS_CACHE_TTL", 5*time.Minute),

		GatewayBaseURL:       withDefault("RAZORPAY_API_BASE_URL", "https://api.razorpay.com"),
		GatewayKeyID:         Config("RAZORPAY_KEY_ID"),
		GatewayKeySecret:     Config("RAZORPAY_KEY_SECRET"),
		GatewayWebhookSecret: Config("RAZORPAY_WEBHOOK_SECRET"),
		GatewayCurrency:      withDefault("PAYMENT_CURRENCY", "INR"),

		RedisURL:     Config("REDIS_URL"),
		KafkaBrokers: splitList(Config("KAFKA_BROKERS")),
		KafkaTopic:   withDefault("KAFKA_TOPIC", "travel.booking-events"),

		BrevoAPIKey:     Config("BREVO_API_KEY"),
		EmailSender:     Config("EMAIL_SENDER"),
		EmailSenderName: Config("EMAIL_SENDER_NAME"),

		StorageDriver: strings.ToLower(Config("STORAGE_DRIVER")),
		CloudinaryURL: Config("CLOUDINARY_URL"),
		AWSRegion:     Config("AWS_REGION"),
		AWSAccessKey:  Config("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:  Config("AWS_SECRET_ACCESS_KEY"),
		AWSBucket:     Config("AWS_S3_BUCKET"),

		PDFRenderer:     withDefault("PDF_RENDERER", "gofpdf"),
		VoucherTemplate: withDefault("VOUCHER_TEMPLATE", "templates/voucher.html"),

		FormRateLimit: intOr("FORM_RATE_LIMIT", 5),
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func withDefault(key, fallback string) string {
	if v := strings.TrimSpace(Config(key)); v != "" {
		return v
	}
	return fallback
}

// durationOr accepts Go durations ("10m") or a bare number of seconds.
func durationOr(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(Config(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: invalid duration for %s=%q, using %s", key, raw, fallback)
	return fallback
}

func intOr(key string, fallback int) int {
	raw := strings.TrimSpace(Config(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
