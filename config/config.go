package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string
	CartTTL  time.Duration

	ProductServiceURL string

	KafkaBrokers       string
	OrderEventsTopic   string
	PaymentEventsTopic string

	DeliveryFee float64

	// Daraja STK push gateway
	DarajaBaseURL        string
	DarajaShortCode      string
	DarajaPasskey        string
	DarajaConsumerKey    string
	DarajaConsumerSecret string
	DarajaCallbackURL    string
	DarajaTimeout        time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Nairobi"),

		RedisURL: getEnv("REDIS_URL", "redis://redis:6379"),
		CartTTL:  getDuration("CART_TTL", time.Hour*24*7),

		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://product-service:8082"),

		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		OrderEventsTopic:   getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		PaymentEventsTopic: getEnv("PAYMENT_EVENTS_TOPIC", "payment.events"),

		DeliveryFee: getFloat("DELIVERY_FEE", 200),

		DarajaBaseURL:        getEnv("DARAJA_BASE_URL", "https://sandbox.safaricom.co.ke"),
		DarajaShortCode:      getEnv("DARAJA_SHORTCODE", "174379"),
		DarajaPasskey:        os.Getenv("DARAJA_PASSKEY"),
		DarajaConsumerKey:    os.Getenv("DARAJA_CONSUMER_KEY"),
		DarajaConsumerSecret: os.Getenv("DARAJA_CONSUMER_SECRET"),
		DarajaCallbackURL:    getEnv("DARAJA_CALLBACK_URL", "http://localhost:8080/payment/callback"),
		DarajaTimeout:        getDuration("DARAJA_TIMEOUT", 10*time.Second),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

// DSN builds the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
