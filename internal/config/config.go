package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the full application configuration, read from the
// environment (godotenv loads .env in main).
type Config struct {
	Port string

	DatabaseURL      string // takes precedence over the POSTGRES_* fields
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string

	LogLevel string

	// Optional: shipping-quote cache backend. Empty means in-memory.
	RedisAddr string

	// Optional: order event publishing. Empty means log-only.
	KafkaBrokers    []string
	KafkaOrderTopic string

	// Tax rate in basis points (e.g. 1000 = 10%).
	TaxRateBP int64

	// Accepted payment method codes.
	PaymentMethods []string

	// Enabled shipping provider codes, in registration order.
	ShippingProviders []string
}

func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "shop"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LogLevel: getenv("LOG_LEVEL", "info"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "order-events"),

		PaymentMethods:    splitList(getenv("PAYMENT_METHODS", "cod,bank_transfer")),
		ShippingProviders: splitList(getenv("SHIPPING_PROVIDERS", "flat_rate,tiered_rate,free_shipping")),
	}

	pgPort, err := atoiEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cfg.PostgresPort = pgPort

	taxBP, err := atoiEnv("TAX_RATE_BP", 1000)
	if err != nil {
		return Config{}, err
	}
	cfg.TaxRateBP = int64(taxBP)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.PaymentMethods) == 0 {
		return Config{}, fmt.Errorf("PAYMENT_METHODS is required")
	}
	if len(cfg.ShippingProviders) == 0 {
		return Config{}, fmt.Errorf("SHIPPING_PROVIDERS is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
