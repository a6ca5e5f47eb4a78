package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port            string
	PostgresDSN     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	KafkaTopic      string
	PendingOrderTTL time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints. A .env file in the working directory is honored when
// present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:            envDefault("PORT", "8080"),
		PostgresDSN:     strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		KafkaTopic:      envDefault("KAFKA_ORDER_EVENTS_TOPIC", "order-events"),
		PendingOrderTTL: 72 * time.Hour,
	}
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	if raw := strings.TrimSpace(os.Getenv("PENDING_ORDER_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("PENDING_ORDER_TTL_HOURS must be a positive integer")
		}
		cfg.PendingOrderTTL = time.Duration(hours) * time.Hour
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
