package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/stayhub/service-booking/pkg/database"
)

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    database.PostgresConfig
	JWTConfig   JWTConfig
	KafkaConfig KafkaConfig
}

// Load reads configuration from the environment, after loading .env if one
// is present.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	return &ServiceConfig{
		Port:   getEnv("BOOKING_SERVICE_PORT", ":8080"),
		AppEnv: getEnv("APP_ENV", "development"),
		DBConfig: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stayhub_bookings"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTConfig: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupPrefix: getEnv("KAFKA_GROUP_PREFIX", "stayhub."),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
