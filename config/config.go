package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Server
	Port           string
	TrustedProxies []string

	// Auth
	JWTSecret string

	// Sentiment classifier
	OpenAIAPIKey string
	OpenAIModel  string

	// RabbitMQ (optional; empty URL disables publishing)
	AMQPURL            string
	RabbitMQExchange   string
	RabbitMQRoutingKey string
}

func Load() *Config {
	// Load .env file if present; env vars take precedence either way.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{
		DBUser:             getEnv("DB_USER", "root"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBName:             getEnv("DB_NAME", "civichub"),
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET", "default-secret-change-in-production"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AMQPURL:            getEnv("AMQP_URL", ""),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "civichub"),
		RabbitMQRoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "report.events"),
	}

	// Handle trusted proxies
	trustedProxies := os.Getenv("TRUSTED_PROXIES")
	if trustedProxies != "" {
		cfg.TrustedProxies = strings.Split(trustedProxies, ",")
		for i, proxy := range cfg.TrustedProxies {
			cfg.TrustedProxies[i] = strings.TrimSpace(proxy)
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
