package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	MongoURI string
	MongoDB  string

	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePublishableKey string
	Currency             string

	JWTSecret string

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDB:              getEnv("MONGO_DB", "ecommerce"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		Currency:             getEnv("CURRENCY", "egp"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		KafkaTopic:           getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_SECRET and STRIPE_WEBHOOK_SECRET are required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
