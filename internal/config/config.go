package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ADDR          string
	DB_PATH       string
	STORE_SECRET  string
	JWT_SECRET    string
	LOG_LEVEL     string
	KAFKA_ADDRESS string
	ES_URL        string
	ES_USER       string
	ES_PASSWORD   string
	ES_INDEX      string

	LOGIN_MAX_ATTEMPTS    int
	LOGIN_WINDOW          time.Duration
	REGISTER_MAX_ATTEMPTS int
	REGISTER_WINDOW       time.Duration
	CHECKOUT_MAX_ATTEMPTS int
	CHECKOUT_WINDOW       time.Duration
	PAYMENT_MAX_ATTEMPTS  int
	PAYMENT_WINDOW        time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		ADDR:          getEnv("ADDR", ":8080"),
		DB_PATH:       getEnv("DB_PATH", "shopcore.db"),
		STORE_SECRET:  os.Getenv("STORE_SECRET"),
		JWT_SECRET:    os.Getenv("JWT_SECRET"),
		LOG_LEVEL:     getEnv("LOG_LEVEL", "info"),
		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		ES_URL:        os.Getenv("ES_URL"),
		ES_USER:       os.Getenv("ES_USER"),
		ES_PASSWORD:   os.Getenv("ES_PASSWORD"),
		ES_INDEX:      getEnv("ES_INDEX", "product"),

		LOGIN_MAX_ATTEMPTS:    getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LOGIN_WINDOW:          getEnvDuration("LOGIN_WINDOW", time.Minute),
		REGISTER_MAX_ATTEMPTS: getEnvInt("REGISTER_MAX_ATTEMPTS", 3),
		REGISTER_WINDOW:       getEnvDuration("REGISTER_WINDOW", 5*time.Minute),
		CHECKOUT_MAX_ATTEMPTS: getEnvInt("CHECKOUT_MAX_ATTEMPTS", 3),
		CHECKOUT_WINDOW:       getEnvDuration("CHECKOUT_WINDOW", time.Minute),
		PAYMENT_MAX_ATTEMPTS:  getEnvInt("PAYMENT_MAX_ATTEMPTS", 3),
		PAYMENT_WINDOW:        getEnvDuration("PAYMENT_WINDOW", time.Minute),
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Notice: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Notice: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
