package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	Postgres Postgres
	Redis    Redis
	RabbitMQ RabbitMQ
}

type Postgres struct {
	Host string
	Port int
	User string
	Pass string
	DB   string
}

type Redis struct {
	Addr string
}

type RabbitMQ struct {
	URL string
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		Postgres: Postgres{
			Host: getEnv("POSTGRES_HOST", "localhost"),
			Port: getEnvInt("POSTGRES_PORT", 5432),
			User: getEnv("POSTGRES_USER", "commerce"),
			Pass: getEnv("POSTGRES_PASSWORD", "commercepassword"),
			DB:   getEnv("POSTGRES_DB", "commerce_db"),
		},
		Redis: Redis{
			// empty disables the product cache
			Addr: getEnv("REDIS_ADDR", ""),
		},
		RabbitMQ: RabbitMQ{
			// empty disables order event publishing
			URL: getEnv("RABBITMQ_URL", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
