package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	GinMode        string
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitMQURI    string
	EventExchange  string
	JWTSecret      string
	JWTExpired     time.Duration
	ConsulAddress  string
	ServiceName    string
	ServiceID      string
	ServiceAddress string
	AllowedOrigins []string
	RequestTimeout time.Duration
	LogDir         string

	AdminEmail        string
	AdminPassword     string
	CounselorEmail    string
	CounselorPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	serviceName := getEnvOrDefault("SERVICE_NAME", "orientation-service")
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "1"
	}

	return &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnvOrDefault("MONGO_DATABASE", "orientation"),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:        getIntOrDefault("REDIS_DB", 0),
		RabbitMQURI:    getEnvOrDefault("RABBITMQ_URI", ""),
		EventExchange:  getEnvOrDefault("RABBITMQ_EXCHANGE", "orientation-events"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		JWTExpired:     time.Duration(getIntOrDefault("TOKEN_EXPIRY_TIME", 24)) * time.Hour,
		ConsulAddress:  getEnvOrDefault("CONSUL_ADDRESS", ""),
		ServiceName:    serviceName,
		ServiceID:      getEnvOrDefault("SERVICE_ID", serviceName+"-"+hostname),
		ServiceAddress: getEnvOrDefault("SERVICE_ADDRESS", serviceName),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		RequestTimeout: time.Duration(getIntOrDefault("REQUEST_TIMEOUT", 10)) * time.Second,
		LogDir:         getEnvOrDefault("LOG_DIR", ""),

		AdminEmail:        getEnvOrDefault("ADMIN_EMAIL", ""),
		AdminPassword:     getEnvOrDefault("ADMIN_PASSWORD", ""),
		CounselorEmail:    getEnvOrDefault("COUNSELOR_EMAIL", ""),
		CounselorPassword: getEnvOrDefault("COUNSELOR_PASSWORD", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
