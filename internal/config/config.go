package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCatalogBaseURL = "https://deisishop.pythonanywhere.com"
	DefaultImageBaseURL   = "https://deisishop.pythonanywhere.com"
)

// Store backends accepted by CART_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPPort           string
	GRPCHealthPort     string
	CatalogBaseURL     string
	ImageBaseURL       string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	CatalogRateLimit   float64
	CollationLocale    string
	LogLevel           string

	CartStore     string
	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration
	MongoURI      string
	MongoDBName   string
	SQLitePath    string
	Postgres      PostgresConfig

	KafkaBrokers []string
	OrdersTopic  string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Load() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		GRPCHealthPort:     getEnv("GRPC_HEALTH_PORT", "50060"),
		CatalogBaseURL:     strings.TrimRight(getEnv("CATALOG_BASE_URL", DefaultCatalogBaseURL), "/"),
		ImageBaseURL:       strings.TrimRight(getEnv("IMAGE_BASE_URL", DefaultImageBaseURL), "/"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB
		CatalogRateLimit:   getFloat("CATALOG_RATE_LIMIT", 10),
		CollationLocale:    getEnv("COLLATION_LOCALE", "pt"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		CartStore:     strings.ToLower(getEnv("CART_STORE", StoreMemory)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CartTTL:       getDuration("CART_TTL", 30*24*time.Hour),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "storefront"),
		SQLitePath:    getEnv("SQLITE_PATH", "./cart.db"),
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		OrdersTopic:  getEnv("ORDERS_TOPIC", "storefront-orders"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
