package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"

	DefaultExchange = "quiz.events"
)

type Config struct {
	Port    string
	LogMode string

	StoreDriver     string
	SQLitePath      string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	RabbitMQURI      string
	RabbitMQExchange string

	TriviaBaseURL    string
	HTTPTimeout      time.Duration
	CategoryCacheTTL time.Duration

	TickInterval         time.Duration
	ClearSessionOnLogout bool
	AllowOrigins         []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := New()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg := &Config{
		Port:    getEnv("PORT", "6666"),
		LogMode: getEnv("LOG_MODE", "development"),

		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		SQLitePath:      getEnv("SQLITE_PATH", "quiz.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),
		RedisKeyPrefix:  getEnv("REDIS_KEY_PREFIX", "quiz:"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "quiz_service"),
		MongoCollection: getEnv("MONGO_COLLECTION", "kv_store"),

		RabbitMQURI:      getEnv("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", ""),

		TriviaBaseURL:    strings.TrimRight(getEnv("TRIVIA_BASE_URL", "https://opentdb.com"), "/"),
		HTTPTimeout:      time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		CategoryCacheTTL: time.Duration(getInt("CATEGORY_CACHE_MINUTES", 60)) * time.Minute,

		TickInterval:         time.Duration(getInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		ClearSessionOnLogout: getBool("CLEAR_SESSION_ON_LOGOUT", false),
		AllowOrigins:         getList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
	}
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange == "" {
		cfg.RabbitMQExchange = DefaultExchange
	}
	return cfg
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite, StoreRedis:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=%s", StoreMongo)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL_MS must be positive")
	}
	if c.RabbitMQURI != "" && c.RabbitMQExchange == "" {
		return fmt.Errorf("RABBITMQ_EXCHANGE is required when RABBITMQ_URI is set")
	}
	return nil
}

// EventsEnabled reports whether a RabbitMQ publisher should be created.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURI != "" && c.RabbitMQExchange != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
