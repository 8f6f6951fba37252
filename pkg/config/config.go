package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string
	StorageBucket   string
	StoreDriver     string // "firestore" or "memory"
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	AllowedOrigins  []string

	// service account JSON takes precedence over the file path
	FirebaseCredentialsJSON string
	FirebaseCredentialsPath string

	FeedBatchSize           int
	PresenceInactiveTimeout time.Duration
	PresenceActiveDelay     time.Duration
	SearchDebounce          time.Duration
	MessageEditWindow       time.Duration
	PresenceCacheTTL        time.Duration
	ShutdownTimeout         time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		StoreDriver:     getEnv("STORE_DRIVER", "firestore"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         int(getEnvAsInt64("REDIS_DB", 0)),
		AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS"),

		FirebaseCredentialsJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		FeedBatchSize:           int(getEnvAsInt64("FEED_BATCH_SIZE", 10)),
		PresenceInactiveTimeout: getEnvAsDuration("PRESENCE_INACTIVE_TIMEOUT", 2*time.Minute),
		PresenceActiveDelay:     getEnvAsDuration("PRESENCE_ACTIVE_DELAY", 5*time.Minute),
		SearchDebounce:          getEnvAsDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		MessageEditWindow:       getEnvAsDuration("MESSAGE_EDIT_WINDOW", 5*time.Minute),
		PresenceCacheTTL:        getEnvAsDuration("PRESENCE_CACHE_TTL", 24*time.Hour),
		ShutdownTimeout:         getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
