package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the comment engine knobs.
const (
	DefaultCommentMaxDepth = 3
	DefaultCommentCacheTTL = 60 * time.Second
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDBName             string
	RedisURL                string
	CommentMaxDepth         int
	CommentCacheTTL         time.Duration
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDBName:             getEnv("MONGO_DB", "localhub"),
		RedisURL:                getEnv("REDIS_URL", ""),
		CommentMaxDepth:         getEnvInt("COMMENT_MAX_DEPTH", DefaultCommentMaxDepth),
		CommentCacheTTL:         time.Duration(getEnvInt("COMMENT_CACHE_TTL_SECONDS", int(DefaultCommentCacheTTL/time.Second))) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
