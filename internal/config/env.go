package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	EmbedModel   string
	ChatModel    string
	EmbedDim     int
	EmbedTimeout time.Duration
	JWTSecret    string
	ShareTTL     time.Duration
	Workers      int
	Port         string
	Dev          bool
}

// LoadConfig loads the environment variables and returns the config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "minidrive-files"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		ChatModel:    getEnv("CHAT_MODEL", "gemini-1.5-flash"),
		// Must match what EMBED_MODEL actually returns; text-embedding-004
		// produces 768-dim vectors. The embeddings column width and every
		// provider response are checked against this value.
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		EmbedTimeout: getEnvDuration("EMBED_TIMEOUT", 30*time.Second),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		ShareTTL:     getEnvDuration("SHARE_TTL", 12*time.Hour),
		Workers:      getEnvInt("PIPELINE_WORKERS", 4),
		Port:         getEnv("PORT", "8080"),
		Dev:          getEnv("ENV", "production") == "development",
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
