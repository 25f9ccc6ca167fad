package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env            string
	Port           string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	OpenAIAPIKey   string
	ChatModel      string
	EmbeddingModel string
	EmbeddingDims  int
	MovieTable     string
	SearchLimit    int
	UserID         string
	OpenAITimeout  int
	OTelEnabled    bool
}

func Load() *Config {
	return &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnv("PORT", "9020"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "movie_user"),
		DBPassword:     getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "movie_password"),
		DBName:         getEnv("DB_NAME", "movie_db"),
		OpenAIAPIKey:   getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
		ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4.1"),
		EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDims:  getEnvInt("OPENAI_EMBEDDING_DIMS", 1536),
		MovieTable:     getEnv("MOVIE_TABLE", "movie"),
		SearchLimit:    getEnvInt("SEARCH_LIMIT", 3),
		UserID:         getEnv("PIPELINE_USER_ID", "AnonimizedLele"),
		OpenAITimeout:  getEnvInt("OPENAI_TIMEOUT_SEC", 120),
		OTelEnabled:    getEnvBool("OTEL_ENABLED", false),
	}
}

// DSN renders the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
