// Package config loads the runtime settings of the proposal tracker.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the settings read at startup.
type Config struct {
	DatabasePath    string
	EmailConfigPath string
	ExportDir       string
	LogFile         string
	LogLevel        string
	LogFormat       string // text or json
	Embedding       EmbeddingConfig
}

// EmbeddingConfig points the similar-proposal index at an embeddings endpoint.
type EmbeddingConfig struct {
	Client string // litellm or ollama
	URL    string
	APIKey string
	Model  string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not read .env: %v", err)
	}

	embeddingClient := getEnv("EMBEDDING_CLIENT", "litellm")

	return &Config{
		DatabasePath:    getEnv("PROPOSAL_PILOT_DB", "proposal_pilot.db"),
		EmailConfigPath: getEnv("PROPOSAL_PILOT_EMAIL_CONFIG", "config.json"),
		ExportDir:       getEnv("EXPORT_DIR", "."),
		LogFile:         getEnv("LOG_FILE", "proposal_pilot.log"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		Embedding: EmbeddingConfig{
			Client: embeddingClient,
			URL:    getEnv("EMBEDDING_URL", defaultEmbeddingURL(embeddingClient)),
			APIKey: getEnv("EMBEDDING_API_KEY", defaultEmbeddingKey(embeddingClient)),
			Model:  getEnv("EMBEDDING_MODEL", "proposal-embedding"),
		},
	}
}

func defaultEmbeddingURL(client string) string {
	if client == "ollama" {
		return "http://localhost:11434"
	}
	return "http://localhost:4000"
}

func defaultEmbeddingKey(client string) string {
	if client == "ollama" {
		return ""
	}
	return "sk-1234"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
