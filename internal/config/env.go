package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted for secrets and service addresses.
const (
	EnvS2APIKey     = "S2_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGrobidURL    = "GROBID_URL"
)

// LoadEnv loads a .env file if one exists. Variables already set in the
// environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// S2APIKey returns the citation-database API key, if configured.
func S2APIKey() string {
	return os.Getenv(EnvS2APIKey)
}

// OpenAIAPIKey returns the classification-oracle API key, if configured.
func OpenAIAPIKey() string {
	return os.Getenv(EnvOpenAIAPIKey)
}

// ApplyEnv overlays environment overrides onto the configuration.
func (c *Config) ApplyEnv() {
	if u := os.Getenv(EnvGrobidURL); u != "" {
		c.GrobidURL = u
	}
}
