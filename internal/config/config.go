package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Environment string
	DataDir     string
	LogDir      string
	// AI configuration
	AnthropicAPIKey string
	DefaultProvider string // "anthropic" or "simulated"
	DefaultModel    string
	SimulatedModel  string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	dataDir := getEnv("STUDYDESK_DATA_DIR", defaultDataDir())

	return &Config{
		Environment: env,
		DataDir:     dataDir,
		LogDir:      getEnv("LOG_DIR", filepath.Join(dataDir, "logs")),
		// AI configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", "simulated"),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-haiku-4-5-20251001"),
		SimulatedModel:  getEnv("SIMULATED_MODEL", "simulated-study"),
		// Debug defaults to true outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// DatabasePath returns the SQLite file location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "studydesk.db")
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studydesk"
	}
	return filepath.Join(home, ".studydesk")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
