// Package buildconfig loads and holds all nerfeatures build/runtime
// configuration. Settings are layered: defaults -> nerfeatures-config.json
// -> environment variables (env vars win).
package buildconfig

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds the full build and introspection configuration.
type Config struct {
	TrainingConfigFile string `json:"trainingConfigFile"`
	ModelFile          string `json:"modelFile"`
	LogLevel           string `json:"logLevel"`

	IntrospectPort int    `json:"introspectPort"`
	BindAddress    string `json:"bindAddress"`

	BuildCacheFile string `json:"buildCacheFile"` // path to bbolt build cache; empty = in-memory only
}

// Load returns config with defaults overridden by nerfeatures-config.json
// and env vars.
func Load() *Config {
	cfg := defaults()
	loadFile(cfg, "nerfeatures-config.json")
	loadEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		TrainingConfigFile: "features.conf",
		ModelFile:          "model.bin",
		LogLevel:           "info",
		IntrospectPort:     8090,
		BindAddress:        "127.0.0.1",
		BuildCacheFile:     "buildcache.db",
	}
}

func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path) //nolint:gosec // G703: path is a controlled config file path, not user input
	if err != nil {
		return // file is optional
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("[BUILDCONFIG] Warning: could not parse %s: %v", path, err)
	} else {
		log.Printf("[BUILDCONFIG] Loaded %s", path)
	}
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("TRAINING_CONFIG_FILE"); v != "" {
		cfg.TrainingConfigFile = v
	}
	if v := os.Getenv("MODEL_FILE"); v != "" {
		cfg.ModelFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("INTROSPECT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IntrospectPort = n
		}
	}
	if v := os.Getenv("BIND_ADDRESS"); v != "" {
		cfg.BindAddress = v
	}
	if v := os.Getenv("BUILD_CACHE_FILE"); v != "" {
		cfg.BuildCacheFile = v
	}
}
