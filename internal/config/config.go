package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/bodul/crosswordmaster/internal/crossword"
)

const (
	defaultPort   = "8080"
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"

	minGridSize = 5
	maxGridSize = 50
)

// Config is the application configuration.
type Config struct {
	Port          string `toml:"port"`
	BaseURL       string `toml:"base_url"`
	DatabaseURL   string `toml:"database_url"` // empty means in-memory storage
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	GridSize      int    `toml:"grid_size"`
	AttemptFactor int    `toml:"attempt_factor"`
	SeedSample    bool   `toml:"seed_sample"`

	GCPProjectID string `toml:"gcp_project_id"` // empty disables image import
	GCPRegion    string `toml:"gcp_region"`
	GeminiModel  string `toml:"gemini_model"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:          defaultPort,
		BaseURL:       "http://localhost:" + defaultPort,
		LogLevel:      "info",
		LogFormat:     "pretty",
		GridSize:      crossword.DefaultSize,
		AttemptFactor: crossword.DefaultAttemptFactor,
		SeedSample:    true,
		GCPRegion:     defaultRegion,
		GeminiModel:   defaultModel,
	}
}

// Load builds the configuration from the defaults, then the TOML file at path
// (skipped when path is empty), then a .env file in the working directory if
// present, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PORT":           &c.Port,
		"BASE_URL":       &c.BaseURL,
		"DATABASE_URL":   &c.DatabaseURL,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
		"GCP_PROJECT_ID": &c.GCPProjectID,
		"GCP_REGION":     &c.GCPRegion,
		"GEMINI_MODEL":   &c.GeminiModel,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GRID_SIZE":      &c.GridSize,
		"ATTEMPT_FACTOR": &c.AttemptFactor,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("SEED_SAMPLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEED_SAMPLE: %w", err)
		}
		c.SeedSample = b
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.GridSize < minGridSize || c.GridSize > maxGridSize {
		return fmt.Errorf("grid_size must be between %d and %d, got %d", minGridSize, maxGridSize, c.GridSize)
	}
	if c.AttemptFactor < 1 {
		return fmt.Errorf("attempt_factor must be at least 1, got %d", c.AttemptFactor)
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	return nil
}

// GeneratorOptions returns the grid generator settings.
func (c Config) GeneratorOptions() crossword.Options {
	return crossword.Options{Size: c.GridSize, AttemptFactor: c.AttemptFactor}
}
