package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader reads configuration from an optional YAML file layered over
// defaults, with a .env overlay for environment-driven deployments.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader reading config.yaml from the working directory.
func NewLoader() *Loader {
	return &Loader{
		path:      "config.yaml",
		useDotEnv: true,
	}
}

// WithPath overrides the configuration file path.
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration: defaults, then file, then env.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using process environment")
		}
	}

	cfg := Default()
	origin := "defaults"

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", l.path, err)
		}
		origin = l.path
	case os.IsNotExist(err):
		// Running on defaults is supported; env can still override below.
	default:
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	applyEnv(cfg)

	return &Result{
		Config: cfg,
		Path:   origin,
	}, nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if addr := os.Getenv("DUPLICATE_REDIS_ADDR"); addr != "" {
		cfg.Duplicate.Driver = "redis"
		cfg.Duplicate.Redis.Addr = addr
	}
}
