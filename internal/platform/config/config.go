package config

import "time"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Engine    EngineConfig    `yaml:"engine"`
	Duplicate DuplicateConfig `yaml:"duplicate_index"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

// EngineConfig bounds what the decoder accepts and tunes the aggregator.
// Scoring weights and fallback constants live with the engine packages;
// only deployment-dependent knobs are exposed here.
type EngineConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size"`
	MaxPixels      int64    `yaml:"max_pixels"`
	MaxWidth       int      `yaml:"max_width"`
	MaxHeight      int      `yaml:"max_height"`
	AllowedFormats []string `yaml:"allowed_formats"`
}

// DuplicateConfig selects the duplicate-sighting index driver.
type DuplicateConfig struct {
	Driver string               `yaml:"driver"`
	TTL    time.Duration        `yaml:"ttl"`
	Redis  DuplicateRedisConfig `yaml:"redis,omitempty"`
}

type DuplicateRedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}
