package config

import "time"

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 7000,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "./web",
		},
		Engine: EngineConfig{
			MaxFileSize:    5 * 1024 * 1024,
			MaxPixels:      16777216,
			MaxWidth:       4096,
			MaxHeight:      4096,
			AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "gif", "bmp"},
		},
		Duplicate: DuplicateConfig{
			Driver: "noop",
			TTL:    72 * time.Hour,
		},
	}
}
