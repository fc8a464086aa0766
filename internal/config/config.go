// Package config loads the small set of ambient knobs spec.md is silent on:
// log verbosity and blob-store compression. Nothing here can change
// command behavior, on-disk layout names, or error text.
package config

import (
	"encoding/json"
	"os"
)

// Config is decoded from an optional "config.json" at the repository root.
type Config struct {
	LogLevel string `json:"log_level"` // debug, info, warn, error

	Compression struct {
		Enabled   bool `json:"enabled"`
		MinBytes  int  `json:"min_bytes"`
		Level     int  `json:"level"`
		CacheSize int  `json:"cache_size"`
	} `json:"compression"`
}

// Default returns the configuration used when no config.json is present.
func Default() *Config {
	c := &Config{LogLevel: "info"}
	c.Compression.Enabled = true
	c.Compression.MinBytes = 1024
	c.Compression.Level = 2
	c.Compression.CacheSize = 1000
	return c
}

// Load reads path if it exists, falling back to Default() otherwise. A
// present-but-malformed file is an error; an absent one is not.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, err
	}

	return config, nil
}
