package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional configuration file (~/.config/tapfix/config.yaml).
// Command-line flags always win over config values.
type Config struct {
	TapesDir      string `yaml:"tapes_dir"`
	ServerAddress string `yaml:"server_address"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	Verbose       bool   `yaml:"verbose"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tapfix", "config.yaml")
}

// loadConfig reads the config file. A missing or unreadable file yields a
// zero Config; a malformed one is ignored the same way, since commands
// must keep working without it.
func loadConfig() Config {
	var cfg Config
	path := configPath()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
