package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Session SessionConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type SessionConfig struct {
	File string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("DASHBOARD_PORT", 7000)
	viper.SetDefault("BACKEND_URL", "")
	viper.SetDefault("BACKEND_TIMEOUT", "15s")
	viper.SetDefault("SESSION_FILE", ".dashboard-session")
	viper.SetDefault("LOG_LEVEL", "info")

	backendURL := viper.GetString("BACKEND_URL")
	if backendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}

	timeout, err := time.ParseDuration(viper.GetString("BACKEND_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing BACKEND_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("DASHBOARD_PORT"),
		},
		Backend: BackendConfig{
			URL:     backendURL,
			Timeout: timeout,
		},
		Session: SessionConfig{
			File: viper.GetString("SESSION_FILE"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
