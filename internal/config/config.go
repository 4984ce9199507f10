package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	RoomCapacity  int `mapstructure:"room_capacity"`
	HistorySize   int `mapstructure:"history_size"`
	MaxNameLen    int `mapstructure:"max_name_len"`
	MaxMessageLen int `mapstructure:"max_message_len"`

	RateWindow    time.Duration `mapstructure:"rate_window"`
	RateMaxEvents int           `mapstructure:"rate_max_events"`

	StatsInterval time.Duration `mapstructure:"stats_interval"`

	AssistantURL     string        `mapstructure:"assistant_url"`
	AssistantTimeout time.Duration `mapstructure:"assistant_timeout"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("room_capacity", 8)
	v.SetDefault("history_size", 100)
	v.SetDefault("max_name_len", 32)
	v.SetDefault("max_message_len", 500)
	v.SetDefault("rate_window", "60s")
	v.SetDefault("rate_max_events", 60)
	v.SetDefault("stats_interval", "30s")
	v.SetDefault("assistant_url", "")
	v.SetDefault("assistant_timeout", "15s")

	readErr := v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if readErr != nil {
		// Defaults cover everything; a missing file is not fatal.
		return &cfg, fmt.Errorf("config file %s not read: %w", fileName, readErr)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.RoomCapacity < 2 {
		return fmt.Errorf("room_capacity must be at least 2, got %d", c.RoomCapacity)
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("history_size must not be negative, got %d", c.HistorySize)
	}
	if c.MaxNameLen < 1 || c.MaxMessageLen < 1 {
		return fmt.Errorf("max_name_len and max_message_len must be positive")
	}
	if c.RateWindow <= 0 || c.RateMaxEvents < 1 {
		return fmt.Errorf("rate limit window and max events must be positive")
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("ping_period must be positive")
	}
	return nil
}
