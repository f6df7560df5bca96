// Package config loads the service settings from a .env file, the process
// environment and an optional YAML file, in increasing precedence order of
// environment over file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Port                   string         `mapstructure:"port"`
	APIEndpoint            string         `mapstructure:"api_endpoint"`
	APIKey                 string         `mapstructure:"api_key"`
	LiffID                 string         `mapstructure:"liff_id"`
	LineChannelAccessToken string         `mapstructure:"line_channel_access_token"`
	SecretKey              string         `mapstructure:"secret_key"`
	DeliveryFee            int64          `mapstructure:"delivery_fee"`
	Timezone               string         `mapstructure:"timezone"`
	BackendTimeout         time.Duration  `mapstructure:"backend_timeout"`
	SessionTTL             time.Duration  `mapstructure:"session_ttl"`
	AllowedOrigins         []string       `mapstructure:"allowed_origins"`
	MongoDBURL             string         `mapstructure:"mongodb_url"`
	MongoDBDatabase        string         `mapstructure:"mongodb_database"`
	LogLevel               string         `mapstructure:"log_level"`

	// Location is Timezone resolved.
	Location *time.Location `mapstructure:"-"`
}

var defaults = map[string]any{
	"port":                      "8000",
	"api_endpoint":              "",
	"api_key":                   "",
	"liff_id":                   "",
	"line_channel_access_token": "",
	"secret_key":                "",
	"delivery_fee":              30,
	"timezone":                  "Asia/Taipei",
	"backend_timeout":           "15s",
	"session_ttl":               "2h",
	"allowed_origins":           "",
	"mongodb_url":               "",
	"mongodb_database":          "restaurant",
	"log_level":                 "info",
}

// Load reads envFile (if it exists) into the environment, then builds the
// config from defaults, cfgFile (optional) and the environment.
func Load(envFile, cfgFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	cfg.AllowedOrigins = compact(cfg.AllowedOrigins)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.APIEndpoint == "" {
		missing = append(missing, "API_ENDPOINT")
	}
	if c.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.DeliveryFee < 0 {
		return fmt.Errorf("DELIVERY_FEE must not be negative, got %d", c.DeliveryFee)
	}
	if c.BackendTimeout <= 0 || c.SessionTTL <= 0 {
		return errors.New("BACKEND_TIMEOUT and SESSION_TTL must be positive")
	}
	return nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
