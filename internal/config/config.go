package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. HASAMI_MAX_GAMES.
const EnvPrefix = "HASAMI"

var ErrInvalid = errors.New("invalid config")

// Config holds settings for the game service.
type Config struct {
	LogLevel         string `mapstructure:"log_level"`
	MaxGames         int    `mapstructure:"max_games"`
	SubscriberBuffer int    `mapstructure:"subscriber_buffer"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{LogLevel: "info", MaxGames: 0, SubscriberBuffer: 1}
}

// Load reads an optional YAML file at path, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("max_games", d.MaxGames)
	v.SetDefault("subscriber_buffer", d.SubscriberBuffer)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges and the log level name.
func (c Config) Validate() error {
	if c.MaxGames < 0 {
		return fmt.Errorf("%w: max_games must not be negative, got %d", ErrInvalid, c.MaxGames)
	}
	if c.SubscriberBuffer < 1 {
		return fmt.Errorf("%w: subscriber_buffer must be at least 1, got %d", ErrInvalid, c.SubscriberBuffer)
	}
	if c.LogLevel == "" {
		return fmt.Errorf("%w: log_level must not be empty", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return nil
}

// Logger builds a JSON logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
