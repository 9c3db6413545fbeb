// Package config loads splitsave settings from flags, environment and the
// config file through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/kiesman99/splitsave/internal/encode"
	"github.com/kiesman99/splitsave/pkg/tile"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. SPLITSAVE_SPLIT_ATTEMPTS
const EnvPrefix = "SPLITSAVE"

// Config holds every setting of the CLI and the server
type Config struct {
	Output  string `mapstructure:"output"`
	DPI     int    `mapstructure:"dpi"`
	Journal string `mapstructure:"journal"`
	Verbose bool   `mapstructure:"verbose"`

	// UserAgent is sent when the input is downloaded
	UserAgent string `mapstructure:"user-agent"`

	Split  SplitConfig  `mapstructure:"split"`
	Encode EncodeConfig `mapstructure:"encode"`
	Server ServerConfig `mapstructure:"server"`
}

// SplitConfig configures the fallback to tiles
type SplitConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Confirm     bool `mapstructure:"confirm"`
	KeepPartial bool `mapstructure:"keep-partial"`
	Threshold   int  `mapstructure:"threshold"`
	MinSteps    int  `mapstructure:"min-steps"`
	Step        int  `mapstructure:"step"`
	Attempts    int  `mapstructure:"attempts"`
}

// EncodeConfig configures the image encoder and its limits
type EncodeConfig struct {
	Format       string `mapstructure:"format"`
	Quality      int    `mapstructure:"quality"`
	MaxDimension int    `mapstructure:"max-dimension"`
	MaxPixels    int64  `mapstructure:"max-pixels"`
}

// ServerConfig configures `splitsave serve`
type ServerConfig struct {
	Bind      string        `mapstructure:"bind"`
	Port      int           `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Root      string        `mapstructure:"root"`
	MaxUpload int64         `mapstructure:"max-upload"`
}

// SetDefaults registers the default of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dpi", tile.BaseDPI)
	v.SetDefault("user-agent", "splitsave")

	v.SetDefault("split.enabled", true)
	v.SetDefault("split.confirm", false)
	v.SetDefault("split.keep-partial", false)
	v.SetDefault("split.threshold", tile.DefaultThreshold)
	v.SetDefault("split.min-steps", tile.DefaultMinSteps)
	v.SetDefault("split.step", tile.DefaultStep)
	v.SetDefault("split.attempts", tile.DefaultAttempts)

	v.SetDefault("encode.quality", encode.DefaultQuality)
	v.SetDefault("encode.max-dimension", 0)
	v.SetDefault("encode.max-pixels", 0)

	v.SetDefault("server.bind", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.root", ".")
	v.SetDefault("server.max-upload", 512<<20)
}

// BindEnv makes every key overridable from the environment
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the settings held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config

	hook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.DPI < 0 {
		return fmt.Errorf("dpi must not be negative, got %d", c.DPI)
	}
	if c.Split.Threshold <= 0 {
		return fmt.Errorf("split.threshold must be positive, got %d", c.Split.Threshold)
	}
	if c.Split.MinSteps < 1 {
		return fmt.Errorf("split.min-steps must be at least 1, got %d", c.Split.MinSteps)
	}
	if c.Split.Step < 1 {
		return fmt.Errorf("split.step must be at least 1, got %d", c.Split.Step)
	}
	if c.Split.Attempts < 1 {
		return fmt.Errorf("split.attempts must be at least 1, got %d", c.Split.Attempts)
	}
	if c.Encode.Quality < 0 || c.Encode.Quality > 100 {
		return fmt.Errorf("encode.quality must be between 0 and 100, got %d", c.Encode.Quality)
	}
	if c.Encode.MaxDimension < 0 || c.Encode.MaxPixels < 0 {
		return fmt.Errorf("encode limits must not be negative")
	}
	if c.Encode.Format != "" {
		if _, err := encode.NewEncoder(c.Encode.Format, c.Encode.Quality); err != nil {
			return err
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	return nil
}

// Policy returns the split policy described by the config
func (c *Config) Policy() tile.SplitPolicy {
	return tile.SplitPolicy{
		Threshold: c.Split.Threshold,
		MinSteps:  c.Split.MinSteps,
		Step:      c.Split.Step,
		Attempts:  c.Split.Attempts,
	}
}

// Encoder returns the encoder for path, honouring encode.format when set
func (c *Config) Encoder(path string) (encode.Encoder, error) {
	if c.Encode.Format != "" {
		return encode.NewEncoder(c.Encode.Format, c.Encode.Quality)
	}
	return encode.ForPath(path, c.Encode.Quality)
}
