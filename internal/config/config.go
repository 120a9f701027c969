package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/electronjoe/exifmap/internal/photo"
	"github.com/electronjoe/exifmap/internal/staticmap"
)

const (
	// DefaultConfigDir holds an optional config.{json,yaml} under the home directory.
	DefaultConfigDir = ".exifmap"
	envPrefix        = "EXIFMAP"

	DefaultGeocodeEndpoint = "https://nominatim.openstreetmap.org/reverse"
)

// Config represents the merged defaults, config file and environment.
type Config struct {
	Zoom            int     `mapstructure:"zoom"`
	Pattern         string  `mapstructure:"pattern"`
	SkipUnreadable  bool    `mapstructure:"skip_unreadable"`
	MarkerSeparator string  `mapstructure:"marker_separator"`
	LogLevel        string  `mapstructure:"log_level"`
	Geocode         Geocode `mapstructure:"geocode"`
}

// Geocode configures the reverse geocoding subcommand.
type Geocode struct {
	Endpoint  string        `mapstructure:"endpoint"`
	UserAgent string        `mapstructure:"user_agent"`
	Rate      float64       `mapstructure:"rate"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// New returns a viper instance with defaults, the optional config file
// search path and EXIFMAP_* environment variables wired in.
func New(version string) *viper.Viper {
	v := viper.New()

	v.SetDefault("zoom", staticmap.DefaultZoom)
	v.SetDefault("pattern", photo.DefaultPattern)
	v.SetDefault("skip_unreadable", false)
	v.SetDefault("marker_separator", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("geocode.endpoint", DefaultGeocodeEndpoint)
	v.SetDefault("geocode.user_agent", "exifmap/"+version)
	v.SetDefault("geocode.rate", 1.0)
	v.SetDefault("geocode.timeout", 10*time.Second)

	v.SetConfigName("config")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))
	}

	// EXIFMAP_GEOCODE_USER_AGENT → geocode.user_agent
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file into v and decodes the result. A
// missing config file is not an error; a malformed one is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a run depends on.
func (c Config) Validate() error {
	var errs []string

	if c.Zoom < 0 || c.Zoom > 20 {
		errs = append(errs, fmt.Sprintf("zoom must be 0-20, got %d", c.Zoom))
	}
	if strings.TrimSpace(c.Pattern) == "" {
		errs = append(errs, "pattern is required")
	} else if _, err := filepath.Match(c.Pattern, ""); err != nil {
		errs = append(errs, fmt.Sprintf("pattern %q: %v", c.Pattern, err))
	}
	if c.Geocode.Rate <= 0 {
		errs = append(errs, fmt.Sprintf("geocode.rate must be positive, got %g", c.Geocode.Rate))
	}
	if c.Geocode.Timeout <= 0 {
		errs = append(errs, "geocode.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// MapOptions returns the static map settings for this configuration.
func (c Config) MapOptions() staticmap.Options {
	opts := staticmap.DefaultOptions()
	opts.Zoom = c.Zoom
	opts.Separator = c.MarkerSeparator
	return opts
}
