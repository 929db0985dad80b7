// Package config loads the settings of the mhtml command from defaults, a
// configuration file, MHTML_* environment variables, and command line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	mhtml "github.com/zostay/go-mhtml"
	"github.com/zostay/go-mhtml/transcode"
)

// EnvPrefix is the prefix of the environment variables that override
// settings, e.g., MHTML_QUALITY.
const EnvPrefix = "MHTML"

// Name is the base name of the configuration file searched for when none is
// given.
const Name = "mhtml"

// Config holds the settings of the mhtml command.
type Config struct {
	// Mode is "inline" or "directory".
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Suffix replaces the extension of each archive to name its output.
	Suffix string `mapstructure:"suffix" yaml:"suffix"`

	// Output names the output file when converting a single archive.
	Output string `mapstructure:"output" yaml:"output"`

	// Sniff turns content sniffing of poorly labeled parts on.
	Sniff bool `mapstructure:"sniff" yaml:"sniff"`

	// Minify turns minification of scripts and stylesheets on.
	Minify bool `mapstructure:"minify" yaml:"minify"`

	// Images turns image scaling and recompression on.
	Images bool `mapstructure:"images" yaml:"images"`

	// MaxDimension bounds the width and height of recompressed images.
	MaxDimension int `mapstructure:"max_dimension" yaml:"max_dimension"`

	// Quality is the JPEG quality of recompressed images.
	Quality int `mapstructure:"quality" yaml:"quality"`

	// Jobs is the number of archives converted at once.
	Jobs int `mapstructure:"jobs" yaml:"jobs"`

	// LogLevel is one of debug, info, warn, or error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// NoColor turns off colored log output.
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}

// Flags maps command line flags to the settings they set.
var Flags = map[string]string{
	"suffix":        "suffix",
	"output":        "output",
	"max-dimension": "max_dimension",
	"quality":       "quality",
	"jobs":          "jobs",
	"log-level":     "log_level",
	"no-color":      "no_color",
}

// Negations maps command line flags that turn a setting off to the setting.
var Negations = map[string]string{
	"no-sniff":  "sniff",
	"no-minify": "minify",
	"no-images": "images",
}

// New returns a viper instance holding the defaults and reading MHTML_*
// environment variables.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("mode", mhtml.Inline.String())
	v.SetDefault("suffix", mhtml.DefaultSuffix)
	v.SetDefault("output", "")
	v.SetDefault("sniff", true)
	v.SetDefault("minify", true)
	v.SetDefault("images", true)
	v.SetDefault("max_dimension", transcode.DefaultMaxDimension)
	v.SetDefault("quality", transcode.DefaultQuality)
	v.SetDefault("jobs", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("no_color", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return v
}

// Bind connects the parsed command line flags to the settings. Flags the user
// did not set leave the settings alone.
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range Flags {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("unable to bind --%s: %w", name, err)
		}
	}

	for name, key := range Negations {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}

		off, err := flags.GetBool(name)
		if err != nil {
			return fmt.Errorf("unable to read --%s: %w", name, err)
		}

		if off {
			v.Set(key, false)
		}
	}

	return nil
}

// DefaultDir is where the configuration file is searched for when none is
// named.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, Name)
}

// Load reads the configuration file at path into v and returns the settings.
// If path is empty, a file named mhtml with any extension viper understands
// is looked for in DefaultDir, and it is not an error if there is none.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings make sense.
func (c *Config) Validate() error {
	if _, err := mhtml.ParseMode(c.Mode); err != nil {
		return err
	}

	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, not %d", c.Quality)
	}

	if c.MaxDimension < 0 {
		return fmt.Errorf("max_dimension must not be negative, not %d", c.MaxDimension)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// ParseLevel reads a log level name.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Level returns the configured log level, or info if it cannot be read.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}
