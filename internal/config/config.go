// Package config loads docflip settings from flags, environment, a YAML
// file and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tsawler/docflip/convert"
	"github.com/tsawler/docflip/internal/logging"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. DOCFLIP_PAGE_SIZE.
const EnvPrefix = "DOCFLIP"

// Global configuration structure.
type Global struct {
	PageSize           string  `mapstructure:"page_size" yaml:"page_size"`
	Mode               string  `mapstructure:"mode" yaml:"mode"`
	Language           string  `mapstructure:"language" yaml:"language"`
	OutputDir          string  `mapstructure:"output_dir" yaml:"output_dir"`
	MarginPt           float64 `mapstructure:"margin_pt" yaml:"margin_pt"`
	StripRepeatedLines bool    `mapstructure:"strip_repeated_lines" yaml:"strip_repeated_lines"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// OCR
	OCRTimeoutSec int `mapstructure:"ocr_timeout_sec" yaml:"ocr_timeout_sec"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		PageSize:      "A4",
		Mode:          "auto",
		Language:      "auto",
		OutputDir:     os.TempDir(),
		MarginPt:      56,
		LogLevel:      "info",
		LogFormat:     "text",
		OCRTimeoutSec: 120,
	}
}

// DefaultPath is ~/.docflip/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".docflip", "config.yaml"), nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; flags are applied by the caller.
// A missing config file is not an error; a malformed one is.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("mode", d.Mode)
	v.SetDefault("language", d.Language)
	v.SetDefault("output_dir", "")
	v.SetDefault("margin_pt", d.MarginPt)
	v.SetDefault("strip_repeated_lines", d.StripRepeatedLines)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("ocr_timeout_sec", d.OCRTimeoutSec)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.docflip/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values no command could use.
func (c *Global) Validate() error {
	if _, err := convert.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}
	if c.MarginPt < 0 {
		return fmt.Errorf("invalid margin_pt: %v", c.MarginPt)
	}
	if c.OCRTimeoutSec < 0 {
		return fmt.Errorf("invalid ocr_timeout_sec: %d", c.OCRTimeoutSec)
	}
	if _, err := c.Logger(); err != nil {
		return err
	}
	return nil
}

// Set assigns one key from its string form, as used by `docflip config set`.
func (c *Global) Set(key, val string) error {
	switch key {
	case "page_size":
		switch strings.ToUpper(val) {
		case "A4", "LETTER", "LEGAL":
			c.PageSize = strings.ToUpper(val)
		default:
			return fmt.Errorf("invalid page_size: %s (use A4, LETTER or LEGAL)", val)
		}
	case "mode":
		if _, err := convert.ParseMode(val); err != nil {
			return fmt.Errorf("invalid mode: %s (use text, textAndImages or auto)", val)
		}
		c.Mode = val
	case "language":
		c.Language = val
	case "output_dir":
		c.OutputDir = val
	case "margin_pt":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for margin_pt: %v", val)
		}
		c.MarginPt = f
	case "strip_repeated_lines":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for strip_repeated_lines: %v", val)
		}
		c.StripRepeatedLines = b
	case "log_level":
		if _, err := logrus.ParseLevel(val); err != nil {
			return fmt.Errorf("invalid log_level: %s", val)
		}
		c.LogLevel = val
	case "log_format":
		switch logging.Format(strings.ToLower(val)) {
		case logging.FormatText, logging.FormatJSON:
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "ocr_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for ocr_timeout_sec: %v", val)
		}
		c.OCRTimeoutSec = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// OCRTimeout is the deadline the CLI puts on a conversion that may run OCR.
// Zero means no deadline.
func (c *Global) OCRTimeout() time.Duration {
	return time.Duration(c.OCRTimeoutSec) * time.Second
}

// Logger builds the logger described by log_level and log_format, writing to
// stderr.
func (c *Global) Logger() (*logrus.Logger, error) {
	return logging.New(c.LogLevel, logging.Format(c.LogFormat), os.Stderr)
}
