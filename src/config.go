package pscal

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds configuration for the value engine
type Config struct {
	Debug         bool     `toml:"debug"`
	LogCategories []string `toml:"log_categories"`
	// TypeWarnings reports assignment type mismatches that have no promotion rule
	TypeWarnings bool `toml:"type_warnings"`
	// MaxFixedStringLength is the largest accepted string[N]
	MaxFixedStringLength int `toml:"max_fixed_string_length"`
	// DefaultPointee is the type New allocates when a pointer carries no base type
	DefaultPointee string `toml:"default_pointee"`
	// SweepNestedPointers makes Dispose also clear aliases held in record
	// fields and array elements of live symbols
	SweepNestedPointers bool   `toml:"sweep_nested_pointers"`
	Color               string `toml:"color"` // "auto", "always" or "never"
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Debug:                false,
		TypeWarnings:         true,
		MaxFixedStringLength: 255,
		DefaultPointee:       "integer",
		SweepNestedPointers:  false,
		Color:                "auto",
	}
}

// LoadConfig reads a TOML file over the defaults
func LoadConfig(path string) (*Config, []string, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	if err := cfg.validate(); err != nil {
		return nil, unknown, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, unknown, nil
}

// ParseConfig decodes TOML text over the defaults
func ParseConfig(text string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(text, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxFixedStringLength <= 0 {
		return fmt.Errorf("max_fixed_string_length must be positive, got %d", c.MaxFixedStringLength)
	}
	switch strings.ToLower(c.Color) {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.DefaultPointee == "" {
		c.DefaultPointee = "integer"
	}
	return nil
}

// newConfiguredLogger builds the logger described by the config
func (c *Config) newConfiguredLogger() *Logger {
	logger := NewLogger(c.Debug)
	switch strings.ToLower(c.Color) {
	case "always":
		logger.SetColor(true)
	case "never":
		logger.SetColor(false)
	}
	for _, name := range c.LogCategories {
		if strings.EqualFold(name, "all") {
			logger.EnableAllCategories()
			continue
		}
		logger.EnableCategory(LogCategory(strings.ToLower(name)))
	}
	return logger
}
