package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	consolebox "github.com/mkeddie/consolebox"
)

// Config represents the persisted console configuration.
type Config struct {
	Prompt     string      `yaml:"prompt,omitempty"`
	Margin     int         `yaml:"margin,omitempty"`
	AutoScroll *bool       `yaml:"auto_scroll,omitempty"`
	Colors     ColorConfig `yaml:"colors,omitempty"`
}

// ColorConfig holds the color scheme as hex strings.
type ColorConfig struct {
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
	Prompt     string `yaml:"prompt,omitempty"`
	Error      string `yaml:"error,omitempty"`
	Selection  string `yaml:"selection,omitempty"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	auto := true
	return &Config{
		Prompt:     "> ",
		AutoScroll: &auto,
	}
}

// ConfigPath returns the full path to the configuration file,
// creating the directory if needed.
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "consolebox")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig reads the configuration from the config file.
// If the file doesn't exist, returns a default configuration.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile reads the configuration from the given path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Options converts the configuration into console options.
func (cfg *Config) Options() (Options, error) {
	opts := Options{
		Prompt:     cfg.Prompt,
		Margin:     cfg.Margin,
		AutoScroll: true,
	}
	if cfg.AutoScroll != nil {
		opts.AutoScroll = *cfg.AutoScroll
	}

	scheme := consolebox.DefaultScheme()
	for _, entry := range []struct {
		hex  string
		dest *consolebox.Color
	}{
		{cfg.Colors.Foreground, &scheme.Foreground},
		{cfg.Colors.Background, &scheme.Background},
		{cfg.Colors.Prompt, &scheme.Prompt},
		{cfg.Colors.Error, &scheme.Error},
		{cfg.Colors.Selection, &scheme.Selection},
	} {
		if entry.hex == "" {
			continue
		}
		c, err := parseHexColor(entry.hex)
		if err != nil {
			return Options{}, err
		}
		*entry.dest = c
	}
	opts.Scheme = scheme

	return opts, nil
}

// parseHexColor parses "#rrggbb" or "rrggbb" into a color.
func parseHexColor(s string) (consolebox.Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return consolebox.Color{}, fmt.Errorf("invalid color %q: expected rrggbb", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return consolebox.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return consolebox.RGB(r, g, b), nil
}
