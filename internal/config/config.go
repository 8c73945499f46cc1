package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models inspectline.yml.
type Config struct {
	Inspector struct {
		Name    string `yaml:"name"`
		Company string `yaml:"company"`
	} `yaml:"inspector"`
	Autosave struct {
		Enabled         bool `yaml:"enabled"`
		IntervalSeconds int  `yaml:"interval_seconds"`
	} `yaml:"autosave"`
	Updates struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"updates"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create it with il config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the built-in defaults when the config file does not
// exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Autosave.Enabled && c.Autosave.IntervalSeconds <= 0 {
		return fmt.Errorf("config.autosave.interval_seconds must be positive when autosave is enabled")
	}
	if c.Updates.Enabled && c.Updates.URL == "" {
		return fmt.Errorf("config.updates.url is required when update checks are enabled")
	}
	return nil
}

// AutosaveInterval returns the configured autosave period, or zero when
// autosave is disabled.
func (c *Config) AutosaveInterval() time.Duration {
	if !c.Autosave.Enabled {
		return 0
	}
	return time.Duration(c.Autosave.IntervalSeconds) * time.Second
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "inspectline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(inspector string) string {
	return fmt.Sprintf(defaultTemplate, inspector)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(fmt.Sprintf(defaultTemplate, "")), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `inspector:
  name: "%s"
  company: ""

autosave:
  enabled: true
  interval_seconds: 120

updates:
  enabled: false
  url: "https://releases.inspectline.dev/latest.json"
`
