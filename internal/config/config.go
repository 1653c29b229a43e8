// ABOUTME: YAML configuration for the haptics player and receiver
// ABOUTME: Missing files fall back to defaults; flags override loaded values
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when -config is not given
const DefaultPath = "haptics.yaml"

// Backend names accepted by actuator.backend
const (
	BackendAudio    = "audio"
	BackendHeadless = "headless"
)

// Config represents the application configuration
type Config struct {
	// Directory scanned for *.haptic clips
	ClipsDir string `yaml:"clips_dir"`

	// Actuator settings
	Actuator ActuatorConfig `yaml:"actuator"`

	// Remote receiver settings
	Receiver ReceiverConfig `yaml:"receiver"`
}

// ActuatorConfig selects and tunes the output platform
type ActuatorConfig struct {
	Backend     string `yaml:"backend"`
	SampleRate  int    `yaml:"sample_rate"`
	Gain        int    `yaml:"gain"`
	Muted       bool   `yaml:"muted,omitempty"`
	MaxSessions int    `yaml:"max_sessions,omitempty"` // 0 means unlimited
}

// ReceiverConfig represents websocket receiver settings
type ReceiverConfig struct {
	Port int    `yaml:"port"`
	Name string `yaml:"name,omitempty"` // defaults to hostname
	MDNS bool   `yaml:"mdns"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		ClipsDir: "haptics",
		Actuator: ActuatorConfig{
			Backend:    BackendAudio,
			SampleRate: 48000,
			Gain:       100,
		},
		Receiver: ReceiverConfig{
			Port: 8937,
			MDNS: true,
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys absent from the file keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.Actuator.Backend {
	case BackendAudio, BackendHeadless:
	default:
		return fmt.Errorf("unknown actuator backend: %q", c.Actuator.Backend)
	}
	if c.Actuator.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.Actuator.SampleRate)
	}
	if c.Actuator.Gain < 0 || c.Actuator.Gain > 100 {
		return fmt.Errorf("gain must be 0-100, got %d", c.Actuator.Gain)
	}
	if c.Actuator.MaxSessions < 0 {
		return fmt.Errorf("max_sessions must not be negative, got %d", c.Actuator.MaxSessions)
	}
	if c.Receiver.Port < 0 || c.Receiver.Port > 65535 {
		return fmt.Errorf("invalid receiver port: %d", c.Receiver.Port)
	}
	return nil
}
