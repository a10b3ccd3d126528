package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/brettbedarf/projectfs/internal/util"
	"gopkg.in/yaml.v3"
)

// CLI verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	DefaultProvider = ProviderMock

	// DefaultMaxSteps bounds the tool commands a live model may issue per turn
	DefaultMaxSteps = 40

	// DefaultMockMaxSteps is the stricter ceiling for the simulated backend
	DefaultMockMaxSteps = 4

	// DefaultUndoDepth is how many previous versions are kept per file
	DefaultUndoDepth = 1

	DefaultStoreDriver = "memory"
	DefaultListen      = ":8080"

	DefaultFsName = "projectfs"
	DefaultName   = "projectfs"
)

// Config contains runtime configuration values.
type Config struct {
	MountOptions
	Store StoreOptions

	LogLvl       util.LogLevel // Global log level (Default info)
	Provider     ProviderType  // Active model backend (Default mock)
	MaxSteps     int           // Step ceiling per turn for live providers (Default 40)
	MockMaxSteps int           // Step ceiling per turn for the mock provider (Default 4)
	UndoDepth    int           // Undo levels kept per file path (Default 1)
	Listen       string        // HTTP listen address (Default :8080)
}

// StepLimit returns the step ceiling for the configured provider.
func (c *Config) StepLimit() int {
	if c.Provider == ProviderMock {
		return c.MockMaxSteps
	}
	return c.MaxSteps
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace)
	LogLvl       *int    `yaml:"verbose,omitempty" json:"verbose,omitempty" toml:"verbose,omitempty"`
	Provider     *string `yaml:"provider,omitempty" json:"provider,omitempty" toml:"provider,omitempty"`
	MaxSteps     *int    `yaml:"max_steps,omitempty" json:"max_steps,omitempty" toml:"max_steps,omitempty"`
	MockMaxSteps *int    `yaml:"mock_max_steps,omitempty" json:"mock_max_steps,omitempty" toml:"mock_max_steps,omitempty"`
	UndoDepth    *int    `yaml:"undo_depth,omitempty" json:"undo_depth,omitempty" toml:"undo_depth,omitempty"`
	Listen       *string `yaml:"listen,omitempty" json:"listen,omitempty" toml:"listen,omitempty"`
	StoreDriver  *string `yaml:"store_driver,omitempty" json:"store_driver,omitempty" toml:"store_driver,omitempty"`
	StoreDSN     *string `yaml:"store_dsn,omitempty" json:"store_dsn,omitempty" toml:"store_dsn,omitempty"`
	FsName       *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty" toml:"fs_name,omitempty"`
	Name         *string `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty"`
	Debug        *bool   `yaml:"debug,omitempty" json:"debug,omitempty" toml:"debug,omitempty"`
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		Store: StoreOptions{
			Driver: DefaultStoreDriver,
		},
		LogLvl:       DefaultLogLvl,
		Provider:     DefaultProvider,
		MaxSteps:     DefaultMaxSteps,
		MockMaxSteps: DefaultMockMaxSteps,
		UndoDepth:    DefaultUndoDepth,
		Listen:       DefaultListen,
	}
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbosity(*override.LogLvl)
	}
	if override.Provider != nil {
		c.Provider = strings.ToLower(*override.Provider)
	}
	if override.MaxSteps != nil {
		c.MaxSteps = *override.MaxSteps
	}
	if override.MockMaxSteps != nil {
		c.MockMaxSteps = *override.MockMaxSteps
	}
	if override.UndoDepth != nil {
		c.UndoDepth = *override.UndoDepth
	}
	if override.Listen != nil {
		c.Listen = *override.Listen
	}
	if override.StoreDriver != nil {
		c.Store.Driver = *override.StoreDriver
	}
	if override.StoreDSN != nil {
		c.Store.DSN = *override.StoreDSN
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports YAML (.yaml, .yml), JSON (.json) and TOML (.toml) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
