package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := createOverride()
	cfg := NewConfig(override)

	expCfg := &Config{
		MountOptions: MountOptions{
			Debug:  true,
			FsName: "test_fs",
			Name:   "test_name",
		},
		Store: StoreOptions{
			Driver: "sqlite3",
			DSN:    "file:test.db",
		},
		LogLvl:       util.TraceLevel,
		Provider:     ProviderAnthropic,
		MaxSteps:     *override.MaxSteps,
		MockMaxSteps: *override.MockMaxSteps,
		UndoDepth:    *override.UndoDepth,
		Listen:       *override.Listen,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", 1, util.ErrorLevel},
		{"verbose_2_warn", 2, util.WarnLevel},
		{"verbose_3_info", 3, util.InfoLevel},
		{"verbose_4_debug", 4, util.DebugLevel},
		{"verbose_5_trace", 5, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := &ConfigOverride{
				LogLvl: &tt.verboseValue,
			}

			cfg := NewConfig(override)

			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"CLI verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		FsName:   util.Pointer("test_fs"),
		MaxSteps: util.Pointer(DefaultMaxSteps + 1),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.FsName = "test_fs"
	expCfg.MaxSteps = DefaultMaxSteps + 1

	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestConfig_StepLimit(t *testing.T) {
	t.Parallel()

	t.Run("Mock provider", func(t *testing.T) {
		t.Parallel()
		cfg := NewDefaultConfig()
		assert.Equal(t, DefaultMockMaxSteps, cfg.StepLimit())
	})
	t.Run("Live provider", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig(&ConfigOverride{Provider: util.Pointer("OpenRouter")})
		assert.Equal(t, ProviderOpenRouter, cfg.Provider, "provider names are case-insensitive")
		assert.Equal(t, DefaultMaxSteps, cfg.StepLimit())
	})
}

func TestDetectProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want ProviderType
	}{
		{"empty env", map[string]string{}, ProviderMock},
		{"openrouter key wins", map[string]string{"OPENROUTER_API_KEY": "k", "ANTHROPIC_API_KEY": "k"}, ProviderOpenRouter},
		{"anthropic key", map[string]string{"ANTHROPIC_API_KEY": "k"}, ProviderAnthropic},
		{"blank key ignored", map[string]string{"ANTHROPIC_API_KEY": "  "}, ProviderMock},
		{"explicit with key", map[string]string{"PROVIDER": "Anthropic", "ANTHROPIC_API_KEY": "k", "OPENROUTER_API_KEY": "k"}, ProviderAnthropic},
		{"explicit without key", map[string]string{"PROVIDER": "openrouter", "ANTHROPIC_API_KEY": "k"}, ProviderMock},
		{"explicit mock", map[string]string{"PROVIDER": "mock", "ANTHROPIC_API_KEY": "k"}, ProviderMock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			getenv := func(k string) string { return tt.env[k] }
			assert.Equal(t, tt.want, DetectProvider(getenv))
		})
	}
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext   string
		build func() (*ConfigOverride, []byte)
	}

	cases := []tc{
		{
			ext: ".yaml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".yml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".json",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := json.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
	}

	for _, c := range cases {
		name := "valid" + c.ext
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			override, data := c.build()
			dir := t.TempDir()
			path := filepath.Join(dir, "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)

			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_TOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.toml")
	data := []byte("provider = \"anthropic\"\nmax_steps = 12\nstore_driver = \"file\"\nstore_dsn = \"/tmp/projects\"\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := NewConfigFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, 12, cfg.MaxSteps)
	assert.Equal(t, StoreOptions{Driver: "file", DSN: "/tmp/projects"}, cfg.Store)
	assert.Equal(t, DefaultMockMaxSteps, cfg.MockMaxSteps, "unset fields keep defaults")
}

// TestLoadConfigOverrideFile_NonExistentFile tests error handling
// when trying to load a file that doesn't exist.
func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("max_steps: 1"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestLoadConfigOverrideFile_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config file")
}

// TestNewConfigFromFile_FileError tests that file loading errors
// are properly propagated by the convenience function.
func TestNewConfigFromFile_FileError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
}

func createDefaultCfg() *Config {
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

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	return &ConfigOverride{
		LogLvl:       util.Pointer(TraceVerbose),
		Provider:     util.Pointer(ProviderAnthropic),
		MaxSteps:     util.Pointer(DefaultMaxSteps + 1),
		MockMaxSteps: util.Pointer(DefaultMockMaxSteps + 1),
		UndoDepth:    util.Pointer(DefaultUndoDepth + 1),
		Listen:       util.Pointer("127.0.0.1:9999"),
		StoreDriver:  util.Pointer("sqlite3"),
		StoreDSN:     util.Pointer("file:test.db"),
		FsName:       util.Pointer("test_fs"),
		Name:         util.Pointer("test_name"),
		Debug:        util.Pointer(true),
	}
}
