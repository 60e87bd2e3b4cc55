package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the settings file surface. Content settings (fonts, scripts,
// stylesheets) belong to the renderer and are not represented here.
type Config struct {
	Homepage  string          `mapstructure:"homepage" toml:"homepage" json:"homepage" jsonschema:"description=URL opened by blank windows when set"`
	Downloads DownloadsConfig `mapstructure:"downloads" toml:"downloads" json:"downloads"`
	Logging   LoggingConfig   `mapstructure:"logging" toml:"logging" json:"logging"`
}

// DownloadsConfig controls destination resolution.
type DownloadsConfig struct {
	Directory string `mapstructure:"directory" toml:"directory" json:"directory" jsonschema:"description=Directory downloads are saved to"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	downloadDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		downloadDir = filepath.Join(home, "Downloads")
	}
	return &Config{
		Downloads: DownloadsConfig{
			Directory: downloadDir,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	dirs  *Dirs
	viper *viper.Viper

	mu             sync.RWMutex
	config         *Config
	callbacks      []func(*Config)
	watching       bool
	skipNextReload bool
}

// NewManager creates a configuration manager rooted at the given directories.
func NewManager(dirs *Dirs) *Manager {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dirs.ConfigHome)

	v.SetEnvPrefix("VITRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{
		dirs:  dirs,
		viper: v,
	}
}

// Load reads the configuration, creating the default file (and its JSON
// schema) on first launch.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.dirs.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := WriteConfigOrdered(DefaultConfig(), m.dirs.ConfigFile()); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		if err := GenerateSchemaFile(m.dirs); err != nil {
			return fmt.Errorf("write config schema: %w", err)
		}
		if err := m.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read default config: %w", err)
		}
	}

	cfg, err := m.unmarshal()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Get returns the current configuration. Load must have succeeded first.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Dirs returns the directories this manager is rooted at.
func (m *Manager) Dirs() *Dirs {
	return m.dirs
}

// Set updates a single key and persists the whole file. The watcher skips
// the resulting change event since the in-memory config is already current.
func (m *Manager) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.viper.Set(key, value)
	cfg, err := m.unmarshal()
	if err != nil {
		return err
	}
	m.config = cfg
	m.skipNextReload = m.watching
	return WriteConfigOrdered(cfg, m.dirs.ConfigFile())
}

func (m *Manager) setDefaults() {
	def := DefaultConfig()
	m.viper.SetDefault("homepage", def.Homepage)
	m.viper.SetDefault("downloads.directory", def.Downloads.Directory)
	m.viper.SetDefault("logging.level", def.Logging.Level)
	m.viper.SetDefault("logging.format", def.Logging.Format)
}

func (m *Manager) unmarshal() (*Config, error) {
	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (m *Manager) reload() error {
	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	cfg, err := m.unmarshal()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

func validate(cfg *Config) error {
	if cfg.Downloads.Directory == "" {
		return fmt.Errorf("downloads.directory must not be empty")
	}
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", cfg.Logging.Format)
	}
	return nil
}
