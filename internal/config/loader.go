package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	v.AddConfigPath(configDir)

	// TABSESSION_STATE_DIR, TABSESSION_PERSISTENCE_BLOB_BACKEND, ...
	v.SetEnvPrefix("TABSESSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Same names logging.NewFromEnv reads before the config is loaded.
	if err := v.BindEnv("logging.level", "TABSESSION_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind TABSESSION_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "TABSESSION_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind TABSESSION_LOG_FORMAT: %w", err)
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables. A default config
// file is written on first run.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.unmarshalConfig()
	if err != nil {
		return err
	}
	if err := ensurePaths(config); err != nil {
		return err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			configFile := m.viper.ConfigFileUsed()
			if configFile == "" {
				configFile, _ = GetConfigFile()
			}
			return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
		}
		if createErr := m.createDefaultConfig(); createErr != nil {
			return fmt.Errorf("failed to create default config: %w", createErr)
		}
		if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
			return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
		}
	}
	return nil
}

func (m *Manager) unmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	return config, nil
}

func ensurePaths(config *Config) error {
	if config.StateDir == "" {
		stateDir, err := GetStateDir()
		if err != nil {
			return fmt.Errorf("failed to get state directory: %w", err)
		}
		config.StateDir = stateDir
	}
	if config.Persistence.DatabasePath == "" {
		config.Persistence.DatabasePath = filepath.Join(config.StateDir, databaseName)
	}
	return nil
}

func normalizeConfig(config *Config) {
	config.Persistence.BlobBackend = Backend(strings.ToLower(strings.TrimSpace(string(config.Persistence.BlobBackend))))
	config.Persistence.PreferencesBackend = Backend(strings.ToLower(strings.TrimSpace(string(config.Persistence.PreferencesBackend))))
	if config.Persistence.BlobBackend == "" {
		config.Persistence.BlobBackend = BackendFile
	}
	if config.Persistence.PreferencesBackend == "" {
		config.Persistence.PreferencesBackend = BackendFile
	}

	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	if config.Logging.Level == "warning" {
		config.Logging.Level = "warn"
	}
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// GetConfigFile returns the config file viper read, if any.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

// createDefaultConfig creates a default configuration file.
func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	m.viper.SetConfigType("toml")
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("state_dir", defaults.StateDir)

	m.viper.SetDefault("window.max_slots", defaults.Window.MaxSlots)
	m.viper.SetDefault("window.merge_orphaned_slots", defaults.Window.MergeOrphanedSlots)

	m.viper.SetDefault("persistence.blob_backend", string(defaults.Persistence.BlobBackend))
	m.viper.SetDefault("persistence.preferences_backend", string(defaults.Persistence.PreferencesBackend))
	m.viper.SetDefault("persistence.database_path", defaults.Persistence.DatabasePath)
	m.viper.SetDefault("persistence.worker_count", defaults.Persistence.WorkerCount)
	m.viper.SetDefault("persistence.save_debounce", defaults.Persistence.SaveDebounce.String())
	m.viper.SetDefault("persistence.prefetch_cache_size", defaults.Persistence.PrefetchCacheSize)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.enable_file_log", defaults.Logging.EnableFileLog)
	m.viper.SetDefault("logging.max_size", defaults.Logging.MaxSize)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age", defaults.Logging.MaxAge)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
}
