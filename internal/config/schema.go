// Package config loads tabsession configuration with Viper.
package config

import "time"

// Config represents the complete configuration for tabsession.
type Config struct {
	// StateDir holds metadata files, tab state blobs and preferences. Defaults to the XDG state directory.
	StateDir    string            `mapstructure:"state_dir" yaml:"state_dir" toml:"state_dir" json:"state_dir,omitempty"`
	Window      WindowConfig      `mapstructure:"window" yaml:"window" toml:"window" json:"window"`
	Persistence PersistenceConfig `mapstructure:"persistence" yaml:"persistence" toml:"persistence" json:"persistence"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging" toml:"logging" json:"logging"`
}

// WindowConfig controls window slot assignment.
type WindowConfig struct {
	// MaxSlots is the number of windows that can be open at once.
	MaxSlots int `mapstructure:"max_slots" yaml:"max_slots" toml:"max_slots" json:"max_slots" jsonschema:"minimum=1,default=3"`
	// MergeOrphanedSlots restores the tabs of unclaimed slots into the first window.
	MergeOrphanedSlots bool `mapstructure:"merge_orphaned_slots" yaml:"merge_orphaned_slots" toml:"merge_orphaned_slots" json:"merge_orphaned_slots"`
}

// Backend selects where tab state blobs or preferences are stored.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// PersistenceConfig controls the storage backends and the background writer.
type PersistenceConfig struct {
	BlobBackend        Backend `mapstructure:"blob_backend" yaml:"blob_backend" toml:"blob_backend" json:"blob_backend" jsonschema:"enum=file,enum=sqlite,default=file"`
	PreferencesBackend Backend `mapstructure:"preferences_backend" yaml:"preferences_backend" toml:"preferences_backend" json:"preferences_backend" jsonschema:"enum=file,enum=sqlite,default=file"`
	// DatabasePath is used by the sqlite backends. Defaults to tabsession.sqlite in the state directory.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path" toml:"database_path" json:"database_path,omitempty"`
	// WorkerCount bounds the number of concurrent disk operations.
	WorkerCount int `mapstructure:"worker_count" yaml:"worker_count" toml:"worker_count" json:"worker_count" jsonschema:"minimum=1,default=4"`
	// SaveDebounce is the quiet period before a burst of changes is written. Reloaded live.
	SaveDebounce time.Duration `mapstructure:"save_debounce" yaml:"save_debounce" toml:"save_debounce" json:"save_debounce"`
	// PrefetchCacheSize is the number of loaded tab states kept in memory.
	PrefetchCacheSize int `mapstructure:"prefetch_cache_size" yaml:"prefetch_cache_size" toml:"prefetch_cache_size" json:"prefetch_cache_size" jsonschema:"minimum=1,default=8"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is reloaded live.
	Level  string `mapstructure:"level" yaml:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Format string `mapstructure:"format" yaml:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json,default=console"`

	// File output, rotated under <state_dir>/logs
	EnableFileLog bool `mapstructure:"enable_file_log" yaml:"enable_file_log" toml:"enable_file_log" json:"enable_file_log"`
	MaxSize       int  `mapstructure:"max_size" yaml:"max_size" toml:"max_size" json:"max_size"`
	MaxBackups    int  `mapstructure:"max_backups" yaml:"max_backups" toml:"max_backups" json:"max_backups"`
	MaxAge        int  `mapstructure:"max_age" yaml:"max_age" toml:"max_age" json:"max_age"`
	Compress      bool `mapstructure:"compress" yaml:"compress" toml:"compress" json:"compress"`
}
