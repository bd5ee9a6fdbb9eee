package config

import (
	"time"
)

// Default configuration constants
const (
	defaultMaxSlots          = 3
	defaultWorkerCount       = 4
	defaultSaveDebounceMs    = 500 // milliseconds
	defaultPrefetchCacheSize = 8   // tab states

	// Logging defaults
	defaultMaxLogSizeMB  = 10 // MB
	defaultMaxBackups    = 3  // backup files
	defaultMaxLogAgeDays = 7  // days
)

// DefaultConfig returns the default configuration values for tabsession.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			MaxSlots:           defaultMaxSlots,
			MergeOrphanedSlots: true,
		},
		Persistence: PersistenceConfig{
			BlobBackend:        BackendFile,
			PreferencesBackend: BackendFile,
			WorkerCount:        defaultWorkerCount,
			SaveDebounce:       defaultSaveDebounceMs * time.Millisecond,
			PrefetchCacheSize:  defaultPrefetchCacheSize,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "console",
			EnableFileLog: false,
			MaxSize:       defaultMaxLogSizeMB,
			MaxBackups:    defaultMaxBackups,
			MaxAge:        defaultMaxLogAgeDays,
			Compress:      true,
		},
	}
}
