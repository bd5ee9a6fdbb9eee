package config

import (
	"fmt"
	"strings"
)

// validateConfig performs validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	if config.Window.MaxSlots < 1 {
		validationErrors = append(validationErrors, "window.max_slots must be at least 1")
	}

	backends := []struct {
		key     string
		backend Backend
	}{
		{"persistence.blob_backend", config.Persistence.BlobBackend},
		{"persistence.preferences_backend", config.Persistence.PreferencesBackend},
	}
	for _, b := range backends {
		switch b.backend {
		case BackendFile, BackendSQLite:
			// Valid
		default:
			validationErrors = append(validationErrors, fmt.Sprintf("%s must be one of: file, sqlite (got: %s)", b.key, b.backend))
		}
	}

	if config.Persistence.WorkerCount < 1 {
		validationErrors = append(validationErrors, "persistence.worker_count must be at least 1")
	}
	if config.Persistence.SaveDebounce < 0 {
		validationErrors = append(validationErrors, "persistence.save_debounce must be non-negative")
	}
	if config.Persistence.PrefetchCacheSize < 1 {
		validationErrors = append(validationErrors, "persistence.prefetch_cache_size must be at least 1")
	}

	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level must be one of: trace, debug, info, warn, error (got: %s)", config.Logging.Level))
	}
	switch config.Logging.Format {
	case "console", "json":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.format must be one of: console, json (got: %s)", config.Logging.Format))
	}
	if config.Logging.EnableFileLog && config.Logging.MaxSize < 1 {
		validationErrors = append(validationErrors, "logging.max_size must be at least 1 when file logging is enabled")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAge < 0 {
		validationErrors = append(validationErrors, "logging.max_age must be non-negative")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}
