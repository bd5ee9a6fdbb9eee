// Package cli provides the offline commands that inspect and clean a state directory.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bnema/tabsession/internal/bootstrap"
	"github.com/bnema/tabsession/internal/cli/styles"
	"github.com/bnema/tabsession/internal/config"
	"github.com/bnema/tabsession/internal/domain/build"
	"github.com/bnema/tabsession/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	Theme     *styles.Theme
	BuildInfo build.Info
	Storage   *bootstrap.Storage

	ctx context.Context
}

// NewApp loads the configuration and opens the state directory it points at.
func NewApp() (*App, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewAppWithConfig(mgr.Get()), nil
}

// NewAppWithConfig builds an App on an already loaded configuration.
func NewAppWithConfig(cfg *config.Config) *App {
	// CLI output goes to stdout; keep the logger quiet unless asked otherwise.
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel("warn")
	if envLevel := os.Getenv("TABSESSION_LOG_LEVEL"); envLevel != "" {
		logCfg.Level = logging.ParseLevel(envLevel)
	}
	logCfg.TimeFormat = "15:04:05"
	logger := logging.New(logCfg)

	logger.Debug().Str("state_dir", cfg.StateDir).Msg("opening state directory")

	return &App{
		Config:  cfg,
		Theme:   styles.NewTheme(),
		Storage: bootstrap.OpenStorage(cfg),
		ctx:     logging.WithContext(context.Background(), logger),
	}
}

// Ctx returns the context carrying the CLI logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Close releases the storage.
func (a *App) Close() error {
	return a.Storage.Close()
}
