// Package bootstrap wires configuration, storage and the window manager into a running
// tabsession instance.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/bnema/tabsession/internal/application/tabstore"
	"github.com/bnema/tabsession/internal/application/window"
	"github.com/bnema/tabsession/internal/config"
	"github.com/bnema/tabsession/internal/domain/repository"
	"github.com/bnema/tabsession/internal/infrastructure/persistence/filestore"
	"github.com/bnema/tabsession/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/tabsession/internal/infrastructure/tabstate"
	"github.com/bnema/tabsession/internal/infrastructure/taskrunner"
	"github.com/bnema/tabsession/internal/logging"
)

// Options tune Start. The zero value uses the real clock and logs to stderr.
type Options struct {
	Clock     clockwork.Clock
	LogOutput io.Writer
}

// Runtime is a running instance: a locked state directory, its repositories and the
// window manager built on them.
type Runtime struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Manager *window.Manager
	Storage *Storage

	ctx     context.Context
	pool    *taskrunner.Pool
	lock    *filestore.DirLock
	logFile *logging.LogRotator
}

// Storage holds the repositories of one state directory.
type Storage struct {
	Metadata repository.MetadataRepository
	Blobs    repository.TabStateRepository
	Prefs    repository.PreferenceRepository

	db *sqlite.LazyDB
}

// OpenStorage builds the repositories selected by cfg. The sqlite database, when one
// is used, is opened on first access.
func OpenStorage(cfg *config.Config) *Storage {
	s := &Storage{
		Metadata: filestore.NewMetadataRepository(cfg.StateDir),
		Blobs:    filestore.NewTabStateRepository(cfg.StateDir),
		Prefs:    filestore.NewPreferenceRepository(cfg.StateDir),
	}

	usesSQLite := cfg.Persistence.BlobBackend == config.BackendSQLite ||
		cfg.Persistence.PreferencesBackend == config.BackendSQLite
	if usesSQLite {
		s.db = sqlite.NewLazyDB(cfg.Persistence.DatabasePath)
	}
	if cfg.Persistence.BlobBackend == config.BackendSQLite {
		s.Blobs = sqlite.NewLazyTabStateRepository(s.db)
	}
	if cfg.Persistence.PreferencesBackend == config.BackendSQLite {
		s.Prefs = sqlite.NewLazyPreferenceRepository(s.db)
	}
	return s
}

// Close closes the database if one was opened.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Start locks cfg.StateDir and builds the window manager. Only one process may run on a
// state directory; a second one gets filestore.ErrLocked.
func Start(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	timer := NewStartupTimer(opts.Clock)

	rt := &Runtime{Config: cfg}
	if err := rt.initLogger(cfg, opts); err != nil {
		return nil, err
	}
	ctx = logging.WithContext(ctx, rt.Logger)
	rt.ctx = ctx
	log := logging.FromContext(ctx)
	timer.Mark("logger")

	lock, err := filestore.Lock(cfg.StateDir)
	if err != nil {
		rt.closeLogFile()
		return nil, fmt.Errorf("lock state directory %s: %w", cfg.StateDir, err)
	}
	rt.lock = lock
	timer.Mark("lock")

	codec, err := tabstate.NewEphemeralCodec()
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	rt.Storage = OpenStorage(cfg)
	rt.pool = taskrunner.NewPool(cfg.Persistence.WorkerCount)
	rt.Manager = window.NewManager(ctx, window.Deps{
		Metadata: rt.Storage.Metadata,
		Blobs:    rt.Storage.Blobs,
		Prefs:    rt.Storage.Prefs,
		Codec:    codec,
		Pool:     rt.pool,
		Clock:    opts.Clock,
	}, window.Config{
		MaxSlots:           cfg.Window.MaxSlots,
		MergeOrphanedSlots: cfg.Window.MergeOrphanedSlots,
		Store: tabstore.Config{
			SaveDebounce: cfg.Persistence.SaveDebounce,
			CacheSize:    cfg.Persistence.PrefetchCacheSize,
		},
	})
	timer.Mark("manager")

	log.Info().
		Str("state_dir", cfg.StateDir).
		Str("blob_backend", string(cfg.Persistence.BlobBackend)).
		Str("preferences_backend", string(cfg.Persistence.PreferencesBackend)).
		Int("max_slots", cfg.Window.MaxSlots).
		Msg("tabsession started")
	timer.LogDebug(ctx)

	return rt, nil
}

func (rt *Runtime) initLogger(cfg *config.Config, opts Options) error {
	logCfg := logging.DefaultConfig()
	// Level filtering happens globally so Apply can change it for every logger.
	logCfg.Level = zerolog.TraceLevel
	logCfg.Output = opts.LogOutput
	if cfg.Logging.Format == "json" {
		logCfg.Format = "json"
	}

	if cfg.Logging.EnableFileLog {
		rotator, err := logging.NewLogRotator(logging.RotatorConfig{
			Dir:        config.LogDir(cfg.StateDir),
			MaxSizeMB:  cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAge,
			Compress:   cfg.Logging.Compress,
		})
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		rt.logFile = rotator
		logCfg.File = rotator
	}

	logging.SetLevel(cfg.Logging.Level)
	rt.Logger = logging.New(logCfg).With().
		Str("run", logging.GenerateRunID(opts.Clock.Now())).
		Logger()
	return nil
}

// Context returns the context carrying the runtime's logger.
func (rt *Runtime) Context() context.Context {
	return rt.ctx
}

// Apply applies the settings that can change while running: log level and save
// debounce. Everything else needs a restart.
func (rt *Runtime) Apply(cfg *config.Config) {
	logging.SetLevel(cfg.Logging.Level)
	rt.Manager.SetSaveDebounce(cfg.Persistence.SaveDebounce)

	logging.FromContext(rt.ctx).Info().
		Str("level", cfg.Logging.Level).
		Dur("save_debounce", cfg.Persistence.SaveDebounce).
		Msg("configuration reloaded")
}

// Follow applies every later change of the configuration file.
func (rt *Runtime) Follow(mgr *config.Manager) error {
	mgr.OnConfigChange(rt.Apply)
	return mgr.Watch()
}

// Close releases every window, waits for pending writes and unlocks the state
// directory.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Manager != nil {
		errs = append(errs, rt.Manager.Close(ctx))
	}
	if rt.pool != nil {
		rt.pool.Wait()
	}
	if rt.Storage != nil {
		errs = append(errs, rt.Storage.Close())
	}
	errs = append(errs, rt.lock.Unlock())
	errs = append(errs, rt.closeLogFile())
	return errors.Join(errs...)
}

func (rt *Runtime) closeLogFile() error {
	if rt.logFile == nil {
		return nil
	}
	err := rt.logFile.Close()
	rt.logFile = nil
	return err
}
