package bootstrap_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tabsession/internal/application/tabstore"
	"github.com/bnema/tabsession/internal/application/window"
	"github.com/bnema/tabsession/internal/bootstrap"
	"github.com/bnema/tabsession/internal/config"
	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/infrastructure/persistence/filestore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.StateDir = dir
	cfg.Persistence.DatabasePath = filepath.Join(dir, "tabsession.sqlite")
	cfg.Persistence.SaveDebounce = 0
	cfg.Logging.Format = "json"
	return cfg
}

func keepGlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func start(t *testing.T, cfg *config.Config, out *bytes.Buffer) *bootstrap.Runtime {
	t.Helper()
	rt, err := bootstrap.Start(context.Background(), cfg, bootstrap.Options{LogOutput: out})
	require.NoError(t, err)
	return rt
}

func restore(t *testing.T, w *window.Window) int {
	t.Helper()
	n, err := w.Restore(context.Background(), false, false)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		var state tabstore.State
		_ = w.Do(context.Background(), func() { state = w.Store.State() })
		return state == tabstore.StateReady
	}, 2*time.Second, 5*time.Millisecond)
	return n
}

func openTab(t *testing.T, w *window.Window, url string) {
	t.Helper()
	var err error
	require.NoError(t, w.Do(context.Background(), func() {
		_, err = w.Selector.OpenNewTab(context.Background(), entity.NewLoadURLParams(url), entity.LaunchFromMenu, entity.InvalidTabID, false)
	}))
	require.NoError(t, err)
}

func TestStart_TabsSurviveRestart(t *testing.T) {
	for _, backend := range []config.Backend{config.BackendFile, config.BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			keepGlobalLevel(t)
			cfg := testConfig(t)
			cfg.Persistence.BlobBackend = backend
			cfg.Persistence.PreferencesBackend = backend
			var logs bytes.Buffer

			rt := start(t, cfg, &logs)
			w, ok := rt.Manager.RequestSlot(rt.Context(), "main", 0)
			require.True(t, ok)
			assert.Equal(t, 0, restore(t, w))
			openTab(t, w, "https://example.com")
			openTab(t, w, "https://example.org")
			require.NoError(t, rt.Close(context.Background()))

			rt = start(t, cfg, &logs)
			t.Cleanup(func() { _ = rt.Close(context.Background()) })
			w, ok = rt.Manager.RequestSlot(rt.Context(), "main", 0)
			require.True(t, ok)
			assert.Equal(t, 2, restore(t, w))

			var urls []string
			require.NoError(t, w.Do(context.Background(), func() {
				for _, tab := range w.Selector.Model(false).Tabs() {
					urls = append(urls, tab.URL)
				}
			}))
			assert.Equal(t, []string{"https://example.com", "https://example.org"}, urls)
			assert.Contains(t, logs.String(), "tabsession started")
		})
	}
}

func TestStart_SecondProcessIsLockedOut(t *testing.T) {
	keepGlobalLevel(t)
	cfg := testConfig(t)
	var logs bytes.Buffer

	rt := start(t, cfg, &logs)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	_, err := bootstrap.Start(context.Background(), cfg, bootstrap.Options{LogOutput: &logs})
	assert.ErrorIs(t, err, filestore.ErrLocked)
}

func TestRuntime_ApplyChangesLevel(t *testing.T) {
	keepGlobalLevel(t)
	cfg := testConfig(t)
	var logs bytes.Buffer

	rt := start(t, cfg, &logs)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	next := *cfg
	next.Logging.Level = "debug"
	next.Persistence.SaveDebounce = time.Second
	rt.Apply(&next)

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, logs.String(), "configuration reloaded")
}

func TestStart_FileLogging(t *testing.T) {
	keepGlobalLevel(t)
	cfg := testConfig(t)
	cfg.Logging.EnableFileLog = true
	var logs bytes.Buffer

	rt := start(t, cfg, &logs)
	require.NoError(t, rt.Close(context.Background()))

	assert.FileExists(t, filepath.Join(config.LogDir(cfg.StateDir), "tabsession.log"))
}

func TestOpenStorage_SelectsBackends(t *testing.T) {
	cfg := testConfig(t)
	cfg.Persistence.BlobBackend = config.BackendSQLite

	storage := bootstrap.OpenStorage(cfg)
	t.Cleanup(func() { _ = storage.Close() })

	ctx := context.Background()
	key := entity.BlobKey{ID: 3}
	require.NoError(t, storage.Blobs.Save(ctx, key, []byte("blob")))
	assert.FileExists(t, cfg.Persistence.DatabasePath)

	require.NoError(t, storage.Prefs.Set(ctx, "k", "v"))
	assert.FileExists(t, filepath.Join(cfg.StateDir, "prefs.json"))
}
