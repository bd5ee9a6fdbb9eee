package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bnema/tabsession/internal/domain/repository"
)

// PreferencesFile is the preference file name inside the state directory.
const PreferencesFile = "prefs.json"

type preferenceRepo struct {
	path string
	mu   sync.Mutex
}

// NewPreferenceRepository stores preferences as a JSON object in <dir>/prefs.json.
func NewPreferenceRepository(dir string) repository.PreferenceRepository {
	return &preferenceRepo{path: filepath.Join(dir, PreferencesFile)}
}

func (r *preferenceRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := r.load()
	if err != nil {
		return "", false, err
	}
	value, ok := prefs[key]
	return value, ok, nil
}

func (r *preferenceRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := r.load()
	if err != nil {
		return err
	}
	if old, ok := prefs[key]; ok && old == value {
		return nil
	}
	prefs[key] = value
	return r.store(prefs)
}

func (r *preferenceRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := prefs[key]; !ok {
		return nil
	}
	delete(prefs, key)
	return r.store(prefs)
}

func (r *preferenceRepo) load() (map[string]string, error) {
	prefs := make(map[string]string)
	data, err := readFileOptional(r.path)
	if err != nil || len(data) == 0 {
		return prefs, err
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		// A broken preference file only loses hints like the prefetch target.
		return make(map[string]string), nil
	}
	return prefs, nil
}

func (r *preferenceRepo) store(prefs map[string]string) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return writeFileAtomic(r.path, data)
}
