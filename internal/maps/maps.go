// Package maps loads named town maps from a directory of Tiled JSON files.
package maps

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/playperu/townsquare/internal/town"
)

var (
	ErrMapNotFound    = errors.New("map not found")
	ErrInvalidMapName = errors.New("invalid map name")
	ErrMalformedMap   = errors.New("malformed map")
)

// Loader reads maps from dir and caches them by name. Cached maps are
// shared and must not be modified.
type Loader struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]*town.Map
}

func NewLoader(dir string) *Loader {
	return NewLoaderFS(os.DirFS(dir))
}

func NewLoaderFS(fsys fs.FS) *Loader {
	return &Loader{
		fsys:  fsys,
		cache: make(map[string]*town.Map),
	}
}

// Load returns the map called name. The ".json" suffix is optional.
func (l *Loader) Load(name string) (*town.Map, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMapName, name)
	}

	l.mu.RLock()
	m, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return m, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock.
	if m, ok := l.cache[name]; ok {
		return m, nil
	}

	m, err := l.read(name)
	if err != nil {
		return nil, err
	}
	l.cache[name] = m
	return m, nil
}

// Names lists the maps available in the directory.
func (l *Loader) Names() ([]string, error) {
	matches, err := fs.Glob(l.fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, filepath.Ext(m)))
	}
	return names, nil
}

func (l *Loader) read(name string) (*town.Map, error) {
	data, err := fs.ReadFile(l.fsys, name+".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading map %q: %w", name, err)
	}

	var m town.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedMap, name, err)
	}
	return &m, nil
}
