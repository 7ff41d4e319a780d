package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// Theme names.
const (
	Dark   = "dark"
	Bright = "bright"
)

// File is the on-disk theme configuration.
type File struct {
	Theme  string            `json:"theme"`
	Themes map[string]string `json:"themes"`
}

// Default returns the configuration written when the file is missing or
// unreadable.
func Default() File {
	return File{
		Theme: Dark,
		Themes: map[string]string{
			Dark:   "/static/style.css",
			Bright: "/static/bright_style.css",
		},
	}
}

// Store holds the UI theme selection backed by a JSON file.
type Store struct {
	path   string
	mu     sync.RWMutex
	file   File
	logger *slog.Logger
}

// Open loads the theme file at path, creating it with defaults when it does
// not exist. A file that cannot be parsed or lacks a required key is reset
// to defaults.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		logger: slog.Default().With("component", "theme"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file.
func (s *Store) Reload() error {
	file, err := s.read()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("invalid theme file, resetting to default", "path", s.path, "error", err)
		} else {
			s.logger.Info("created theme file", "path", s.path)
		}
		file = Default()
		if err := s.write(file); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.file = file
	s.mu.Unlock()
	return nil
}

// Current returns the selected theme name.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.Theme
}

// Stylesheet returns the stylesheet path of the selected theme, falling back
// to the default dark stylesheet.
func (s *Store) Stylesheet() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if css, ok := s.file.Themes[s.file.Theme]; ok {
		return css
	}
	return Default().Themes[Dark]
}

// Set selects a theme and persists the choice.
func (s *Store) Set(name string) error {
	if name != Dark && name != Bright {
		return ErrUnknownTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := File{Theme: name, Themes: maps.Clone(s.file.Themes)}
	if err := s.write(next); err != nil {
		return err
	}
	s.file = next
	s.logger.Info("theme changed", "theme", name)
	return nil
}

// Watch reloads the store whenever the file changes on disk until ctx ends.
func (s *Store) Watch(ctx context.Context) error {
	w, err := NewWatcher(s.path, DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Watch(ctx, func() {
		before := s.snapshot()
		if err := s.Reload(); err != nil {
			s.logger.Error("theme reload failed", "error", err)
			return
		}
		if !before.Equal(s.snapshot()) {
			s.logger.Info("theme file reloaded", "theme", s.Current())
		}
	})
}

func (s *Store) read() (File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return File{}, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return File{}, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	for _, key := range []string{"theme", "themes"} {
		if _, ok := raw[key]; !ok {
			return File{}, fmt.Errorf("%s: missing %q", s.path, key)
		}
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return file, nil
}

// write replaces the file atomically so watchers never see a partial file.
func (s *Store) write(file File) error {
	data, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode theme file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".theme-*.json")
	if err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Equal reports whether two theme files hold the same selection and paths.
func (f File) Equal(other File) bool {
	return f.Theme == other.Theme && maps.Equal(f.Themes, other.Themes)
}

func (s *Store) snapshot() File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return File{Theme: s.file.Theme, Themes: maps.Clone(s.file.Themes)}
}
