// Package ident persists the simulated logged-in user. There is no serverside
// session; the identity is a User record written to a local JSON file,
// cleared on logout. Other running portal views learn about login and logout
// through a change notification on that file.
package ident

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"newsweb/model"
)

// Store holds the identity file location.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the identity file location under the user config
// directory, falling back to the working directory when it is unavailable.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./newsweb-user.json"
	}
	return filepath.Join(dir, "newsweb", "user.json")
}

// Get returns the stored identity, or nil when no user is logged in. A file
// that fails to parse counts as not logged in.
func (s *Store) Get() *model.User {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil
	}
	return &u
}

// Set writes the identity.
func (s *Store) Set(u model.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// Clear removes the identity. Clearing an absent identity is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// Watch invokes fn with the current identity whenever the identity file
// changes, until ctx is done. The initial state is not reported. Watch is
// non-blocking; the returned error only covers watcher setup. Concurrent
// writers are not reconciled, the last write wins.
func (s *Store) Watch(ctx context.Context, fn func(*model.User)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		// Editors and atomic writers produce event bursts; coalesce them.
		var pending bool
		debounce := time.NewTimer(0)
		if !debounce.Stop() {
			<-debounce.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if !pending {
					pending = true
					debounce.Reset(50 * time.Millisecond)
				}
			case <-debounce.C:
				pending = false
				fn(s.Get())
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}
