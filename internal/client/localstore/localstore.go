// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package localstore persists the CLI's client-side state in one YAML file.

The file holds the backend session token, transient hints that survive the
provider redirect, pending authorizations and the provider session. It is
written with mode 0600 through a temp file and rename.
*/
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/copla/copla/internal/client/bluesky"
	"github.com/copla/copla/internal/client/linking"
)

// FileName is the default state file name under the config directory.
const FileName = "state.yaml"

type document struct {
	APIToken string                     `yaml:"api_token,omitempty"`
	Hints    map[string]string          `yaml:"hints,omitempty"`
	Pending  map[string]bluesky.Pending `yaml:"pending,omitempty"`
	Session  *bluesky.SessionData       `yaml:"session,omitempty"`
}

// Store is a file-backed key-value store. It is safe for concurrent use
// within one process.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Open returns a store at path. The file is created on first write.
func Open(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath is $XDG_CONFIG_HOME/copla/state.yaml or its OS equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("localstore_default_path_failed: %w", err)
	}
	return filepath.Join(dir, "copla", FileName), nil
}

// Path is where the store reads and writes.
func (s *Store) Path() string { return s.path }

func (s *Store) read() (*document, error) {
	doc := &document{}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore_read_failed: %w", err)
	}
	if err := yaml.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("localstore_decode_failed: %w", err)
	}
	return doc, nil
}

func (s *Store) write(doc *document) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("localstore_encode_failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("localstore_write_failed: %w", err)
	}

	temp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*")
	if err != nil {
		return fmt.Errorf("localstore_write_failed: %w", err)
	}
	defer os.Remove(temp.Name())

	if _, err := temp.Write(raw); err != nil {
		temp.Close()
		return fmt.Errorf("localstore_write_failed: %w", err)
	}
	if err := temp.Chmod(0o600); err != nil {
		temp.Close()
		return fmt.Errorf("localstore_write_failed: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("localstore_write_failed: %w", err)
	}
	if err := os.Rename(temp.Name(), s.path); err != nil {
		return fmt.Errorf("localstore_write_failed: %w", err)
	}
	return nil
}

// update runs mutate on the current document and writes it back.
func (s *Store) update(mutate func(*document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	mutate(doc)
	return s.write(doc)
}

func (s *Store) view(read func(*document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	read(doc)
	return nil
}

// # Backend Session

// APIToken returns the saved backend session token.
func (s *Store) APIToken() (string, error) {
	var token string
	err := s.view(func(doc *document) { token = doc.APIToken })
	return token, err
}

// SetAPIToken saves the backend session token. Empty clears it.
func (s *Store) SetAPIToken(token string) error {
	return s.update(func(doc *document) { doc.APIToken = token })
}

// # Hints

// SetHint stores a transient value.
func (s *Store) SetHint(_ context.Context, key, value string) error {
	return s.update(func(doc *document) {
		if doc.Hints == nil {
			doc.Hints = make(map[string]string)
		}
		doc.Hints[key] = value
	})
}

// Hint returns a transient value and whether it was set.
func (s *Store) Hint(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.view(func(doc *document) { value, found = doc.Hints[key] })
	return value, found, err
}

// ClearHint removes a transient value.
func (s *Store) ClearHint(_ context.Context, key string) error {
	return s.update(func(doc *document) { delete(doc.Hints, key) })
}

// # Provider State

// PutPending records an authorization in flight and drops expired ones.
func (s *Store) PutPending(_ context.Context, state string, pending bluesky.Pending) error {
	return s.update(func(doc *document) {
		if doc.Pending == nil {
			doc.Pending = make(map[string]bluesky.Pending)
		}
		for key, entry := range doc.Pending {
			if s.now().Sub(entry.CreatedAt) > bluesky.PendingTTL {
				delete(doc.Pending, key)
			}
		}
		doc.Pending[state] = pending
	})
}

// TakePending removes and returns the authorization for state.
func (s *Store) TakePending(_ context.Context, state string) (*bluesky.Pending, error) {
	var taken *bluesky.Pending
	err := s.update(func(doc *document) {
		if entry, ok := doc.Pending[state]; ok {
			taken = &entry
			delete(doc.Pending, state)
		}
	})
	return taken, err
}

// LoadSession returns the provider session, or nil.
func (s *Store) LoadSession(context.Context) (*bluesky.SessionData, error) {
	var session *bluesky.SessionData
	err := s.view(func(doc *document) { session = doc.Session })
	return session, err
}

// SaveSession replaces the provider session.
func (s *Store) SaveSession(_ context.Context, data *bluesky.SessionData) error {
	return s.update(func(doc *document) {
		copied := *data
		doc.Session = &copied
	})
}

// DeleteSession forgets the provider session.
func (s *Store) DeleteSession(context.Context) error {
	return s.update(func(doc *document) { doc.Session = nil })
}

var (
	_ bluesky.StateStore   = (*Store)(nil)
	_ bluesky.SessionStore = (*Store)(nil)
	_ linking.HintStore    = (*Store)(nil)
)
