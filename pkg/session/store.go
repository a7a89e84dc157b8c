package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSession indicates no session is persisted.
var ErrNoSession = errors.New("no session")

// Store persists session state between runs.
type Store interface {
	// Load returns the persisted state, or ErrNoSession.
	Load() (State, error)

	// Save replaces the persisted state.
	Save(state State) error

	// Delete removes the persisted state. Deleting an absent session
	// is not an error.
	Delete() error
}

// FileStore persists the session as a JSON file with owner-only
// permissions.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed session store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.
func (s *FileStore) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, ErrNoSession
		}
		return State{}, fmt.Errorf("read session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode session: %w", err)
	}
	return state, nil
}

// Save implements Store.
func (s *FileStore) Save(state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	state *State
}

// Load implements Store.
func (s *MemStore) Load() (State, error) {
	if s.state == nil {
		return State{}, ErrNoSession
	}
	return *s.state, nil
}

// Save implements Store.
func (s *MemStore) Save(state State) error {
	copied := state
	s.state = &copied
	return nil
}

// Delete implements Store.
func (s *MemStore) Delete() error {
	s.state = nil
	return nil
}
