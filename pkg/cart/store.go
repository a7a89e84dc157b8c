package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoCart indicates no cart is persisted.
var ErrNoCart = errors.New("no cart")

// Store persists cart state between runs.
type Store interface {
	// Load returns the persisted state, or ErrNoCart.
	Load() (State, error)

	// Save replaces the persisted state.
	Save(state State) error
}

// FileStore persists the cart as a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed cart store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.
func (s *FileStore) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, ErrNoCart
		}
		return State{}, fmt.Errorf("read cart: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode cart: %w", err)
	}
	return state, nil
}

// Save implements Store.
func (s *FileStore) Save(state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	state *State
	saves int
}

// Load implements Store.
func (s *MemStore) Load() (State, error) {
	if s.state == nil {
		return State{}, ErrNoCart
	}
	return *s.state, nil
}

// Save implements Store.
func (s *MemStore) Save(state State) error {
	copied := state
	s.state = &copied
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemStore) Saves() int {
	return s.saves
}
