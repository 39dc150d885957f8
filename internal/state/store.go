// Package state persists the small slice of client state that survives
// restarts: the session token and the last table the waiter picked.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type persisted struct {
	Token               string `json:"token,omitempty"`
	SelectedTableNumber int    `json:"selected_table_number,omitempty"`
}

type Store struct {
	path string

	mu   sync.Mutex
	data persisted
}

// Open loads the state file at path, tolerating a missing file. A corrupt
// file is discarded rather than failing startup; the worst case is one
// extra login.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.data = persisted{}
	}
	return s, nil
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Token
}

func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = token
	return s.flush()
}

func (s *Store) ClearToken() error {
	return s.SetToken("")
}

// SelectedTable returns the remembered table number, zero when none is set.
func (s *Store) SelectedTable() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.SelectedTableNumber
}

func (s *Store) SetSelectedTable(number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.SelectedTableNumber = number
	return s.flush()
}

func (s *Store) ClearSelectedTable() error {
	return s.SetSelectedTable(0)
}

// flush writes atomically via rename so a crash mid-write cannot leave a
// truncated file. Caller holds s.mu.
func (s *Store) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
