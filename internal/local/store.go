// Package local is the durable on-device fallback store, used whenever the
// remote counter store is unconfigured or failing. It mirrors an in-memory
// map to a JSON state file on every mutation (write-through), so the only
// loss window is a crash between mutation and save.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

const stateFile = "dislinkd-local.json"

// state is the durable local-storage document. Key names match the
// extension's storage area.
type state struct {
	Dislikes    map[string]int `json:"backendDislikes"`
	SupabaseURL string         `json:"supabaseUrl,omitempty"`
	SupabaseKey string         `json:"supabaseKey,omitempty"`
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	path  string
	state state
}

// Open loads the state file from dataDir, starting empty when it is absent.
func Open(dataDir string) (*Store, error) {
	s := &Store{
		path:  filepath.Join(dataDir, stateFile),
		state: state{Dislikes: make(map[string]int)},
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local state: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode local state: %w", err)
	}
	if s.state.Dislikes == nil {
		s.state.Dislikes = make(map[string]int)
	}
	return s, nil
}

// Get returns the stored count for a URN, zero when absent.
func (s *Store) Get(postURN string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Dislikes[postURN]
}

// Add increments the count for a URN and persists before returning.
func (s *Store) Add(postURN string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.state.Dislikes[postURN] + 1
	s.state.Dislikes[postURN] = count
	if err := s.save(); err != nil {
		return 0, err
	}
	return count, nil
}

// Remove decrements the count for a URN; at zero the entry is deleted. The
// result never goes negative.
func (s *Store) Remove(postURN string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.state.Dislikes[postURN] - 1
	if count <= 0 {
		count = 0
		delete(s.state.Dislikes, postURN)
	} else {
		s.state.Dislikes[postURN] = count
	}
	if err := s.save(); err != nil {
		return 0, err
	}
	return count, nil
}

// Snapshot returns a copy of the full counter map.
func (s *Store) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.state.Dislikes))
	for urn, count := range s.state.Dislikes {
		out[urn] = count
	}
	return out
}

// Clear drops every counter and persists the empty map.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Dislikes = make(map[string]int)
	return s.save()
}

// BackendConfig returns the persisted remote-store override, if any.
func (s *Store) BackendConfig() (url, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SupabaseURL, s.state.SupabaseKey
}

// SetBackendConfig persists a remote-store override from the settings surface.
func (s *Store) SetBackendConfig(url, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SupabaseURL = url
	s.state.SupabaseKey = key
	return s.save()
}

// save writes the state file under the held lock. Write-to-temp plus rename
// keeps a partially written file from ever being loaded.
func (s *Store) save() error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("encode local state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write local state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace local state: %w", err)
	}
	return nil
}
