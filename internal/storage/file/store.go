// Package file persists the monitor snapshot as a single JSON file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

// Store reads and writes the snapshot file. Saves overwrite the file
// wholesale; there is no journal and no cross-crash write guarantee.
type Store struct {
	path string
}

// New validates the path and ensures its directory exists.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load reads the stored snapshot. A missing file yields (zero, false, nil);
// an unreadable or corrupt file yields (zero, false, err) so the caller can
// log it and start fresh. Neither case is fatal.
func (s *Store) Load(_ context.Context) (monitor.Snapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return monitor.Snapshot{}, false, nil
		}
		return monitor.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	var snap monitor.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return monitor.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Save overwrites the snapshot file with the full serialized state.
func (s *Store) Save(_ context.Context, snap monitor.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
