// Package gcs persists the monitor snapshot as a Google Cloud Storage object.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

// Config captures the parameters required to address the snapshot object.
type Config struct {
	Bucket string
	Object string
}

// Store overwrites one bucket object with the serialized state on every
// save. Authentication uses Application Default Credentials.
type Store struct {
	client *storage.Client
	cfg    Config
}

// New creates a GCS-backed snapshot store from an existing client.
func New(client *storage.Client, cfg Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if cfg.Object == "" {
		cfg.Object = "monitor-state.json"
	}
	return &Store{client: client, cfg: cfg}, nil
}

// Load reads the snapshot object. A missing object yields (zero, false,
// nil); a corrupt payload yields (zero, false, err) so the caller can log it
// and start fresh.
func (s *Store) Load(ctx context.Context) (monitor.Snapshot, bool, error) {
	reader, err := s.client.Bucket(s.cfg.Bucket).Object(s.cfg.Object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return monitor.Snapshot{}, false, nil
		}
		return monitor.Snapshot{}, false, fmt.Errorf("open snapshot object: %w", err)
	}
	data, err := io.ReadAll(reader)
	closeErr := reader.Close()
	if err != nil {
		return monitor.Snapshot{}, false, fmt.Errorf("read snapshot object: %w", err)
	}
	if closeErr != nil {
		return monitor.Snapshot{}, false, fmt.Errorf("close snapshot reader: %w", closeErr)
	}
	var snap monitor.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return monitor.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Save overwrites the snapshot object with the full serialized state.
func (s *Store) Save(ctx context.Context, snap monitor.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	writer := s.client.Bucket(s.cfg.Bucket).Object(s.cfg.Object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return fmt.Errorf("write snapshot object: %w (close writer: %v)", err, closeErr)
		}
		return fmt.Errorf("write snapshot object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close snapshot writer: %w", err)
	}
	return nil
}
