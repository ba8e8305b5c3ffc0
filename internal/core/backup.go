package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"inventorycore/internal/blob"
)

// ExportJSON serializes the full store state as an indented JSON snapshot.
// Derived fields (material totals, stock aggregates, payment statuses) are
// exported verbatim; they are stored state, not transient computation.
func (s *Service) ExportJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.store.ExportState(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(snap, "", "  ")
}

// ImportJSON replaces the store state wholesale with the parsed snapshot.
// A parse failure is returned as an error and leaves the current state
// untouched; there is no partial application.
func (s *Service) ImportJSON(ctx context.Context, data []byte) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "import_state")
	err := s.importJSON(ctx, data)
	span.End(err)
	s.metrics.Observe(ctx, "import_state", err == nil, time.Since(start))
	return err
}

func (s *Service) importJSON(ctx context.Context, data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	return s.store.ImportState(ctx, snap)
}

// BackupKey returns the dated object key a backup is written under.
func BackupKey(t time.Time) string {
	return fmt.Sprintf("inventory-backup-%s.json", t.Format("2006-01-02"))
}

// Backup exports the current state and writes it to the blob store under
// the current date's key. Same-day backups overwrite: Put is create-only,
// so any existing object is deleted first.
func (s *Service) Backup(ctx context.Context, store blob.Store) (blob.Info, error) {
	data, err := s.ExportJSON(ctx)
	if err != nil {
		return blob.Info{}, err
	}
	key := BackupKey(time.Now().UTC())
	if _, err := store.Delete(ctx, key); err != nil {
		return blob.Info{}, fmt.Errorf("replace backup %s: %w", key, err)
	}
	info, err := store.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"})
	if err != nil {
		return blob.Info{}, fmt.Errorf("write backup %s: %w", key, err)
	}
	return info, nil
}

// Restore reads a stored backup and imports it, replacing the current state.
func (s *Service) Restore(ctx context.Context, store blob.Store, key string) error {
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", key, err)
	}
	return s.ImportJSON(ctx, data)
}
