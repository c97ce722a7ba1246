package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/pkg/logger"
	"github.com/okian/busyspot/pkg/metrics"
)

const defaultFileMode os.FileMode = 0o644

// FileStore keeps the table as one JSON document, replaced by write-temp-then-rename.
type FileStore struct {
	path   string
	mode   os.FileMode
	logger logger.Logger
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, mode: defaultFileMode, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the published file location.
func (s *FileStore) Path() string { return s.path }

// Save validates snap and atomically replaces the stored table.
func (s *FileStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save cancelled: %w", err)
	}
	if err := snap.Validate(); err != nil {
		metrics.RecordSnapshotWrite("invalid")
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		metrics.RecordSnapshotWrite("error")
		return fmt.Errorf("encode frequency table: %w", err)
	}
	if err := s.writeAtomic(data); err != nil {
		metrics.RecordSnapshotWrite("error")
		return err
	}
	metrics.RecordSnapshotWrite("success")
	s.logger.Info(ctx, "frequency table published",
		logger.String("path", s.path),
		logger.String("version", snap.Version),
		logger.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) writeAtomic(data []byte) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create table dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp table: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp table: %w", err)
	}
	if err = tmp.Chmod(s.mode); err != nil {
		return fmt.Errorf("chmod temp table: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp table: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("publish table: %w", err)
	}
	return nil
}

// Load reads and validates the stored table.
func (s *FileStore) Load(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("load cancelled: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return model.Snapshot{}, fmt.Errorf("read frequency table: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := snap.Validate(); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return snap, nil
}
