// Package relocstate persists the "files are displaced" record that lets the
// pak put movies back after the player exits, a crash, or a power cut.
//
// The record lives on the card and is the only source of truth across
// process restarts. Nothing caches it in memory; callers go through Load,
// Save and Clear every time.
package relocstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/durable"
)

// Store reads and writes the record at a fixed path.
type Store struct {
	path   string
	commit durable.Committer
	logger *zap.Logger
}

// NewStore returns a Store for path.
func NewStore(path string, commit durable.Committer, logger *zap.Logger) *Store {
	if commit == nil {
		commit = durable.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, commit: commit, logger: logger}
}

// Path returns the record location.
func (s *Store) Path() string { return s.path }

// Save writes r as one blob and commits it to the card. A returned error means
// no record was stored; callers treat that the same as "no active relocation".
func (s *Store) Save(r Record) error {
	buf, err := r.marshal()
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := f.Sync(); err != nil {
		s.logger.Debug("state file fsync failed", zap.Error(err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install state file: %w", err)
	}
	s.commit.AfterBatch()

	s.logger.Info("relocation state saved",
		zap.String("source", r.SourceFolder),
		zap.Bool("active", r.Active),
	)
	return nil
}

// Load returns the stored record. ok is false when the file is missing,
// unreadable, short, or fails validation.
func (s *Store) Load() (Record, bool) {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("state file unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return Record{}, false
	}
	r, err := unmarshalRecord(buf)
	if err != nil {
		s.logger.Warn("state file ignored", zap.String("path", s.path), zap.Error(err))
		return Record{}, false
	}
	return r, true
}

// Clear deletes the record. Deleting a missing record is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	s.commit.AfterBatch()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}
	s.logger.Info("relocation state cleared", zap.String("path", s.path))
	return nil
}
