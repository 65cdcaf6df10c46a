package store

import (
	"context"
	"fmt"

	"github.com/arkantrust/abassist/models"
)

// ScopedLog opens the underlying log for each call and closes it before
// returning, so no file lock or connection outlives a single request. Other
// processes, such as the CLI, can write to the same file while the server
// runs.
type ScopedLog struct {
	backend string
	path    string
}

// NewScopedLog returns a ScopedLog. Only the backend name is checked here;
// the file is first touched by Append.
func NewScopedLog(backend, path string) (*ScopedLog, error) {
	def, err := DefaultPath(backend)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = def
	}
	return &ScopedLog{backend: backend, path: path}, nil
}

// Path returns the file the log writes to.
func (s *ScopedLog) Path() string { return s.path }

// Append opens the log, appends rec and closes it again.
func (s *ScopedLog) Append(ctx context.Context, rec *models.GenerationRecord) (*models.GenerationRecord, error) {
	var saved *models.GenerationRecord
	err := s.with(func(l Log) error {
		var err error
		saved, err = l.Append(ctx, rec)
		return err
	})
	return saved, err
}

// Get opens the log, reads one record and closes it again.
func (s *ScopedLog) Get(ctx context.Context, id uint64) (*models.GenerationRecord, error) {
	var rec *models.GenerationRecord
	err := s.with(func(l Log) error {
		var err error
		rec, err = l.Get(ctx, id)
		return err
	})
	return rec, err
}

func (s *ScopedLog) with(fn func(Log) error) (err error) {
	l, err := Open(s.backend, s.path)
	if err != nil {
		return fmt.Errorf("open generation log %s: %w", s.path, err)
	}
	defer func() {
		if cerr := l.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(l)
}
