package store

import (
	"sync"

	"taskserver/internal/server/model"
)

// Store is the process-wide gate around the shared snapshot. Every session
// funnels its reads and read-modify-write sequences through the single
// mutex, so concurrent commands never interleave inside a critical section
// and the file on disk always holds a fully committed snapshot.
type Store struct {
	mu   sync.Mutex
	file *FileStore
	snap *model.Snapshot
}

// Open loads the snapshot from path (or starts from the default one) and
// returns the gate around it.
func Open(path string) (*Store, error) {
	file := NewFileStore(path)
	snap, err := file.Load()
	if err != nil {
		return nil, err
	}
	return &Store{file: file, snap: snap}, nil
}

// View runs fn with the committed snapshot under the gate. fn must not
// mutate the snapshot and must not retain it after returning.
func (s *Store) View(fn func(snap *model.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.snap)
}

// Update runs a mutation as one atomic check-then-write section. fn mutates
// a clone of the committed snapshot; if fn and the save both succeed, the
// clone becomes the committed state. A domain error from fn or a failed
// save leaves the committed snapshot untouched, so the caller never sees a
// mutation that is not on disk.
func (s *Store) Update(fn func(snap *model.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.file.Save(next); err != nil {
		return err
	}
	s.snap = next
	return nil
}
