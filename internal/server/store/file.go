// Package store persists the domain model to a single JSON snapshot file
// and serializes all access to it behind one exclusive gate.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"taskserver/internal/common"
	"taskserver/internal/filex"
	"taskserver/internal/server/model"
)

// fileSnapshot mirrors model.Snapshot plus the legacy top-level task list
// that predates the multi-list format.
type fileSnapshot struct {
	Users map[string]string      `json:"users"`
	Lists map[string]*model.List `json:"lists,omitempty"`
	Tasks []*model.Task          `json:"tasks,omitempty"`
}

// FileStore owns the on-disk snapshot format.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reconstructs the snapshot from disk. A missing or unreadable file
// yields the empty default snapshot. A legacy document with a top-level
// "tasks" list and no "lists" mapping is migrated by wrapping the old tasks
// in a list named "default" with no owner and no members.
func (f *FileStore) Load() (*model.Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return model.NewSnapshot(), nil
	}

	var doc fileSnapshot
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.NewSnapshot(), nil
	}

	snap := &model.Snapshot{Users: doc.Users, Lists: doc.Lists}
	if snap.Users == nil {
		snap.Users = map[string]string{}
	}
	if snap.Lists == nil {
		snap.Lists = map[string]*model.List{
			model.DefaultListCode: model.NewDefaultList(doc.Tasks),
		}
	}
	for _, l := range snap.Lists {
		if l.Members == nil {
			l.Members = []string{}
		}
		if l.Tasks == nil {
			l.Tasks = []*model.Task{}
		}
	}
	return snap, nil
}

// Save writes the full snapshot. The two-space indent keeps the file
// byte-compatible with snapshots produced by earlier deployments; the write
// itself is atomic, so an interrupted save leaves the old snapshot intact.
func (f *FileStore) Save(snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %w", common.ErrPersistence, err)
	}
	if err := filex.WriteAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %w", common.ErrPersistence, f.path, err)
	}
	return nil
}
