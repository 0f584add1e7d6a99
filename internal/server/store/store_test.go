package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"taskserver/internal/common"
	"taskserver/internal/server/model"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "storage.json")
}

func TestLoad_MissingFileYieldsDefaultSnapshot(t *testing.T) {
	f := NewFileStore(storePath(t))

	snap, err := f.Load()
	require.NoError(t, err)
	require.Empty(t, snap.Users)
	require.Len(t, snap.Lists, 1)

	l := snap.Lists[model.DefaultListCode]
	require.NotNil(t, l)
	require.Equal(t, "default", l.Name)
	require.Nil(t, l.Owner)
	require.Empty(t, l.Members)
	require.Empty(t, l.Tasks)
}

func TestLoad_CorruptFileYieldsDefaultSnapshot(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	snap, err := NewFileStore(path).Load()
	require.NoError(t, err)
	require.Empty(t, snap.Users)
	require.NotNil(t, snap.Lists[model.DefaultListCode])
}

func TestLoad_MigratesLegacyFormat(t *testing.T) {
	path := storePath(t)
	legacy := `{
  "users": {"alice": "digest1"},
  "tasks": [
    {"id": "ab12cd34", "text": "buy milk", "done": true, "user": "alice"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	snap, err := NewFileStore(path).Load()
	require.NoError(t, err)
	require.Equal(t, "digest1", snap.Users["alice"])
	require.Len(t, snap.Lists, 1)

	l := snap.Lists[model.DefaultListCode]
	require.Equal(t, "default", l.Name)
	require.Nil(t, l.Owner)
	require.Empty(t, l.Members)
	require.Len(t, l.Tasks, 1)
	require.Equal(t, &model.Task{ID: "ab12cd34", Text: "buy milk", Done: true, User: "alice"}, l.Tasks[0])
}

func TestSaveLoad_RoundTripFixedPoint(t *testing.T) {
	path := storePath(t)
	f := NewFileStore(path)

	snap := model.NewSnapshot()
	require.NoError(t, snap.CreateAccount("alice", "digest1"))
	require.NoError(t, snap.CreateList("ABC123", "Groceries", "alice"))
	_, err := snap.AddTask("ABC123", "buy milk", "alice")
	require.NoError(t, err)

	require.NoError(t, f.Save(snap))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := f.Load()
	require.NoError(t, err)
	require.NoError(t, f.Save(loaded))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	require.JSONEq(t, string(first), string(second))
}

func TestSave_FormatShape(t *testing.T) {
	path := storePath(t)
	f := NewFileStore(path)

	snap := model.NewSnapshot()
	require.NoError(t, snap.CreateAccount("alice", "digest1"))
	require.NoError(t, f.Save(snap))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "users")
	require.Contains(t, doc, "lists")

	var lists map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["lists"], &lists))
	def := lists["default"]
	require.Equal(t, "null", string(def["owner"]))
	require.Equal(t, "[]", string(def["members"]))
	require.Equal(t, "[]", string(def["tasks"]))
}

func TestUpdate_CommitsOnSuccess(t *testing.T) {
	s, err := Open(storePath(t))
	require.NoError(t, err)

	err = s.Update(func(snap *model.Snapshot) error {
		return snap.CreateAccount("alice", "digest1")
	})
	require.NoError(t, err)

	s.View(func(snap *model.Snapshot) {
		require.True(t, snap.HasAccount("alice"))
	})
}

func TestUpdate_RollsBackOnDomainError(t *testing.T) {
	s, err := Open(storePath(t))
	require.NoError(t, err)

	require.NoError(t, s.Update(func(snap *model.Snapshot) error {
		return snap.CreateAccount("alice", "digest1")
	}))

	err = s.Update(func(snap *model.Snapshot) error {
		snap.DeleteAccount("alice")
		return errors.New("boom")
	})
	require.Error(t, err)

	s.View(func(snap *model.Snapshot) {
		require.True(t, snap.HasAccount("alice"))
	})
}

func TestUpdate_RollsBackOnSaveFailure(t *testing.T) {
	path := storePath(t)
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Update(func(snap *model.Snapshot) error {
		return snap.CreateAccount("alice", "digest1")
	}))

	// removing the directory makes the atomic write fail
	require.NoError(t, os.RemoveAll(filepath.Dir(path)))

	err = s.Update(func(snap *model.Snapshot) error {
		return snap.CreateAccount("bob", "digest2")
	})
	require.ErrorIs(t, err, common.ErrPersistence)

	s.View(func(snap *model.Snapshot) {
		require.False(t, snap.HasAccount("bob"))
		require.True(t, snap.HasAccount("alice"))
	})
}

func TestUpdate_ConcurrentSignupsOnlyOneWins(t *testing.T) {
	s, err := Open(storePath(t))
	require.NoError(t, err)

	const workers = 16
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Update(func(snap *model.Snapshot) error {
				return snap.CreateAccount("alice", "digest")
			})
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrDuplicateUser):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, workers-1, dup)
}
