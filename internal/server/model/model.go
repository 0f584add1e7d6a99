// Package model holds the in-memory representation of accounts, lists and
// tasks, plus the invariant-preserving operations on them. Operations never
// touch the disk or the network; callers run them inside the store's
// critical section.
package model

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"taskserver/internal/common"
)

// DefaultListCode is the code of the list synthesized for empty and legacy
// snapshots.
const DefaultListCode = "default"

// Task is a single entry in a list. The json tags are part of the on-disk
// snapshot format and must not change.
type Task struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
	User string `json:"user"`
}

// List is a named, shared collection of tasks identified by a code chosen
// at creation. Owner is nil for the synthesized default list.
type List struct {
	Name    string   `json:"name"`
	Owner   *string  `json:"owner"`
	Members []string `json:"members"`
	Tasks   []*Task  `json:"tasks"`
}

// Snapshot is the complete state of the store: all accounts and all lists.
// Users maps username to password digest.
type Snapshot struct {
	Users map[string]string `json:"users"`
	Lists map[string]*List  `json:"lists"`
}

// NewSnapshot returns an empty snapshot containing only the default list.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users: map[string]string{},
		Lists: map[string]*List{
			DefaultListCode: NewDefaultList(nil),
		},
	}
}

// NewDefaultList builds the ownerless "default" list around the given tasks.
func NewDefaultList(tasks []*Task) *List {
	if tasks == nil {
		tasks = []*Task{}
	}
	return &List{
		Name:    DefaultListCode,
		Owner:   nil,
		Members: []string{},
		Tasks:   tasks,
	}
}

// Clone returns a deep copy of the snapshot. The store mutates the copy and
// swaps it in only after a successful save, so a failed write never leaves
// a half-committed state behind.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Users: make(map[string]string, len(s.Users)),
		Lists: make(map[string]*List, len(s.Lists)),
	}
	for u, d := range s.Users {
		c.Users[u] = d
	}
	for code, l := range s.Lists {
		nl := &List{
			Name:    l.Name,
			Members: append([]string{}, l.Members...),
			Tasks:   make([]*Task, len(l.Tasks)),
		}
		if l.Owner != nil {
			owner := *l.Owner
			nl.Owner = &owner
		}
		for i, t := range l.Tasks {
			tc := *t
			nl.Tasks[i] = &tc
		}
		c.Lists[code] = nl
	}
	return c
}

// CreateAccount registers a new username with its password digest.
func (s *Snapshot) CreateAccount(username, digest string) error {
	if _, ok := s.Users[username]; ok {
		return common.ErrDuplicateUser
	}
	s.Users[username] = digest
	return nil
}

// DeleteAccount removes the account and every task the user authored, in
// every list. Membership entries are intentionally left in place: they are
// never consulted for a user that cannot log in, and the name may be
// registered again later.
func (s *Snapshot) DeleteAccount(username string) {
	delete(s.Users, username)
	for _, l := range s.Lists {
		kept := l.Tasks[:0]
		for _, t := range l.Tasks {
			if t.User != username {
				kept = append(kept, t)
			}
		}
		l.Tasks = kept
	}
}

// HasAccount reports whether the username is registered.
func (s *Snapshot) HasAccount(username string) bool {
	_, ok := s.Users[username]
	return ok
}

// CreateList registers a new list under code with the owner as its first
// member.
func (s *Snapshot) CreateList(code, name, owner string) error {
	if _, ok := s.Lists[code]; ok {
		return common.ErrListExists
	}
	o := owner
	s.Lists[code] = &List{
		Name:    name,
		Owner:   &o,
		Members: []string{owner},
		Tasks:   []*Task{},
	}
	return nil
}

// JoinList adds username to the members of the list identified by code.
func (s *Snapshot) JoinList(code, username string) error {
	l, ok := s.Lists[code]
	if !ok {
		return common.ErrListNotFound
	}
	if s.IsMember(code, username) {
		return common.ErrAlreadyMember
	}
	l.Members = append(l.Members, username)
	return nil
}

// HasList reports whether a list with the given code exists.
func (s *Snapshot) HasList(code string) bool {
	_, ok := s.Lists[code]
	return ok
}

// IsMember reports whether username is the owner of the list or appears in
// its member set. False when the list does not exist.
func (s *Snapshot) IsMember(code, username string) bool {
	l, ok := s.Lists[code]
	if !ok {
		return false
	}
	if l.Owner != nil && *l.Owner == username {
		return true
	}
	for _, m := range l.Members {
		if m == username {
			return true
		}
	}
	return false
}

// AddTask appends a new undone task authored by author to the list. The
// text must be non-blank after space trimming; surrounding quotes are the
// parser's concern and arrive already stripped.
func (s *Snapshot) AddTask(code, text, author string) (*Task, error) {
	l, ok := s.Lists[code]
	if !ok {
		return nil, common.ErrListNotFound
	}
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyText
	}
	t := &Task{
		ID:   l.newTaskID(),
		Text: text,
		Done: false,
		User: author,
	}
	l.Tasks = append(l.Tasks, t)
	return t, nil
}

// newTaskID returns a short id unique among the list's live tasks. Ids are
// the first 8 hex characters of a v4 UUID; a collision just draws again.
func (l *List) newTaskID() string {
	for {
		id := uuid.NewString()[:8]
		if l.findTask(id) == nil {
			return id
		}
	}
}

func (l *List) findTask(id string) *Task {
	for _, t := range l.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// MarkDone sets the done flag on the identified task. A task that is
// already done is left untouched and reported via ErrTaskAlreadyDone so the
// caller can word its reply; done never transitions back to false.
func (s *Snapshot) MarkDone(code, id string) error {
	l, ok := s.Lists[code]
	if !ok {
		return common.ErrListNotFound
	}
	t := l.findTask(id)
	if t == nil {
		return common.ErrTaskNotFound
	}
	if t.Done {
		return common.ErrTaskAlreadyDone
	}
	t.Done = true
	return nil
}

// DeleteTask removes the identified task. Deleting an id that does not
// exist is a silent no-op.
func (s *Snapshot) DeleteTask(code, id string) {
	l, ok := s.Lists[code]
	if !ok {
		return
	}
	kept := l.Tasks[:0]
	for _, t := range l.Tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	l.Tasks = kept
}

// Tasks returns the tasks of the list in insertion order, or nil when the
// list does not exist.
func (s *Snapshot) Tasks(code string) []*Task {
	l, ok := s.Lists[code]
	if !ok {
		return nil
	}
	return l.Tasks
}

// ListName returns the display name of the list, or "" when it is unknown.
func (s *Snapshot) ListName(code string) string {
	l, ok := s.Lists[code]
	if !ok {
		return ""
	}
	return l.Name
}

// Membership pairs a list code with its display name for MYLISTS output.
type Membership struct {
	Code string
	Name string
}

// MemberLists returns every list the user belongs to, sorted by code so the
// output is deterministic.
func (s *Snapshot) MemberLists(username string) []Membership {
	var out []Membership
	for code, l := range s.Lists {
		if s.IsMember(code, username) {
			out = append(out, Membership{Code: code, Name: l.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
