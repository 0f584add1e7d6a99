// Package session implements the per-connection protocol engine: command
// parsing, the authentication/list-selection state machine, and reply
// framing. One Session serves exactly one connection.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskserver/internal/common"
	"taskserver/internal/logging"
	"taskserver/internal/server/auth"
	"taskserver/internal/server/model"
	"taskserver/internal/server/store"
)

// Welcome is the banner sent unprompted at connect time and in reply to
// HELP.
const Welcome = `Welcome to the Task Server!
 HELP for commands:
 SIGNUP <user> <pwd>           create account
 LOGIN  <user> <pwd>           login
 NEWLIST <name> <code>         create new shared list
 JOINLIST <code>               join an existing list
 USELIST <code>                switch to that list
 MYLISTS                       show your lists
 ADD "task text"               add task to current list
 DONE <id> / DELETE <id>       mark done / remove
 LIST                          show tasks of current list
 LOGOUT                        logout
 DELETEACC <pwd>               delete account`

const (
	msgLoginFirst     = "LOGIN first."
	msgUnknownCommand = "Unknown command. Type HELP to see available commands."
	msgNoListSelected = "No list selected. Use USELIST <code> to select a list."
	msgSaveFailed     = "Could not save your changes, please try again."
	msgConfirmPrompt  = "Are you sure you want to delete your account? (Y/N)"
	msgConfirmRetry   = "Please confirm deletion with Y or N."
)

// deleteConfirmation is the sub-state entered after a verified DELETEACC.
// While it is set, every input line is interpreted as a confirmation
// answer. The password was verified on entry and is not checked again.
type deleteConfirmation struct {
	user     string
	password string
}

// Session is the per-connection state machine. It is not safe for
// concurrent use; every connection gets its own instance and all shared
// state lives behind the store's gate.
type Session struct {
	store *store.Store
	auth  *auth.Service
	log   logging.Logger

	user          string
	selectedList  string
	pendingDelete *deleteConfirmation
}

func New(st *store.Store, au *auth.Service, log logging.Logger) *Session {
	return &Session{store: st, auth: au, log: log}
}

// Serve runs the wire loop: welcome block, then one reply block per input
// line until the client disconnects or an I/O error occurs. Errors are
// logged and terminate only this session.
func (s *Session) Serve(ctx context.Context, conn io.ReadWriteCloser) {
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if err := writeBlock(w, Welcome); err != nil {
		s.log.Warn(ctx, "welcome write failed", "error", err)
		return
	}

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Text()
		// only the keyword is logged; the argument blob can carry passwords
		keyword, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		s.log.Debug(ctx, "command received", "keyword", strings.ToUpper(keyword))

		reply := s.Handle(line)
		if err := writeBlock(w, reply); err != nil {
			s.log.Warn(ctx, "reply write failed", "error", err)
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.log.Warn(ctx, "read failed", "error", err)
	}
}

// writeBlock frames one reply: the body lines followed by a blank line.
// The blank line is the end-of-block marker clients depend on; the
// protocol has no length prefix.
func writeBlock(w *bufio.Writer, body string) error {
	if _, err := w.WriteString(body + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}

// Handle interprets one input line in the session's current state and
// returns the reply body. It never closes the connection; invalid input
// always gets a guidance message.
func (s *Session) Handle(line string) string {
	if s.pendingDelete != nil {
		return s.handleConfirmation(line)
	}

	cmd, err := Parse(line)
	var usage *UsageError
	if errors.As(err, &usage) {
		return usage.Error()
	}

	if s.user == "" {
		switch cmd.Kind {
		case KindHelp:
			return Welcome
		case KindSignup:
			return s.handleSignup(cmd)
		case KindLogin:
			return s.handleLogin(cmd)
		default:
			return msgLoginFirst
		}
	}

	switch cmd.Kind {
	case KindHelp:
		return Welcome
	case KindSignup:
		return s.handleSignup(cmd)
	case KindLogin:
		return s.handleLogin(cmd)
	case KindLogout:
		return s.handleLogout()
	case KindDeleteAcc:
		return s.handleDeleteAcc(cmd)
	case KindNewList:
		return s.handleNewList(cmd)
	case KindJoinList:
		return s.handleJoinList(cmd)
	case KindUseList:
		return s.handleUseList(cmd)
	case KindMyLists:
		return s.handleMyLists()
	case KindAdd:
		return s.handleAdd(cmd)
	case KindDone:
		return s.handleDone(cmd)
	case KindDelete:
		return s.handleDelete(cmd)
	case KindList:
		return s.handleList()
	default:
		return msgUnknownCommand
	}
}

// handleConfirmation consumes input while the delete-confirmation
// sub-state is active. Only Y or N (case-insensitive) advance the state;
// anything else re-prompts without consuming it.
func (s *Session) handleConfirmation(line string) string {
	keyword, _, _ := strings.Cut(strings.TrimSpace(line), " ")

	switch strings.ToUpper(keyword) {
	case "Y":
		user := s.pendingDelete.user
		err := s.store.Update(func(snap *model.Snapshot) error {
			snap.DeleteAccount(user)
			return nil
		})
		s.pendingDelete = nil
		if err != nil {
			return msgSaveFailed
		}
		s.user = ""
		s.selectedList = ""
		return "Account deleted successfully. Bye!"

	case "N":
		s.pendingDelete = nil
		return "Account deletion cancelled."

	default:
		return msgConfirmRetry
	}
}

func (s *Session) handleSignup(cmd Command) string {
	err := s.store.Update(func(snap *model.Snapshot) error {
		return s.auth.SignUp(snap, cmd.Username, cmd.Password)
	})
	switch {
	case errors.Is(err, common.ErrDuplicateUser):
		return "Username already exists."
	case err != nil:
		return msgSaveFailed
	}
	return "User created successfully."
}

func (s *Session) handleLogin(cmd Command) string {
	var err error
	s.store.View(func(snap *model.Snapshot) {
		err = s.auth.Login(snap, cmd.Username, cmd.Password)
	})
	if err != nil {
		return "Invalid username or password."
	}
	s.user = cmd.Username
	return fmt.Sprintf("Welcome %s!", cmd.Username)
}

func (s *Session) handleLogout() string {
	s.user = ""
	s.selectedList = ""
	return "Logged out successfully."
}

func (s *Session) handleDeleteAcc(cmd Command) string {
	var ok bool
	s.store.View(func(snap *model.Snapshot) {
		ok = s.auth.VerifyPassword(snap, s.user, cmd.Password)
	})
	if !ok {
		return "Invalid password, account not deleted."
	}
	s.pendingDelete = &deleteConfirmation{user: s.user, password: cmd.Password}
	return msgConfirmPrompt
}

func (s *Session) handleNewList(cmd Command) string {
	err := s.store.Update(func(snap *model.Snapshot) error {
		return snap.CreateList(cmd.Code, cmd.Name, s.user)
	})
	switch {
	case errors.Is(err, common.ErrListExists):
		return fmt.Sprintf("List with code %s already exists.", cmd.Code)
	case err != nil:
		return msgSaveFailed
	}
	return fmt.Sprintf("List '%s' created with code %s.", cmd.Name, cmd.Code)
}

func (s *Session) handleJoinList(cmd Command) string {
	err := s.store.Update(func(snap *model.Snapshot) error {
		return snap.JoinList(cmd.Code, s.user)
	})
	switch {
	case errors.Is(err, common.ErrListNotFound):
		return fmt.Sprintf("List with code %s not found.", cmd.Code)
	case errors.Is(err, common.ErrAlreadyMember):
		return "You are already a member."
	case err != nil:
		return msgSaveFailed
	}
	return fmt.Sprintf("Joined list %s. Use USELIST %s to switch.", cmd.Code, cmd.Code)
}

func (s *Session) handleUseList(cmd Command) string {
	var (
		exists bool
		member bool
		name   string
	)
	s.store.View(func(snap *model.Snapshot) {
		exists = snap.HasList(cmd.Code)
		member = snap.IsMember(cmd.Code, s.user)
		name = snap.ListName(cmd.Code)
	})
	if !exists {
		return fmt.Sprintf("List with code %s not found.", cmd.Code)
	}
	if !member {
		return fmt.Sprintf("You are not a member of list %s.", cmd.Code)
	}
	s.selectedList = cmd.Code
	return fmt.Sprintf("Now using list '%s' (%s).", name, cmd.Code)
}

func (s *Session) handleMyLists() string {
	var lists []model.Membership
	s.store.View(func(snap *model.Snapshot) {
		lists = snap.MemberLists(s.user)
	})
	if len(lists) == 0 {
		return "No lists found."
	}
	lines := make([]string, 0, len(lists))
	for _, l := range lists {
		mark := " "
		if l.Code == s.selectedList {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s (%s) %s", mark, l.Code, l.Name))
	}
	return "Your lists:\n" + strings.Join(lines, "\n")
}

func (s *Session) handleAdd(cmd Command) string {
	if s.selectedList == "" {
		return msgNoListSelected
	}
	var task *model.Task
	err := s.store.Update(func(snap *model.Snapshot) error {
		var err error
		task, err = snap.AddTask(s.selectedList, cmd.Text, s.user)
		return err
	})
	switch {
	case errors.Is(err, common.ErrEmptyText):
		return `Usage: ADD "task text"`
	case err != nil:
		return msgSaveFailed
	}
	return fmt.Sprintf("Task added with ID %s.", task.ID)
}

func (s *Session) handleDone(cmd Command) string {
	if s.selectedList == "" {
		return msgNoListSelected
	}
	err := s.store.Update(func(snap *model.Snapshot) error {
		return snap.MarkDone(s.selectedList, cmd.TaskID)
	})
	switch {
	case errors.Is(err, common.ErrTaskAlreadyDone):
		// no transition happened, nothing was written
		return fmt.Sprintf("Task %s is already done.", cmd.TaskID)
	case errors.Is(err, common.ErrTaskNotFound):
		return fmt.Sprintf("Task %s not found.", cmd.TaskID)
	case err != nil:
		return msgSaveFailed
	}
	return fmt.Sprintf("Task %s marked as done.", cmd.TaskID)
}

func (s *Session) handleDelete(cmd Command) string {
	if s.selectedList == "" {
		return msgNoListSelected
	}
	err := s.store.Update(func(snap *model.Snapshot) error {
		snap.DeleteTask(s.selectedList, cmd.TaskID)
		return nil
	})
	if err != nil {
		return msgSaveFailed
	}
	return fmt.Sprintf("Task %s deleted.", cmd.TaskID)
}

func (s *Session) handleList() string {
	if s.selectedList == "" {
		return msgNoListSelected
	}
	var lines []string
	s.store.View(func(snap *model.Snapshot) {
		for _, t := range snap.Tasks(s.selectedList) {
			mark := " "
			if t.Done {
				mark = "x"
			}
			lines = append(lines, fmt.Sprintf("%s - [%s] %s (User: %s)", t.ID, mark, t.Text, t.User))
		}
	})
	if len(lines) == 0 {
		return "Tasks:\nNo tasks found."
	}
	return "Tasks:\n" + strings.Join(lines, "\n")
}
