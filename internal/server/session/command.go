package session

import "strings"

// Kind enumerates the closed set of protocol commands. The parser maps
// every input line onto one of these; anything it cannot place becomes
// KindUnknown so the state machine decides how to answer.
type Kind int

const (
	KindUnknown Kind = iota
	KindHelp
	KindSignup
	KindLogin
	KindLogout
	KindDeleteAcc
	KindNewList
	KindJoinList
	KindUseList
	KindMyLists
	KindAdd
	KindDone
	KindDelete
	KindList
	KindYes
	KindNo
)

// Command is one parsed input line. Only the fields relevant to the Kind
// are populated.
type Command struct {
	Kind     Kind
	Username string
	Password string
	Name     string
	Code     string
	Text     string
	TaskID   string
}

// UsageError reports a recognized command with malformed arguments. Its
// message is the exact usage line sent back to the client; the connection
// stays open.
type UsageError struct {
	usage string
}

func (e *UsageError) Error() string {
	return e.usage
}

func usageErr(usage string) (Command, error) {
	return Command{}, &UsageError{usage: usage}
}

// Parse splits a raw input line into a Command. The keyword is
// case-insensitive; everything after the first space is a single opaque
// argument blob whose interpretation depends on the keyword. Malformed
// arguments yield a *UsageError.
func Parse(line string) (Command, error) {
	keyword, arg, _ := strings.Cut(strings.TrimSpace(line), " ")

	switch strings.ToUpper(keyword) {
	case "HELP":
		return Command{Kind: KindHelp}, nil

	case "SIGNUP":
		parts := strings.Fields(arg)
		if len(parts) != 2 {
			return usageErr("Usage: SIGNUP <username> <password>")
		}
		return Command{Kind: KindSignup, Username: parts[0], Password: parts[1]}, nil

	case "LOGIN":
		parts := strings.Fields(arg)
		if len(parts) != 2 {
			return usageErr("Usage: LOGIN <username> <password>")
		}
		return Command{Kind: KindLogin, Username: parts[0], Password: parts[1]}, nil

	case "LOGOUT":
		return Command{Kind: KindLogout}, nil

	case "DELETEACC":
		parts := strings.Fields(arg)
		if len(parts) != 1 {
			return usageErr("Usage: DELETEACC <password>")
		}
		return Command{Kind: KindDeleteAcc, Password: parts[0]}, nil

	case "NEWLIST":
		parts := strings.Fields(arg)
		if len(parts) != 2 {
			return usageErr("Usage: NEWLIST <name> <code>")
		}
		return Command{Kind: KindNewList, Name: parts[0], Code: parts[1]}, nil

	case "JOINLIST":
		code := strings.TrimSpace(arg)
		if code == "" {
			return usageErr("Usage: JOINLIST <code>")
		}
		return Command{Kind: KindJoinList, Code: code}, nil

	case "USELIST":
		code := strings.TrimSpace(arg)
		if code == "" {
			return usageErr("Usage: USELIST <code>")
		}
		return Command{Kind: KindUseList, Code: code}, nil

	case "MYLISTS":
		return Command{Kind: KindMyLists}, nil

	case "ADD":
		// quotes around the text are optional; one layer is stripped
		text := strings.Trim(arg, `"`)
		if strings.TrimSpace(text) == "" {
			return usageErr(`Usage: ADD "task text"`)
		}
		return Command{Kind: KindAdd, Text: text}, nil

	case "DONE":
		id := strings.TrimSpace(arg)
		if id == "" {
			return usageErr("Usage: DONE <id>")
		}
		return Command{Kind: KindDone, TaskID: id}, nil

	case "DELETE":
		id := strings.TrimSpace(arg)
		if id == "" {
			return usageErr("Usage: DELETE <id>")
		}
		return Command{Kind: KindDelete, TaskID: id}, nil

	case "LIST":
		return Command{Kind: KindList}, nil

	case "Y":
		return Command{Kind: KindYes}, nil

	case "N":
		return Command{Kind: KindNo}, nil

	default:
		return Command{Kind: KindUnknown}, nil
	}
}
