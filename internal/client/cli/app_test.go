package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskserver/internal/client/config"
)

func newTestApp(stdin string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		config: &config.Config{ServerEndpointAddr: "localhost:65432"},
		in:     bufio.NewReader(strings.NewReader(stdin)),
		out:    out,
	}, out
}

// stubTerminal forces the terminal detection and password source for a test.
func stubTerminal(t *testing.T, onTerminal bool, password string) {
	t.Helper()
	oldIsTerminal, oldReadPassword := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldIsTerminal, oldReadPassword })
	isTerminal = func() bool { return onTerminal }
	readPassword = func(fd int) ([]byte, error) { return []byte(password), nil }
}

func TestPrintBlock(t *testing.T) {
	a, out := newTestApp("")
	server := bufio.NewReader(strings.NewReader("Tasks:\nNo tasks found.\n\nleftover"))

	require.NoError(t, a.printBlock(server))
	assert.Equal(t, "Tasks:\nNo tasks found.\n", out.String())

	rest, _ := server.ReadString('\n')
	assert.Equal(t, "leftover", rest)
}

func TestPrintBlock_ErrorOnEOFMidBlock(t *testing.T) {
	a, _ := newTestApp("")
	server := bufio.NewReader(strings.NewReader("Tasks:"))
	require.Error(t, a.printBlock(server))
}

func TestCompleteAuthCommand_PromptsWhenPasswordOmitted(t *testing.T) {
	stubTerminal(t, true, "pw1")
	a, out := newTestApp("")

	for _, tt := range []struct{ in, want string }{
		{"SIGNUP alice", "SIGNUP alice pw1"},
		{"login alice", "login alice pw1"},
		{"DELETEACC", "DELETEACC pw1"},
	} {
		got, err := a.completeAuthCommand(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Contains(t, out.String(), "Enter password: ")
}

func TestCompleteAuthCommand_PassesCompleteLinesThrough(t *testing.T) {
	stubTerminal(t, true, "should-not-be-used")
	a, _ := newTestApp("")

	for _, line := range []string{
		"SIGNUP alice pw1",
		"LOGIN alice pw1",
		"DELETEACC pw1",
		`ADD "buy milk"`,
		"LIST",
		"",
	} {
		got, err := a.completeAuthCommand(line)
		require.NoError(t, err)
		assert.Equal(t, line, got)
	}
}

func TestCompleteAuthCommand_OffTerminalSendsAsTyped(t *testing.T) {
	stubTerminal(t, false, "should-not-be-used")
	a, _ := newTestApp("")

	got, err := a.completeAuthCommand("LOGIN alice")
	require.NoError(t, err)
	assert.Equal(t, "LOGIN alice", got)
}

func TestLoop_BannerPromptAndReply(t *testing.T) {
	stubTerminal(t, false, "")
	a, out := newTestApp("LIST\nexit\n")

	// scripted server: banner, then one reply for LIST
	var wire bytes.Buffer
	conn := &scriptedConn{
		r: strings.NewReader("Welcome to the Task Server!\n\nLOGIN first.\n\n"),
		w: &wire,
	}

	require.NoError(t, a.loop(conn))
	assert.Equal(t, "LIST\n", wire.String())
	assert.Equal(t, "Welcome to the Task Server!\n> LOGIN first.\n> ", out.String())
}

func TestLoop_EOFOnStdinEndsLoop(t *testing.T) {
	stubTerminal(t, false, "")
	a, _ := newTestApp("")

	conn := &scriptedConn{
		r: strings.NewReader("banner\n\n"),
		w: &bytes.Buffer{},
	}
	require.NoError(t, a.loop(conn))
}

type scriptedConn struct {
	r *strings.Reader
	w *bytes.Buffer
}

func (c *scriptedConn) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *scriptedConn) Write(p []byte) (int, error) { return c.w.Write(p) }
