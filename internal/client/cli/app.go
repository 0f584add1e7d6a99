// Package cli implements the interactive task client: it connects to the
// server over TLS and shuttles command lines and reply blocks between the
// terminal and the socket.
package cli

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"strings"

	"taskserver/internal/client/config"
)

type App struct {
	config *config.Config
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run dials the server and enters the prompt loop. Server certificates are
// not verified: deployments use self-signed certificates and the trust
// model is the shared list code, exactly as in the original client.
func (a *App) Run() error {
	conn, err := tls.Dial("tcp", a.config.ServerEndpointAddr, &tls.Config{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", a.config.ServerEndpointAddr, err)
	}
	defer conn.Close()

	return a.loop(conn)
}

// loop pumps the wire: print the unprompted welcome block, then repeat
// prompt → read command → send → print reply block until EOF or "exit".
// It is separated from Run so tests can drive it over an in-memory pipe.
func (a *App) loop(conn io.ReadWriter) error {
	server := bufio.NewReader(conn)

	if err := a.printBlock(server); err != nil {
		return err
	}

	for {
		fmt.Fprint(a.out, "> ")
		line, err := a.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit":
			return nil
		}

		line, err = a.completeAuthCommand(line)
		if err != nil {
			return err
		}

		if _, err := io.WriteString(conn, line+"\n"); err != nil {
			return fmt.Errorf("send command: %w", err)
		}
		if err := a.printBlock(server); err != nil {
			return err
		}
	}
}

// printBlock copies one reply block to the output: lines up to and
// excluding the blank end-of-block marker.
func (a *App) printBlock(server *bufio.Reader) error {
	for {
		line, err := server.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read reply: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			return nil
		}
		fmt.Fprint(a.out, line)
	}
}

// completeAuthCommand lets the user omit the password argument of SIGNUP,
// LOGIN and DELETEACC when running on a terminal: the password is then
// collected without echo and appended before the line goes on the wire.
// Off-terminal, or with the password already present, the line is sent as
// typed.
func (a *App) completeAuthCommand(line string) (string, error) {
	if !isTerminal() {
		return line, nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return line, nil
	}

	needsPassword := false
	switch strings.ToUpper(fields[0]) {
	case "SIGNUP", "LOGIN":
		needsPassword = len(fields) == 2
	case "DELETEACC":
		needsPassword = len(fields) == 1
	}
	if !needsPassword {
		return line, nil
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line + " " + pw, nil
}
