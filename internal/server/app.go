// Package server initializes and runs the task server: it opens the
// snapshot store, loads the TLS certificate, accepts client connections
// and hands each one to its own session.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"taskserver/internal/logging"
	"taskserver/internal/server/auth"
	"taskserver/internal/server/config"
	"taskserver/internal/server/session"
	"taskserver/internal/server/store"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  *store.Store
	auth   *auth.Service

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	st, err := store.Open(c.StoreFile)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	return &App{
		config: c,
		logger: logger,
		store:  st,
		auth:   auth.NewService(auth.BcryptHasher{}),
		conns:  make(map[net.Conn]struct{}),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// listen wraps a TCP listener in TLS with the configured certificate.
// Certificate management itself is an operational concern; the server only
// consumes the PEM files it is pointed at.
func (app *App) listen() (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(app.config.CertFile, app.config.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}

	ln, err := tls.Listen("tcp", app.config.EndpointAddr, &tls.Config{
		Certificates: []tls.Certificate{cert},
	})
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", app.config.EndpointAddr, err)
	}
	return ln, nil
}

func (app *App) trackConn(conn net.Conn) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.conns[conn] = struct{}{}
}

func (app *App) untrackConn(conn net.Conn) {
	app.mu.Lock()
	defer app.mu.Unlock()
	delete(app.conns, conn)
}

func (app *App) closeConns() {
	app.mu.Lock()
	defer app.mu.Unlock()
	for conn := range app.conns {
		conn.Close()
	}
}

// serve accepts connections until the context is cancelled. Every accepted
// connection gets its own session goroutine; a failing session never
// affects its siblings.
func (app *App) serve(ctx context.Context, ln net.Listener) {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			app.logger.Warn(ctx, "accept failed", "error", err)
			continue
		}

		addr := conn.RemoteAddr().String()
		app.logger.Info(ctx, "client connected", "addr", addr)
		app.trackConn(conn)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer app.untrackConn(conn)

			sess := session.New(app.store, app.auth, app.logger.With("addr", addr))
			sess.Serve(ctx, conn)
			app.logger.Info(ctx, "client disconnected", "addr", addr)
		}()
	}

	app.closeConns()
	wg.Wait()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	ln, err := app.listen()
	if err != nil {
		return err
	}

	app.logger.Info(ctx, "server running", "addr", app.config.EndpointAddr)
	app.serve(ctx, ln)
	app.logger.Info(ctx, "server stopped")
	return nil
}
