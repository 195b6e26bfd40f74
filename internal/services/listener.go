package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"dbconsole/internal/config"
	"dbconsole/pkg/logging"
)

// ConnHandler serves one accepted connection. ctx is cancelled when the
// listener stops; the connection is closed by the caller after return.
type ConnHandler func(ctx context.Context, conn net.Conn)

// ListenerService is a TCP accept loop shared by the raw and PG listeners.
type ListenerService struct {
	*BaseService

	name    string // "TCP server", used in status lines and logs
	scheme  string // URL scheme, "tcp" or "pg"
	addr    string
	host    string
	remote  bool
	handler ConnHandler

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewListenerService creates a stopped listener that will bind port using
// the host settings from args.
func NewListenerService(kind Kind, name, scheme string, args config.Args, port int, handler ConnHandler) *ListenerService {
	return &ListenerService{
		BaseService: NewBaseService(kind),
		name:        name,
		scheme:      scheme,
		addr:        args.ListenAddr(port),
		host:        args.DisplayHost(),
		remote:      args.AllowOthers,
		handler:     handler,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and starts accepting connections.
func (s *ListenerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return ErrAlreadyRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		s.SetStopped(fmt.Sprintf("%s not started: %v", s.name, err))
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	url := s.scheme + "://" + net.JoinHostPort(s.host, strconv.Itoa(port))

	serveCtx, cancel := context.WithCancel(context.Background())
	s.ln = ln
	s.cancel = cancel

	access := "only local connections"
	if s.remote {
		access = "others can connect"
	}
	s.SetRunning(url, fmt.Sprintf("%s running at %s (%s)", s.name, url, access))

	s.wg.Add(1)
	go s.acceptLoop(serveCtx, ln)

	logging.Info(s.Kind().String(), "%s listening on %s", s.name, ln.Addr())
	return nil
}

// Stop closes the listener and all open connections, then waits for the
// connection handlers to return or ctx to expire.
func (s *ListenerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.ln == nil {
		s.mu.Unlock()
		return ErrNotRunning
	}
	ln := s.ln
	s.ln = nil
	s.cancel()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	closeErr := ln.Close()
	s.SetStopped(s.name + " stopped")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("%s: waiting for connections: %w", s.name, ctx.Err())
	}

	logging.Info(s.Kind().String(), "%s stopped", s.name)
	if closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		return fmt.Errorf("failed to close %s listener: %w", s.name, closeErr)
	}
	return nil
}

// Addr returns the bound address, or nil when stopped.
func (s *ListenerService) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *ListenerService) acceptLoop(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			logging.Warn(s.Kind().String(), "accept failed: %v", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			defer conn.Close()
			s.handler(ctx, conn)
		}()
	}
}

func (s *ListenerService) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *ListenerService) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}
