package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dbconsole/internal/config"
	"dbconsole/internal/services"
	"dbconsole/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	subsystem  = "Admin"
	serverName = "Web Console server"

	// gracePeriod is how long Stop lets in-flight requests finish before
	// closing the remaining connections.
	gracePeriod = time.Second
)

// shutdownDelay gives a remote caller time to receive its reply before the
// launcher starts stopping services.
var shutdownDelay = 200 * time.Millisecond

// Service is the browser-facing admin endpoint. Its liveness decides whether
// the launch as a whole succeeded.
type Service struct {
	*services.BaseService

	addr        string
	host        string
	remote      bool
	allowRemote bool
	handler     *handler

	mu     sync.Mutex
	ln     net.Listener
	server *http.Server
	done   chan struct{}
}

// New is a services.Factory for the admin endpoint.
func New(args config.Args, sup services.Supervisor) (services.Service, error) {
	if sup == nil {
		return nil, errors.New("admin endpoint requires a supervisor")
	}
	if args.AdminPort < 0 || args.AdminPort > 65535 {
		return nil, fmt.Errorf("invalid admin port %d", args.AdminPort)
	}
	return &Service{
		BaseService: services.NewBaseService(services.KindAdmin),
		addr:        args.ListenAddr(args.AdminPort),
		host:        args.DisplayHost(),
		remote:      args.AllowOthers,
		allowRemote: args.AllowRemoteControl,
		handler:     &handler{sup: sup, version: args.Version, baseDir: args.BaseDir},
	}, nil
}

// Start binds the admin port and serves the router in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return services.ErrAlreadyRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		s.SetStopped(fmt.Sprintf("%s not started: %v", serverName, err))
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	url := "http://" + net.JoinHostPort(s.host, strconv.Itoa(port))

	reg := prometheus.NewRegistry()
	reg.MustRegister(newStatusCollector(s.handler.sup, s.handler.version))

	sse := server.NewSSEServer(
		newMCPServer(s.handler),
		server.WithBaseURL(url),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)

	// Cancelling the base context ends long-lived SSE streams on shutdown.
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:           newRouter(s.handler, reg, sse, &requestGuard{host: s.host, port: port, allowRemote: s.allowRemote}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancel)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(subsystem, err, "%s stopped serving", serverName)
			s.SetStopped(fmt.Sprintf("%s failed: %v", serverName, err))
		}
	}()

	s.ln = ln
	s.server = srv
	s.done = done

	access := "only local connections"
	if s.remote {
		access = "others can connect"
	}
	s.SetRunning(url, fmt.Sprintf("%s running at %s (%s)", serverName, url, access))
	logging.Info(subsystem, "%s listening on %s", serverName, ln.Addr())
	return nil
}

// Stop shuts the HTTP server down, closing connections that are still busy
// once the grace period or ctx runs out.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	if srv == nil {
		s.mu.Unlock()
		return services.ErrNotRunning
	}
	s.server = nil
	s.ln = nil
	s.done = nil
	s.mu.Unlock()

	graceCtx, cancel := context.WithTimeout(ctx, gracePeriod)
	defer cancel()

	var stopErr error
	if err := srv.Shutdown(graceCtx); err != nil {
		logging.Debug(subsystem, "graceful shutdown incomplete, closing connections: %v", err)
		if err := srv.Close(); err != nil {
			stopErr = fmt.Errorf("failed to close %s: %w", serverName, err)
		}
	}

	select {
	case <-done:
	case <-ctx.Done():
		if stopErr == nil {
			stopErr = fmt.Errorf("%s: waiting for serve loop: %w", serverName, ctx.Err())
		}
	}

	s.SetStopped(serverName + " stopped")
	logging.Info(subsystem, "%s stopped", serverName)
	return stopErr
}

// Addr returns the bound address, or nil when stopped.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}
