package pgwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"dbconsole/internal/config"
	"dbconsole/internal/services"
	"dbconsole/pkg/logging"

	"github.com/jackc/pgx/v5/pgproto3"
)

const (
	subsystem = "PG"

	// handshakeTimeout bounds the startup exchange of a new connection.
	handshakeTimeout = 10 * time.Second

	// serverVersion is what clients see in server_version and version().
	serverVersion = "14.0"

	oidInt4 = 23
	oidText = 25
)

// Service is the Postgres wire-protocol listener. It completes the startup
// handshake with trust authentication and answers a small set of simple
// queries so clients can verify connectivity.
type Service struct {
	*services.ListenerService

	version string
	nextPID atomic.Uint32
}

// New is a services.Factory for the wire-protocol listener.
func New(args config.Args, sup services.Supervisor) (services.Service, error) {
	if args.PGPort < 0 || args.PGPort > 65535 {
		return nil, fmt.Errorf("invalid pg port %d", args.PGPort)
	}
	s := &Service{version: args.Version}
	s.ListenerService = services.NewListenerService(services.KindPG, "PG server", "pg", args, args.PGPort, s.serveConn)
	return s, nil
}

func (s *Service) serveConn(ctx context.Context, conn net.Conn) {
	backend := pgproto3.NewBackend(conn, conn)

	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	params, err := s.startup(conn, backend)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			logging.Debug(subsystem, "startup from %s failed: %v", conn.RemoteAddr(), err)
		}
		return
	}
	conn.SetDeadline(time.Time{})
	logging.Debug(subsystem, "session for user %q database %q from %s", params["user"], params["database"], conn.RemoteAddr())

	// After an extended-protocol error, messages are skipped until Sync.
	skipToSync := false
	for ctx.Err() == nil {
		msg, err := backend.Receive()
		if err != nil {
			return
		}

		switch m := msg.(type) {
		case *pgproto3.Query:
			s.simpleQuery(backend, m.String)
		case *pgproto3.Sync:
			skipToSync = false
			backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
		case *pgproto3.Parse, *pgproto3.Bind, *pgproto3.Describe, *pgproto3.Execute, *pgproto3.Close:
			if !skipToSync {
				skipToSync = true
				backend.Send(errorResponse("0A000", "extended query protocol is not supported"))
			}
		case *pgproto3.Flush:
		case *pgproto3.Terminate:
			return
		default:
			backend.Send(errorResponse("08P01", fmt.Sprintf("unexpected message %T", msg)))
			backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
		}

		if err := backend.Flush(); err != nil {
			return
		}
	}
}

// startup runs the connection handshake, declining SSL and GSS encryption,
// and returns the client's startup parameters.
func (s *Service) startup(conn net.Conn, backend *pgproto3.Backend) (map[string]string, error) {
	for {
		msg, err := backend.ReceiveStartupMessage()
		if err != nil {
			return nil, err
		}

		switch m := msg.(type) {
		case *pgproto3.SSLRequest, *pgproto3.GSSEncRequest:
			if _, err := conn.Write([]byte("N")); err != nil {
				return nil, err
			}
		case *pgproto3.CancelRequest:
			return nil, io.EOF
		case *pgproto3.StartupMessage:
			backend.Send(&pgproto3.AuthenticationOk{})
			for _, p := range [][2]string{
				{"server_version", serverVersion},
				{"server_encoding", "UTF8"},
				{"client_encoding", "UTF8"},
				{"DateStyle", "ISO, MDY"},
				{"integer_datetimes", "on"},
				{"standard_conforming_strings", "on"},
				{"application_name", m.Parameters["application_name"]},
			} {
				backend.Send(&pgproto3.ParameterStatus{Name: p[0], Value: p[1]})
			}
			backend.Send(&pgproto3.BackendKeyData{ProcessID: s.nextPID.Add(1), SecretKey: 0})
			backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
			return m.Parameters, backend.Flush()
		default:
			return nil, fmt.Errorf("unexpected startup message %T", msg)
		}
	}
}

func (s *Service) simpleQuery(backend *pgproto3.Backend, sql string) {
	defer backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})

	switch normalizeQuery(sql) {
	case "":
		backend.Send(&pgproto3.EmptyQueryResponse{})
	case "select 1":
		sendRow(backend, "?column?", oidInt4, 4, "1")
	case "select version()":
		sendRow(backend, "version", oidText, -1, fmt.Sprintf("PostgreSQL %s (dbconsole %s)", serverVersion, s.version))
	default:
		backend.Send(errorResponse("0A000", fmt.Sprintf("query not supported: %s", strings.TrimSpace(sql))))
	}
}

func sendRow(backend *pgproto3.Backend, column string, oid uint32, size int16, value string) {
	backend.Send(&pgproto3.RowDescription{Fields: []pgproto3.FieldDescription{{
		Name:         []byte(column),
		DataTypeOID:  oid,
		DataTypeSize: size,
		TypeModifier: -1,
	}}})
	backend.Send(&pgproto3.DataRow{Values: [][]byte{[]byte(value)}})
	backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("SELECT 1")})
}

func errorResponse(code, message string) *pgproto3.ErrorResponse {
	return &pgproto3.ErrorResponse{Severity: "ERROR", Code: code, Message: message}
}

// normalizeQuery lowercases sql, collapses whitespace and drops a trailing
// semicolon.
func normalizeQuery(sql string) string {
	q := strings.Join(strings.Fields(strings.ToLower(sql)), " ")
	return strings.TrimSpace(strings.TrimSuffix(q, ";"))
}
