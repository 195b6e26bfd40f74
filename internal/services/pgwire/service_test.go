package pgwire

import (
	"context"
	"net"
	"testing"
	"time"

	"dbconsole/internal/config"
	"dbconsole/internal/services"

	"github.com/jackc/pgx/v5/pgproto3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(config.Args{Host: "127.0.0.1", Version: "1.2.3"}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		svc.Stop(ctx)
	})
	return svc.(*Service)
}

type client struct {
	t    *testing.T
	conn net.Conn
	fe   *pgproto3.Frontend
}

func dial(t *testing.T, svc *Service) *client {
	t.Helper()
	conn, err := net.Dial("tcp", svc.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return &client{t: t, conn: conn, fe: pgproto3.NewFrontend(conn, conn)}
}

func (c *client) send(msg pgproto3.FrontendMessage) {
	c.fe.Send(msg)
	require.NoError(c.t, c.fe.Flush())
}

// receiveUntilReady collects the type names of backend messages up to and
// including ReadyForQuery, along with the values of any data rows.
func (c *client) receiveUntilReady() ([]string, []string) {
	var kinds, values []string
	for {
		msg, err := c.fe.Receive()
		require.NoError(c.t, err)
		switch m := msg.(type) {
		case *pgproto3.AuthenticationOk:
			kinds = append(kinds, "AuthenticationOk")
		case *pgproto3.ParameterStatus:
			kinds = append(kinds, "ParameterStatus")
		case *pgproto3.BackendKeyData:
			kinds = append(kinds, "BackendKeyData")
		case *pgproto3.RowDescription:
			kinds = append(kinds, "RowDescription")
		case *pgproto3.DataRow:
			kinds = append(kinds, "DataRow")
			for _, v := range m.Values {
				values = append(values, string(v))
			}
		case *pgproto3.CommandComplete:
			kinds = append(kinds, "CommandComplete")
		case *pgproto3.EmptyQueryResponse:
			kinds = append(kinds, "EmptyQueryResponse")
		case *pgproto3.ErrorResponse:
			kinds = append(kinds, "ErrorResponse:"+m.Code)
		case *pgproto3.ReadyForQuery:
			return kinds, values
		default:
			c.t.Fatalf("unexpected message %T", msg)
		}
	}
}

func (c *client) startup() {
	c.send(&pgproto3.StartupMessage{
		ProtocolVersion: pgproto3.ProtocolVersionNumber,
		Parameters:      map[string]string{"user": "sa", "database": "test"},
	})
	kinds, _ := c.receiveUntilReady()
	require.NotEmpty(c.t, kinds)
	assert.Equal(c.t, "AuthenticationOk", kinds[0])
	assert.Contains(c.t, kinds, "ParameterStatus")
	assert.Contains(c.t, kinds, "BackendKeyData")
}

func TestService_HandshakeAndQueries(t *testing.T) {
	c := dial(t, startService(t))
	c.startup()

	c.send(&pgproto3.Query{String: "select 1;"})
	kinds, values := c.receiveUntilReady()
	assert.Equal(t, []string{"RowDescription", "DataRow", "CommandComplete"}, kinds)
	assert.Equal(t, []string{"1"}, values)

	c.send(&pgproto3.Query{String: "SELECT  version()"})
	kinds, values = c.receiveUntilReady()
	assert.Equal(t, []string{"RowDescription", "DataRow", "CommandComplete"}, kinds)
	require.Len(t, values, 1)
	assert.Contains(t, values[0], "dbconsole 1.2.3")

	c.send(&pgproto3.Query{String: "  "})
	kinds, _ = c.receiveUntilReady()
	assert.Equal(t, []string{"EmptyQueryResponse"}, kinds)

	c.send(&pgproto3.Query{String: "CREATE TABLE t (id int)"})
	kinds, _ = c.receiveUntilReady()
	assert.Equal(t, []string{"ErrorResponse:0A000"}, kinds)

	c.send(&pgproto3.Terminate{})
	_, err := c.fe.Receive()
	assert.Error(t, err, "server closes the connection on Terminate")
}

func TestService_DeclinesSSL(t *testing.T) {
	c := dial(t, startService(t))

	c.send(&pgproto3.SSLRequest{})
	reply := make([]byte, 1)
	_, err := c.conn.Read(reply)
	require.NoError(t, err)
	assert.Equal(t, "N", string(reply))

	c.startup()
}

func TestService_ExtendedProtocolRejected(t *testing.T) {
	c := dial(t, startService(t))
	c.startup()

	c.fe.Send(&pgproto3.Parse{Query: "select $1"})
	c.fe.Send(&pgproto3.Bind{})
	c.fe.Send(&pgproto3.Execute{})
	c.send(&pgproto3.Sync{})

	kinds, _ := c.receiveUntilReady()
	assert.Equal(t, []string{"ErrorResponse:0A000"}, kinds, "one error per failed batch")
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"SELECT 1", "select 1"},
		{"  select\n1 ; ", "select 1"},
		{";", ""},
		{"", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, normalizeQuery(test.in))
	}
}

func TestService_Kind(t *testing.T) {
	svc, err := New(config.Args{}, nil)
	require.NoError(t, err)
	assert.Equal(t, services.KindPG, svc.Kind())
	assert.Equal(t, "PG server not started", svc.Status())
}
