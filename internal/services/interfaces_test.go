package services

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"dbconsole/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindAdmin, "Admin"},
		{KindTCP, "TCP"},
		{KindPG, "PG"},
		{Kind(7), "Kind(7)"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.kind.String())
	}
}

func TestKind_UnmarshalText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("PG")))
	assert.Equal(t, KindPG, k)
	assert.Error(t, k.UnmarshalText([]byte("H2")))
}

func TestKinds_LaunchOrder(t *testing.T) {
	assert.Equal(t, [...]Kind{KindAdmin, KindTCP, KindPG}, Kinds)
}

func TestTrigger_String(t *testing.T) {
	assert.Equal(t, "signal", TriggerSignal.String())
	assert.Equal(t, "ui", TriggerUI.String())
	assert.Equal(t, "remote", TriggerRemote.String())
	assert.Equal(t, "startup-failure", TriggerStartupFailure.String())
}

func TestStartError(t *testing.T) {
	cause := errors.New("address already in use")
	err := &StartError{Kind: KindTCP, Message: "TCP server not started", Err: cause}

	assert.Equal(t, "TCP service failed to start: TCP server not started", err.Error())
	assert.ErrorIs(t, err, cause)
}

func echoHandler(ctx context.Context, conn net.Conn) {
	io.Copy(conn, conn)
}

func testArgs() config.Args {
	return config.Args{Host: "127.0.0.1"}
}

func TestListenerService_Lifecycle(t *testing.T) {
	svc := NewListenerService(KindTCP, "TCP server", "tcp", testArgs(), 0, echoHandler)
	assert.False(t, svc.IsRunning())
	assert.Equal(t, KindTCP, svc.Kind())

	require.NoError(t, svc.Start(context.Background()))
	assert.True(t, svc.IsRunning())
	assert.True(t, strings.HasPrefix(svc.URL(), "tcp://127.0.0.1:"))
	assert.Contains(t, svc.Status(), "TCP server running at tcp://127.0.0.1:")
	assert.Contains(t, svc.Status(), "only local connections")

	assert.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyRunning)

	conn, err := net.Dial("tcp", svc.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("hello\n"))
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hello\n", line)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Stop(ctx), "stop must close the open echo connection")
	assert.False(t, svc.IsRunning())
	assert.Equal(t, "TCP server stopped", svc.Status())
	assert.Nil(t, svc.Addr())

	assert.ErrorIs(t, svc.Stop(ctx), ErrNotRunning)
}

func TestListenerService_StartFailsOnBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	svc := NewListenerService(KindPG, "PG server", "pg", testArgs(), port, echoHandler)
	err = svc.Start(context.Background())

	assert.Error(t, err)
	assert.False(t, svc.IsRunning())
	assert.Contains(t, svc.Status(), "PG server not started")
}
