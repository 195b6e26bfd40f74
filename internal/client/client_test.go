package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"dbconsole/internal/config"
	"dbconsole/internal/services"
	"dbconsole/internal/services/admin"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSupervisor struct {
	mu       sync.Mutex
	triggers []services.Trigger
}

func (f *fakeSupervisor) ShutdownNow(trigger services.Trigger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
}

func (f *fakeSupervisor) Status() []services.SlotStatus {
	return []services.SlotStatus{
		{Kind: services.KindAdmin, Present: true, Running: true, Status: "Web Console server running"},
		{Kind: services.KindTCP, LaunchError: "TCP service failed to start: address already in use"},
		{Kind: services.KindPG, Present: true, Running: true, Status: "PG server running"},
	}
}

func (f *fakeSupervisor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.triggers)
}

func startAdmin(t *testing.T, sup services.Supervisor) services.Service {
	t.Helper()
	svc, err := admin.New(config.Args{Host: "127.0.0.1", Version: "test"}, sup)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		svc.Stop(ctx)
	})
	return svc
}

func TestClient_Status(t *testing.T) {
	svc := startAdmin(t, &fakeSupervisor{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	statuses, err := New(svc.URL()+"/", "test").Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, services.KindTCP, statuses[1].Kind)
	assert.False(t, statuses[1].Present)
	assert.Equal(t, "TCP service failed to start: address already in use", statuses[1].LaunchError)
	assert.True(t, statuses[2].Running)
}

func TestClient_Shutdown(t *testing.T) {
	sup := &fakeSupervisor{}
	svc := startAdmin(t, sup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, err := New(svc.URL(), "test").Shutdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Shutdown requested", msg)
	assert.Eventually(t, func() bool { return sup.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New("http://127.0.0.1:1", "test").Status(ctx)
	assert.Error(t, err)
}

func TestResultText(t *testing.T) {
	result := &mcp.CallToolResult{Content: []mcp.Content{
		mcp.TextContent{Type: "text", Text: "a"},
		mcp.TextContent{Type: "text", Text: "b"},
	}}
	assert.Equal(t, "a\nb", resultText(result))
}
