package cmd

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"dbconsole/internal/config"
	"dbconsole/internal/services"
	"dbconsole/internal/services/admin"

	"github.com/spf13/cobra"
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

// startAdmin serves a real admin endpoint and points the remote commands at it.
func startAdmin(t *testing.T, sup services.Supervisor) {
	t.Helper()
	svc, err := admin.New(config.Args{Host: "127.0.0.1", Version: "test"}, sup)
	if err != nil {
		t.Fatalf("Error creating admin endpoint: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Error starting admin endpoint: %v", err)
	}

	originalURL := remoteURL
	remoteURL = svc.URL()
	t.Cleanup(func() {
		remoteURL = originalURL
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		svc.Stop(ctx)
	})
}

func newTestCommand(out *bytes.Buffer) *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.SetOut(out)
	c.SetContext(context.Background())
	return c
}

func TestRunStatus(t *testing.T) {
	startAdmin(t, &fakeSupervisor{})

	originalFormat := statusOutputFormat
	defer func() { statusOutputFormat = originalFormat }()
	statusOutputFormat = "json"

	var buf bytes.Buffer
	if err := runStatus(newTestCommand(&buf), nil); err != nil {
		t.Fatalf("Error running status: %v", err)
	}

	output := buf.String()
	for _, want := range []string{`"kind": "Admin"`, `"kind": "TCP"`, "address already in use"} {
		if !strings.Contains(output, want) {
			t.Errorf("Status output should contain %q. Got: %q", want, output)
		}
	}
}

func TestRunStatusRejectsUnknownFormat(t *testing.T) {
	originalFormat := statusOutputFormat
	defer func() { statusOutputFormat = originalFormat }()
	statusOutputFormat = "xml"

	var buf bytes.Buffer
	err := runStatus(newTestCommand(&buf), nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Errorf("Expected unsupported format error, got %v", err)
	}
}

func TestRunStop(t *testing.T) {
	sup := &fakeSupervisor{}
	startAdmin(t, sup)

	var buf bytes.Buffer
	if err := runStop(newTestCommand(&buf), nil); err != nil {
		t.Fatalf("Error running stop: %v", err)
	}
	if !strings.Contains(buf.String(), "Shutdown requested") {
		t.Errorf("Unexpected stop output %q", buf.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for sup.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sup.count() != 1 {
		t.Errorf("Expected one shutdown request, got %d", sup.count())
	}
}

func TestAdminURL(t *testing.T) {
	cfg := config.GetDefaultConfig()
	url, err := adminURL(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if url != "http://localhost:8082" {
		t.Errorf("Expected default admin URL, got %s", url)
	}

	cfg.GlobalSettings.AllowOthers = true
	url, err = adminURL(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if url != "http://localhost:8082" {
		t.Errorf("Expected the local admin URL when others may connect, got %s", url)
	}

	cfg.Admin.Port = 0
	if _, err := adminURL(cfg); err == nil {
		t.Error("Expected an error when the admin port is picked at startup")
	}
}
