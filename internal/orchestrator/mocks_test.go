package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"dbconsole/internal/config"
	"dbconsole/internal/reporting"
	"dbconsole/internal/services"

	"github.com/stretchr/testify/mock"
)

// mockService is a mock implementation of services.Service for testing
type mockService struct {
	kind services.Kind

	mu      sync.RWMutex
	running bool
	status  string
	url     string

	startCalls atomic.Int32
	stopCalls  atomic.Int32

	// Function hooks for testing
	startFunc func(ctx context.Context) error
	stopFunc  func(ctx context.Context) error
}

func newMockService(kind services.Kind) *mockService {
	return &mockService{kind: kind, status: kind.String() + " server not started"}
}

func (m *mockService) Kind() services.Kind { return m.kind }

func (m *mockService) Start(ctx context.Context) error {
	m.startCalls.Add(1)
	if m.startFunc != nil {
		return m.startFunc(ctx)
	}
	m.setRunning(true, m.kind.String()+" server running")
	return nil
}

func (m *mockService) Stop(ctx context.Context) error {
	m.stopCalls.Add(1)
	if m.stopFunc != nil {
		return m.stopFunc(ctx)
	}
	if !m.IsRunning() {
		return services.ErrNotRunning
	}
	m.setRunning(false, m.kind.String()+" server stopped")
	return nil
}

func (m *mockService) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *mockService) Status() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *mockService) URL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.url
}

func (m *mockService) setRunning(running bool, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = running
	m.status = status
}

// failingStart makes Start fail the way a listener on a busy port does: the
// instance exists and describes the failure in its status.
func (m *mockService) failingStart() *mockService {
	m.startFunc = func(ctx context.Context) error {
		m.setRunning(false, m.kind.String()+" server not started: address already in use")
		return errors.New("address already in use")
	}
	return m
}

// fixture builds factories for the three kinds and records what they created.
type fixture struct {
	instances map[services.Kind]*mockService
	created   map[services.Kind]*atomic.Int32
	factories map[services.Kind]services.Factory
}

func newFixture() *fixture {
	f := &fixture{
		instances: make(map[services.Kind]*mockService),
		created:   make(map[services.Kind]*atomic.Int32),
		factories: make(map[services.Kind]services.Factory),
	}
	for _, kind := range services.Kinds {
		kind := kind
		inst := newMockService(kind)
		if kind == services.KindAdmin {
			inst.url = "http://localhost:8082"
		}
		f.instances[kind] = inst
		f.created[kind] = &atomic.Int32{}
		f.factories[kind] = func(args config.Args, sup services.Supervisor) (services.Service, error) {
			f.created[kind].Add(1)
			return f.instances[kind], nil
		}
	}
	return f
}

// failCreate makes the factory for kind return an error and no instance.
func (f *fixture) failCreate(kind services.Kind) {
	f.factories[kind] = func(args config.Args, sup services.Supervisor) (services.Service, error) {
		f.created[kind].Add(1)
		return nil, errors.New("invalid port")
	}
}

func (f *fixture) totalStopCalls() int32 {
	var n int32
	for _, inst := range f.instances {
		n += inst.stopCalls.Load()
	}
	return n
}

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) Open(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

type mockPresenter struct {
	mock.Mock
}

func (m *mockPresenter) ShowURL(url string) {
	m.Called(url)
}

func (m *mockPresenter) Release() {
	m.Called()
}

type recordingReporter struct {
	mu      sync.Mutex
	updates []reporting.ServiceUpdate
}

func (r *recordingReporter) Report(update reporting.ServiceUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *recordingReporter) states(kind services.Kind) []reporting.ServiceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []reporting.ServiceState
	for _, u := range r.updates {
		if u.Kind == kind {
			out = append(out, u.State)
		}
	}
	return out
}

type exitRecorder struct {
	mu    sync.Mutex
	codes []int
}

func (e *exitRecorder) exit(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
}

func (e *exitRecorder) Codes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.codes...)
}
