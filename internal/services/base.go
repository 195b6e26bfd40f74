package services

import "sync"

// BaseService holds the state every service reports: liveness, status line
// and URL. Concrete services embed it and update it from Start and Stop.
type BaseService struct {
	kind Kind

	mu      sync.RWMutex
	running bool
	status  string
	url     string
}

// NewBaseService creates a stopped base for a service of the given kind.
func NewBaseService(kind Kind) *BaseService {
	return &BaseService{
		kind:   kind,
		status: kind.String() + " server not started",
	}
}

func (b *BaseService) Kind() Kind {
	return b.kind
}

func (b *BaseService) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

func (b *BaseService) Status() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

func (b *BaseService) URL() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.url
}

// SetRunning marks the service as serving at url.
func (b *BaseService) SetRunning(url, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = true
	b.url = url
	b.status = status
}

// SetStopped marks the service as not serving. The URL is kept so status
// output can still say where the service used to be.
func (b *BaseService) SetStopped(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	b.status = status
}
