package orchestrator

import (
	"sync"

	"dbconsole/internal/services"
)

// slot is the orchestrator's record of one service kind. The mutex guards
// the fields only; it is never held while calling into the instance.
type slot struct {
	kind services.Kind

	mu        sync.Mutex
	instance  services.Service
	launchErr error
	// sealed is set by the stop sequence. A sealed slot accepts no new
	// instance and is never reused.
	sealed bool
}

// store records the outcome of a start attempt. It reports false when the
// slot was sealed in the meantime; the caller then still owns inst.
func (s *slot) store(inst services.Service, launchErr error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false
	}
	s.instance = inst
	s.launchErr = launchErr
	return true
}

// seal closes the slot to launches and returns the instance to stop.
func (s *slot) seal() services.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
	return s.instance
}

// clear drops the instance once it has been stopped.
func (s *slot) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instance = nil
}

func (s *slot) snapshot() (services.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instance, s.launchErr
}

// status queries the instance directly; nothing about liveness is cached.
func (s *slot) status() services.SlotStatus {
	inst, launchErr := s.snapshot()

	st := services.SlotStatus{Kind: s.kind}
	if launchErr != nil {
		st.LaunchError = launchErr.Error()
	}
	if inst == nil {
		return st
	}
	st.Present = true
	st.Running = inst.IsRunning()
	st.Status = inst.Status()
	st.URL = inst.URL()
	return st
}
