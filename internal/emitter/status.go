package emitter

import (
	"sync"
	"time"
)

const readyMessage = "Ready to start logging..."

// Snapshot is a copy of the emitter's most recent outcome.
type Snapshot struct {
	Message     string     `json:"message"`
	Interval    int        `json:"interval"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	AppName     string     `json:"app_name"`
	ServerURL   string     `json:"server_url"`
}

// Status holds the latest status line for the status page. Only the last
// message is kept.
type Status struct {
	mu   sync.RWMutex
	snap Snapshot
}

func newStatus(appName, serverURL string) *Status {
	return &Status{snap: Snapshot{
		Message:   readyMessage,
		AppName:   appName,
		ServerURL: serverURL,
	}}
}

func (s *Status) set(message string, interval int, at time.Time, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Message = message
	s.snap.Interval = interval
	s.snap.UpdatedAt = at
	if success {
		t := at
		s.snap.LastSuccess = &t
	}
}

func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	if snap.LastSuccess != nil {
		t := *snap.LastSuccess
		snap.LastSuccess = &t
	}
	return snap
}
