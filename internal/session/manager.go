package session

import (
	"context"
	"log"
	"sync"
)

// Manager owns the live controllers, one per interview. Reconnecting clients
// attach to the existing controller instead of restarting the session
type Manager struct {
	backend Backend
	opts    []Option

	mu       sync.Mutex
	sessions map[string]*Controller
}

// NewManager creates a session manager over the given backend
func NewManager(backend Backend, opts ...Option) *Manager {
	return &Manager{
		backend:  backend,
		opts:     opts,
		sessions: make(map[string]*Controller),
	}
}

// Attach returns the running controller for an interview, starting one if
// none exists. The sink is only used for a newly started controller; an
// existing session keeps broadcasting through its original sink
func (m *Manager) Attach(interviewID string, sink Sink) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.sessions[interviewID]; ok {
		return c
	}

	c := New(interviewID, m.backend, sink, m.opts...)
	m.sessions[interviewID] = c
	go func() {
		c.Run(context.Background())
		m.remove(interviewID)
	}()
	log.Printf("[Session %s] Controller started", interviewID)
	return c
}

// Get returns the live controller for an interview, or nil
func (m *Manager) Get(interviewID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[interviewID]
}

// Stop terminates the controller for an interview, if one is running
func (m *Manager) Stop(interviewID string) {
	m.mu.Lock()
	c := m.sessions[interviewID]
	m.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// StopAll terminates every live controller (server shutdown)
func (m *Manager) StopAll() {
	m.mu.Lock()
	controllers := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		controllers = append(controllers, c)
	}
	m.mu.Unlock()
	for _, c := range controllers {
		c.Stop()
	}
}

func (m *Manager) remove(interviewID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, interviewID)
	log.Printf("[Session %s] Controller stopped", interviewID)
}
