package api

import (
	"sync"

	"github.com/pgrind/pgrind/pkg/trace"
	"github.com/segmentio/ksuid"
)

// SessionManager tracks the trace readers opened through the API, one
// ksuid-identified session per open file.
type SessionManager struct {
	mu      sync.Mutex
	readers map[string]*trace.Reader
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		readers: make(map[string]*trace.Reader),
	}
}

// Open opens a trace file and registers it under a fresh session id.
func (m *SessionManager) Open(path string, format trace.CostFormat) (string, *trace.Reader, error) {
	reader, err := trace.Open(path, format)
	if err != nil {
		return "", nil, err
	}

	id := ksuid.New().String()

	m.mu.Lock()
	m.readers[id] = reader
	m.mu.Unlock()

	return id, reader, nil
}

// Get returns the reader for a session id.
func (m *SessionManager) Get(id string) (*trace.Reader, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reader, ok := m.readers[id]
	return reader, ok
}

// Close closes a session's reader and forgets the session. It reports
// whether the session existed.
func (m *SessionManager) Close(id string) (bool, error) {
	m.mu.Lock()
	reader, ok := m.readers[id]
	delete(m.readers, id)
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, reader.Close()
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.readers)
}

// CloseAll closes every open session, returning the first error seen.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	readers := m.readers
	m.readers = make(map[string]*trace.Reader)
	m.mu.Unlock()

	var firstErr error
	for _, reader := range readers {
		if err := reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
