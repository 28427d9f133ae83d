package sheets

import (
	"context"
	"sync"

	"github.com/crisrod14/destinosAI/internal/schema"
)

// MemoryMirror is an in-process Remote that stores the rendered rows.
// Failures can be injected with PushErr and PullErr.
type MemoryMirror struct {
	mu      sync.Mutex
	rows    [][]any
	pushes  int
	PushErr error
	PullErr error
}

// NewMemoryMirror returns a mirror preloaded with records.
func NewMemoryMirror(records ...schema.Record) *MemoryMirror {
	m := &MemoryMirror{}
	if len(records) > 0 {
		m.rows = Rows(records)
	}
	return m
}

// Push implements Remote.
func (m *MemoryMirror) Push(_ context.Context, records []schema.Record) (*PushResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes++
	if m.PushErr != nil {
		return nil, m.PushErr
	}
	m.rows = Rows(records)
	cells := 0
	for _, r := range m.rows {
		cells += len(r)
	}
	return &PushResult{Rows: len(records), Cells: cells}, nil
}

// Pull implements Remote.
func (m *MemoryMirror) Pull(context.Context) ([]schema.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PullErr != nil {
		return nil, m.PullErr
	}
	return RecordsFromRows(m.rows), nil
}

// SetFailures sets the injected errors under the mirror lock.
func (m *MemoryMirror) SetFailures(push, pull error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushErr = push
	m.PullErr = pull
}

// Pushes returns how many pushes were attempted.
func (m *MemoryMirror) Pushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushes
}

// Records returns the records currently held.
func (m *MemoryMirror) Records() []schema.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return RecordsFromRows(m.rows)
}
