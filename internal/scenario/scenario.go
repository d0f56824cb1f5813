// Package scenario keeps the dashboard's decision log: a bounded, in-memory list of saved
// policy scenarios.
package scenario

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/judge"
	"github.com/cxd309/tram-policy/internal/policy"
)

// DefaultCapacity is the number of scenarios kept when none is configured.
const DefaultCapacity = 10

// Entry is a snapshot of one saved scenario. Entries are copies; changing one does not
// affect the log.
type Entry struct {
	ID       string         `json:"id"`
	SavedAt  time.Time      `json:"saved_at"`
	Label    string         `json:"label,omitempty"`
	Params   policy.Params  `json:"params"`
	Result   engine.Result  `json:"result"`
	Judgment judge.Judgment `json:"judgment"`
}

// Log is an append-only list capped at a fixed capacity; saving past the cap evicts the
// oldest entry. It is safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry // oldest first
	now      func() time.Time
}

// NewLog returns an empty log. A capacity <= 0 selects DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, now: time.Now}
}

// Save appends a snapshot and returns it.
func (l *Log) Save(label string, params policy.Params, result engine.Result, j judge.Judgment) Entry {
	e := Entry{
		ID:       uuid.NewString(),
		Label:    label,
		Params:   params,
		Result:   cloneResult(result),
		Judgment: j,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	e.SavedAt = l.now()
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
	return e
}

// List returns the saved scenarios, newest first.
func (l *Log) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Get returns the entry with id.
func (l *Log) Get(id string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of saved scenarios.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// cloneResult copies the slices of r so the snapshot does not alias the caller's result.
func cloneResult(r engine.Result) engine.Result {
	r.PerStation = append([]engine.StationResult(nil), r.PerStation...)
	r.Hourly = append([]engine.HourlyPoint(nil), r.Hourly...)
	return r
}
