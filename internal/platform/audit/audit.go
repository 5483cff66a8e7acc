// Package audit records one entry per conversion: what was uploaded, how it
// was classified and how much came out of it.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded conversion.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Source    string    `json:"source"`
	Format    string    `json:"format"`
	Sheets    int       `json:"sheets"`
	Rows      int       `json:"rows"`
	Bytes     int64     `json:"bytes"`
	SHA256    string    `json:"sha256"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry starts an entry for content uploaded under source.
func NewEntry(requestID, source string, content []byte) Entry {
	sum := sha256.Sum256(content)
	return Entry{
		ID:        uuid.New(),
		RequestID: requestID,
		Source:    source,
		Bytes:     int64(len(content)),
		SHA256:    hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}
}

// Failed reports whether the conversion ended in an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Log persists entries and lists the most recent ones.
type Log interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// DefaultLimit is used when Recent is called with a non-positive limit.
const DefaultLimit = 50

// MaxLimit caps Recent.
const MaxLimit = 500

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// Memory is a bounded in-memory Log. It is used when no database is
// configured; the oldest entries are dropped once capacity is reached.
type Memory struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// NewMemory creates an in-memory log holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = MaxLimit
	}
	return &Memory{capacity: capacity}
}

// Record implements Log.
func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append([]Entry(nil), m.entries[over:]...)
	}
	return nil
}

// Recent implements Log. Entries are returned newest first.
func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	limit = clampLimit(limit)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, min(limit, len(m.entries)))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}
