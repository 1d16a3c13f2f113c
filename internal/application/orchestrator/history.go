package orchestrator

import (
	"sync"
	"time"

	"github.com/doeshing/apex/internal/domain"
)

// History is the in-memory, append-only log of processed utterances.
// The zero value is ready to use and safe for concurrent callers.
type History struct {
	mu      sync.Mutex
	records []domain.OutcomeRecord
}

// append stamps the record under the lock so timestamps follow append order.
func (h *History) append(rec domain.OutcomeRecord, now func() time.Time) domain.OutcomeRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec.Timestamp = now()
	if n := len(h.records); n > 0 && rec.Timestamp.Before(h.records[n-1].Timestamp) {
		rec.Timestamp = h.records[n-1].Timestamp
	}
	h.records = append(h.records, rec)
	return rec
}

// Records returns a copy of the history in call order.
func (h *History) Records() []domain.OutcomeRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]domain.OutcomeRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of recorded outcomes.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}
