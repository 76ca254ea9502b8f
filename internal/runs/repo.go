// Package runs retains recently finished evaluation reports so a long-lived
// scoring server can serve result history per run id.
package runs

import (
	"sync"
	"time"

	"simulscore/internal/score"
	"simulscore/internal/utils"
)

// Entry is one retained report with its completion time.
type Entry struct {
	At     time.Time    `json:"at"`
	Report score.Report `json:"report"`
}

// Repository keeps a bounded history of evaluation reports per run id, with
// background cleanup of runs that stayed idle past the configured TTL.
//
// Usage:
//
//	repo := runs.NewRepository(16, time.Hour)
//	go repo.Serve() // start background cleanup
//	repo.Append("nightly", runs.Entry{At: time.Now(), Report: report})
type Repository struct {
	length int           // maximum reports retained per run id
	ttl    time.Duration // idle time after which a run's history is dropped

	reports map[string]*utils.RingBuffer[Entry]
	updates map[string]time.Time

	cleanTicker *time.Ticker
	mu          sync.RWMutex
}

// NewRepository creates a report repository. The cleanup ticker is created
// here, not in Serve, so Stop never races with a starting Serve goroutine.
// Parameters:
//   - length: maximum number of reports kept per run id (older ones are evicted).
//   - ttl: idle time after which a run's history is removed by Serve.
func NewRepository(length int, ttl time.Duration) *Repository {
	return &Repository{
		length:      length,
		ttl:         ttl,
		reports:     make(map[string]*utils.RingBuffer[Entry]),
		updates:     make(map[string]time.Time),
		cleanTicker: time.NewTicker(time.Minute),
	}
}

// Append records a finished report under the given run id, creating the
// run's buffer on first use. Thread-safe.
func (r *Repository) Append(id string, e Entry) {
	r.mu.RLock()
	buffer, found := r.reports[id]
	r.mu.RUnlock()

	if !found {
		r.mu.Lock()
		// Re-check under the write lock.
		if buffer, found = r.reports[id]; !found {
			buffer = utils.NewRingBuffer[Entry](r.length)
			r.reports[id] = buffer
		}
		r.mu.Unlock()
	}

	buffer.Push(e)

	r.mu.Lock()
	r.updates[id] = time.Now()
	r.mu.Unlock()
}

// Get returns a copy of the run's report history, oldest to newest.
// Returns (nil, false) when the run id is unknown.
func (r *Repository) Get(id string) ([]Entry, bool) {
	r.mu.RLock()
	buffer, found := r.reports[id]
	r.mu.RUnlock()
	if !found {
		return nil, false
	}
	return buffer.Snapshot(), true
}

// Serve blocks, periodically removing runs whose history has been idle
// longer than the TTL. Run it in its own goroutine:
//
//	go repo.Serve()
//
// Stop with Stop.
func (r *Repository) Serve() {
	for range r.cleanTicker.C {
		var outdated []string

		r.mu.RLock()
		now := time.Now()
		for id, ts := range r.updates {
			if now.Sub(ts) > r.ttl {
				outdated = append(outdated, id)
			}
		}
		r.mu.RUnlock()

		if len(outdated) > 0 {
			r.mu.Lock()
			for _, id := range outdated {
				delete(r.reports, id)
				delete(r.updates, id)
			}
			r.mu.Unlock()
		}
	}
}

// Stop cancels background cleanup. Safe to call even if Serve never ran.
func (r *Repository) Stop() {
	r.cleanTicker.Stop()
}
