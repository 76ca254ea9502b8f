package runs

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"simulscore/internal/quality"
	"simulscore/internal/score"
)

func entry(bleu float64) Entry {
	return Entry{
		At: time.Now(),
		Report: score.Report{
			Quality: quality.Score{"BLEU": bleu},
			Latency: map[string]float64{"AL": 2.0},
		},
	}
}

func TestNewRepository(t *testing.T) {
	length := 5
	ttl := 10 * time.Minute

	repo := NewRepository(length, ttl)

	assert.Equal(t, length, repo.length, "length should match")
	assert.Equal(t, ttl, repo.ttl, "ttl should match")
	assert.NotNil(t, repo.reports, "reports map should be initialized")
	assert.Empty(t, repo.reports, "reports map should be empty initially")
	assert.NotNil(t, repo.cleanTicker, "cleanup ticker is created up front")
}

func TestRepository_Append(t *testing.T) {
	repo := NewRepository(2, 0)

	e1 := entry(10)
	e2 := entry(20)
	e3 := entry(30)

	repo.Append("nightly", e1)
	repo.Append("nightly", e2)

	entries, ok := repo.Get("nightly")
	assert.True(t, ok, "expected history for nightly to exist")
	assert.Len(t, entries, 2)
	assert.Equal(t, e1, entries[0], "first entry should match")
	assert.Equal(t, e2, entries[1], "second entry should match")

	// A third report must displace the oldest.
	repo.Append("nightly", e3)

	entries, _ = repo.Get("nightly")
	assert.Len(t, entries, 2)
	assert.Equal(t, e2, entries[0])
	assert.Equal(t, e3, entries[1])
}

func TestRepository_Get(t *testing.T) {
	repo := NewRepository(3, 0)

	e1 := entry(10)
	e2 := entry(20)

	repo.Append("nightly", e1)
	repo.Append("nightly", e2)

	entries, ok := repo.Get("nightly")
	assert.True(t, ok, "expected Get to return true for existing run")
	assert.Equal(t, []Entry{e1, e2}, entries)

	_, ok = repo.Get("weekly")
	assert.False(t, ok, "expected Get to return false for unknown run")
}

func TestRepository_RunsAreIsolated(t *testing.T) {
	repo := NewRepository(3, 0)

	repo.Append("nightly", entry(10))
	repo.Append("weekly", entry(20))

	nightly, ok := repo.Get("nightly")
	assert.True(t, ok)
	assert.Len(t, nightly, 1)

	weekly, ok := repo.Get("weekly")
	assert.True(t, ok)
	assert.Len(t, weekly, 1)
	assert.NotEqual(t, nightly[0].Report.Quality, weekly[0].Report.Quality)
}

func TestRepository_ConcurrentAppend(t *testing.T) {
	repo := NewRepository(100, 0)
	iterations := 200

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				repo.Append(id, entry(float64(j)))
			}
		}(strconv.Itoa(i))
	}

	wg.Wait()

	for i := 0; i < 10; i++ {
		id := strconv.Itoa(i)
		entries, ok := repo.Get(id)
		assert.True(t, ok, "expected history for run %s to exist", id)
		assert.NotEmpty(t, entries, "expected non-empty history for run %s", id)
		last := entries[len(entries)-1]
		assert.Equal(t, float64(iterations-1), last.Report.Quality["BLEU"],
			"last report should match for run %s", id)
	}
}

func TestRepository_Stop(t *testing.T) {
	repo := NewRepository(3, time.Minute)
	assert.NotPanics(t, func() { repo.Stop() }, "Stop without Serve must be safe")
}

func TestRepository_StopDuringServe(t *testing.T) {
	repo := NewRepository(3, time.Minute)

	go repo.Serve()
	assert.NotPanics(t, func() { repo.Stop() }, "Stop must be safe while Serve is starting")
}
