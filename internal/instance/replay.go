package instance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TextOutputInstance is a text hypothesis rebuilt from one execution-log
// line. It carries no live source: source delivery returns an empty finished
// segment and hypothesis delivery is ignored.
type TextOutputInstance struct {
	rec     Record
	metrics Metrics
}

// FromJSON deserializes one log line into a replay instance.
func FromJSON(line []byte) (*TextOutputInstance, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("instance record: %w", err)
	}

	return &TextOutputInstance{rec: rec, metrics: rec.Metrics}, nil
}

// Index returns the index the record reported for itself.
func (i *TextOutputInstance) Index() int { return i.rec.Index }

// Finished reports whether the logged hypothesis was complete.
func (i *TextOutputInstance) Finished() bool { return i.rec.Finished }

// Prediction returns the logged hypothesis.
func (i *TextOutputInstance) Prediction() string { return i.rec.Prediction }

// Reference returns the logged reference translation.
func (i *TextOutputInstance) Reference() string { return i.rec.Reference }

// Metrics returns the logged metric families, or the families recomputed by
// Finalize when the record carried none.
func (i *TextOutputInstance) Metrics() Metrics { return i.metrics }

// SendSource is a no-op: a replay instance has no source bound.
func (i *TextOutputInstance) SendSource(segmentSize int) Segment {
	return Segment{Finished: true}
}

// RecvHypothesis is a no-op: a replay instance is immutable.
func (i *TextOutputInstance) RecvHypothesis(tokens []string) {}

// Finalize adopts the logged metrics, or recomputes the token-position
// family from the logged delays when the record predates metric logging.
// Idempotent.
func (i *TextOutputInstance) Finalize() {
	if i.metrics != nil {
		i.rec.Finished = true
		return
	}

	tgtLen := float64(len(strings.Fields(i.rec.Prediction)))
	i.metrics = Metrics{
		"latency": evalLatency(i.rec.Delays, i.rec.SourceLength, tgtLen),
	}
	i.rec.Finished = true
}

// Record returns the logged record, with recomputed metrics folded in.
func (i *TextOutputInstance) Record() Record {
	rec := i.rec
	rec.Metrics = i.metrics
	return rec
}
