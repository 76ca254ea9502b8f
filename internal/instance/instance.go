// Package instance tracks the per-sentence state of an incremental
// translation exchange: how much source has been delivered, which target
// tokens arrived and when, and the terminal quality/latency inputs computed
// once the hypothesis is complete.
package instance

import (
	"fmt"
	"strings"
)

// EndOfSequence is the marker closing both the source stream and the
// hypothesis stream of an instance.
const EndOfSequence = "</s>"

// Kind selects the instance variant. The set is closed: variant dispatch
// happens once, in New, not in scattered type switches.
type Kind int

const (
	// TextToText — incremental text source, text hypothesis.
	TextToText Kind = iota
	// SpeechToText — incremental audio source, text hypothesis.
	SpeechToText
	// TextOutputReplay — text hypothesis rebuilt from a logged record;
	// carries no live source and is only constructible via FromJSON.
	TextOutputReplay
)

// String returns the kind name used in errors and logs.
func (k Kind) String() string {
	switch k {
	case TextToText:
		return "text-to-text"
	case SpeechToText:
		return "speech-to-text"
	case TextOutputReplay:
		return "text-output-replay"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Config carries the evaluation parameters an instance needs.
type Config struct {
	// LatencyUnit — "word" or "char"; selects the target-length unit used
	// by the latency metrics.
	LatencyUnit string
	// NoSpace — join hypothesis tokens without separators.
	NoSpace bool
	// SegmentSizeMs — audio milliseconds delivered per source request unit
	// (speech only, default 10).
	SegmentSizeMs int
}

// Metrics maps a metric family ("latency", "latency_ca",
// "latency_text_w_time") to its computed values (AL, AP, DAL).
type Metrics map[string]map[string]float64

// Segment is one source delivery response. InstanceID is stamped by the
// component relaying the request, not by the instance itself.
type Segment struct {
	InstanceID int    `json:"instance_id"`
	SegmentID  int    `json:"segment_id"`
	Segment    string `json:"segment,omitempty"`
	// Samples and SampleRate carry audio content for speech sources.
	Samples    []float64 `json:"samples,omitempty"`
	SampleRate int       `json:"sample_rate,omitempty"`
	Finished   bool      `json:"finished"`
}

// Record is the serialized form of a finished instance: one JSON object per
// log line. The replay path consumes exactly this shape.
type Record struct {
	Index        int       `json:"index"`
	Prediction   string    `json:"prediction"`
	Reference    string    `json:"reference"`
	Delays       []float64 `json:"delays"`
	Elapsed      []float64 `json:"elapsed"`
	SourceLength float64   `json:"source_length"`
	Finished     bool      `json:"finished"`
	Metrics      Metrics   `json:"metrics,omitempty"`
}

// Instance is one sentence-level evaluation unit.
//
// An instance is mutated only through SendSource and RecvHypothesis; once
// Finished reports true and Finalize has run, it is immutable and its
// Metrics are stable.
type Instance interface {
	// Index is the instance's position in the corpus.
	Index() int
	// Finished reports whether the hypothesis stream saw its
	// end-of-sequence marker (or Finalize forced completion).
	Finished() bool
	// Prediction is the hypothesis assembled so far.
	Prediction() string
	// Reference is the reference translation.
	Reference() string
	// Metrics returns the terminal metric families; nil until finalized.
	Metrics() Metrics
	// SendSource delivers the next source segment of the requested size.
	SendSource(segmentSize int) Segment
	// RecvHypothesis appends target tokens, recording the current source
	// position and elapsed wall time per token. The end-of-sequence marker
	// finalizes the instance.
	RecvHypothesis(tokens []string)
	// Finalize computes terminal metrics, forcing completion if the
	// end-of-sequence marker never arrived. Idempotent.
	Finalize()
	// Record serializes the instance for the execution log.
	Record() Record
}

// joinTokens assembles a hypothesis string according to the spacing rule.
func joinTokens(tokens []string, noSpace bool) string {
	if noSpace {
		return strings.Join(tokens, "")
	}
	return strings.Join(tokens, " ")
}

// targetLength computes the target length in the configured latency unit.
func targetLength(tokens []string, unit string) float64 {
	if unit == "char" {
		n := 0
		for _, tok := range tokens {
			n += len([]rune(tok))
		}
		return float64(n)
	}
	return float64(len(tokens))
}
