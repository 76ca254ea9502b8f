// Package score owns corpus-level aggregation of simultaneous-translation
// evaluation: it drives source delivery to per-sentence instances and folds
// their terminal states into one quality/latency report.
package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"simulscore/internal/configuration"
	"simulscore/internal/corpus"
	"simulscore/internal/instance"
	"simulscore/internal/quality"
)

// ErrNoCorpus is returned when a live-path operation is invoked on a scorer
// that has no data source bound (a replay-built scorer).
var ErrNoCorpus = errors.New("score: no corpus bound")

// UnknownInstanceError is returned when an instance id falls outside the
// populated mapping. Caller misuse, never absorbed.
type UnknownInstanceError struct {
	ID int
}

// Error returns a textual description of the error.
func (e *UnknownInstanceError) Error() string {
	return "unknown instance id: " + strconv.Itoa(e.ID)
}

// Config carries the corpus-range and scoring parameters of one evaluation.
type Config struct {
	// StartIndex — first corpus index, inclusive.
	StartIndex int
	// EndIndex — end of the range, exclusive; negative means full corpus.
	EndIndex int
	// LatencyUnit — "word" or "char".
	LatencyUnit string
	// Tokenizer — BLEU tokenization scheme, default "13a".
	Tokenizer string
	// NoSpace — join hypothesis tokens without separators.
	NoSpace bool
	// SourceType — "speech" selects the speech variant, anything else text.
	SourceType string
	// Quality — optional scorer override; nil selects local BLEU with the
	// configured tokenizer.
	Quality quality.Scorer
}

// Report is the external scoring contract.
type Report struct {
	Quality quality.Score      `json:"Quality"`
	Latency map[string]float64 `json:"Latency"`
}

// Flatten merges both report halves into one metric→value mapping, as
// consumed by report checks.
func (r Report) Flatten() map[string]float64 {
	flat := make(map[string]float64, len(r.Quality)+len(r.Latency))
	for k, v := range r.Quality {
		flat[k] = v
	}
	for k, v := range r.Latency {
		flat[k] = v
	}
	return flat
}

// Scorer owns the instance mapping for a contiguous index range
// [startIndex, endIndex) and aggregates quality and latency across it.
// A scorer is either built live from a corpus (New) or rebuilt from a
// persisted execution log (FromLog); both paths score identically.
//
// Not safe for concurrent use; evaluation is single-threaded by design.
type Scorer struct {
	corp    corpus.Corpus
	quality quality.Scorer

	kind    instance.Kind
	instCfg instance.Config

	startIndex int
	endIndex   int
	instances  map[int]instance.Instance
}

// New constructs a live scorer over the given corpus and populates its
// instance mapping. A negative end index resolves to the corpus length.
func New(corp corpus.Corpus, cfg Config) (*Scorer, error) {
	if corp == nil {
		return nil, ErrNoCorpus
	}

	endIndex := cfg.EndIndex
	if endIndex < 0 {
		endIndex = corp.Len()
	}
	if cfg.StartIndex < 0 || cfg.StartIndex > endIndex || endIndex > corp.Len() {
		return nil, fmt.Errorf("score: invalid index range [%d, %d) over corpus of %d",
			cfg.StartIndex, endIndex, corp.Len())
	}

	kind := instance.TextToText
	if cfg.SourceType == configuration.SourceTypeSpeech {
		kind = instance.SpeechToText
	}

	q := cfg.Quality
	if q == nil {
		q = quality.NewBLEU(cfg.Tokenizer)
	}

	s := &Scorer{
		corp:    corp,
		quality: q,
		kind:    kind,
		instCfg: instance.Config{
			LatencyUnit: cfg.LatencyUnit,
			NoSpace:     cfg.NoSpace,
		},
		startIndex: cfg.StartIndex,
		endIndex:   endIndex,
	}

	if err := s.Reset(); err != nil {
		return nil, err
	}

	return s, nil
}

// Len returns the number of evaluated sentences.
func (s *Scorer) Len() int {
	return s.endIndex - s.startIndex
}

// StartIndex returns the first evaluated corpus index.
func (s *Scorer) StartIndex() int { return s.startIndex }

// EndIndex returns the end of the evaluated range, exclusive.
func (s *Scorer) EndIndex() int { return s.endIndex }

// Reset (re)populates the instance mapping with freshly constructed
// instances for every index in the configured range. Destructive: any
// accumulated instance state is discarded, with a warning when that happens.
func (s *Scorer) Reset() error {
	if s.corp == nil {
		return ErrNoCorpus
	}

	if len(s.instances) > 0 {
		slog.Warn("Resetting scorer, discarding instance state", "instances", len(s.instances))
	}

	instances := make(map[int]instance.Instance, s.Len())
	for i := s.startIndex; i < s.endIndex; i++ {
		inst, err := instance.New(s.kind, i, s.corp, s.instCfg)
		if err != nil {
			return err
		}
		instances[i] = inst
	}
	s.instances = instances

	return nil
}

// SendSource relays a source request of segmentSize units to the identified
// instance and stamps the instance id into the returned segment.
func (s *Scorer) SendSource(instanceID, segmentSize int) (instance.Segment, error) {
	if s.corp == nil {
		return instance.Segment{}, ErrNoCorpus
	}

	inst, ok := s.instances[instanceID]
	if !ok {
		return instance.Segment{}, &UnknownInstanceError{ID: instanceID}
	}

	seg := inst.SendSource(segmentSize)
	seg.InstanceID = instanceID
	return seg, nil
}

// RecvHypothesis relays target tokens to the identified instance.
func (s *Scorer) RecvHypothesis(instanceID int, tokens []string) error {
	inst, ok := s.instances[instanceID]
	if !ok {
		return &UnknownInstanceError{ID: instanceID}
	}

	inst.RecvHypothesis(tokens)
	return nil
}

// Finished reports whether the identified instance has a complete hypothesis.
func (s *Scorer) Finished(instanceID int) (bool, error) {
	inst, ok := s.instances[instanceID]
	if !ok {
		return false, &UnknownInstanceError{ID: instanceID}
	}
	return inst.Finished(), nil
}

// Record returns the execution-log record of the identified instance.
func (s *Scorer) Record(instanceID int) (instance.Record, error) {
	inst, ok := s.instances[instanceID]
	if !ok {
		return instance.Record{}, &UnknownInstanceError{ID: instanceID}
	}
	return inst.Record(), nil
}

// Records returns the execution-log records of all instances in index order.
func (s *Scorer) Records() ([]instance.Record, error) {
	records := make([]instance.Record, 0, s.Len())
	for i := s.startIndex; i < s.endIndex; i++ {
		inst, ok := s.instances[i]
		if !ok {
			return nil, &UnknownInstanceError{ID: i}
		}
		records = append(records, inst.Record())
	}
	return records, nil
}

// finalizeAll is the first phase of scoring: every instance whose hypothesis
// never saw the end-of-sequence marker is reported and forcibly finalized,
// so each one contributes a prediction and terminal metrics. Instances left
// with an empty prediction are reported separately but still scored.
// Warnings, never failures: incomplete data must not block scoring.
func (s *Scorer) finalizeAll() error {
	var unfinished []string
	for i := s.startIndex; i < s.endIndex; i++ {
		inst, ok := s.instances[i]
		if !ok {
			return &UnknownInstanceError{ID: i}
		}
		if !inst.Finished() {
			unfinished = append(unfinished, strconv.Itoa(i))
		}
	}

	if len(unfinished) > 0 {
		slog.Warn("Hypotheses without end-of-sequence marker, forcing evaluation",
			"instances", strings.Join(unfinished, ", "))
		for _, id := range unfinished {
			n, _ := strconv.Atoi(id)
			s.instances[n].Finalize()
		}
	}

	var empty []string
	for i := s.startIndex; i < s.endIndex; i++ {
		if s.instances[i].Prediction() == "" {
			empty = append(empty, strconv.Itoa(i))
		}
	}
	if len(empty) > 0 {
		slog.Warn("Empty hypotheses", "instances", strings.Join(empty, ", "))
	}

	return nil
}

// translations collects predictions in index order. Assumes finalizeAll ran.
func (s *Scorer) translations() []string {
	out := make([]string, 0, s.Len())
	for i := s.startIndex; i < s.endIndex; i++ {
		out = append(out, s.instances[i].Prediction())
	}
	return out
}

// references collects references in index order.
func (s *Scorer) references() []string {
	out := make([]string, 0, s.Len())
	for i := s.startIndex; i < s.endIndex; i++ {
		out = append(out, s.instances[i].Reference())
	}
	return out
}

// QualityScore computes the corpus-level quality score over the full
// prediction and reference lists.
func (s *Scorer) QualityScore(ctx context.Context) (quality.Score, error) {
	if err := s.finalizeAll(); err != nil {
		return nil, err
	}
	return s.quality.Score(ctx, s.translations(), s.references())
}

// latencyMetrics are aggregated for every corpus, in this order.
var latencyMetrics = []string{"AL", "AP", "DAL"}

// LatencyScore aggregates each latency metric as the unweighted arithmetic
// mean across all instances. The optional computation-aware and
// wall-clock-denominated families are reported when the first in-range
// instance carries them; metric-family membership is expected to be uniform
// across the corpus, and a divergent instance surfaces as an error rather
// than a silently skewed mean.
func (s *Scorer) LatencyScore() (map[string]float64, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("score: empty instance range")
	}
	if err := s.finalizeAll(); err != nil {
		return nil, err
	}

	first := s.instances[s.startIndex].Metrics()
	_, withCA := first["latency_ca"]
	_, withTime := first["latency_text_w_time"]

	results := make(map[string]float64)
	for _, metric := range latencyMetrics {
		mean, err := s.meanMetric("latency", metric)
		if err != nil {
			return nil, err
		}
		results[metric] = mean

		if withCA {
			mean, err = s.meanMetric("latency_ca", metric)
			if err != nil {
				return nil, err
			}
			results[metric+"_CA"] = mean
		}

		if withTime {
			mean, err = s.meanMetric("latency_text_w_time", metric)
			if err != nil {
				return nil, err
			}
			results[metric+" (Time in ms)"] = mean
		}
	}

	return results, nil
}

// meanMetric averages one metric of one family across all instances.
func (s *Scorer) meanMetric(family, metric string) (float64, error) {
	var sum float64
	for i := s.startIndex; i < s.endIndex; i++ {
		values, ok := s.instances[i].Metrics()[family]
		if !ok {
			return 0, fmt.Errorf("instance %d carries no %q metrics", i, family)
		}
		sum += values[metric]
	}
	return sum / float64(s.Len()), nil
}

// Score produces the combined report: corpus quality and mean latency.
func (s *Scorer) Score(ctx context.Context) (Report, error) {
	if err := s.finalizeAll(); err != nil {
		return Report{}, err
	}

	qs, err := s.quality.Score(ctx, s.translations(), s.references())
	if err != nil {
		return Report{}, err
	}

	ls, err := s.LatencyScore()
	if err != nil {
		return Report{}, err
	}

	return Report{Quality: qs, Latency: ls}, nil
}
