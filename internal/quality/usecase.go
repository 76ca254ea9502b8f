package quality

import "context"

// Score maps a metric name to its corpus-level value.
type Score map[string]float64

// Scorer computes a corpus-level quality score over parallel hypothesis and
// reference lists. Both lists must be index-aligned and equally long.
type Scorer interface {
	Score(ctx context.Context, hypotheses, references []string) (Score, error)
}
