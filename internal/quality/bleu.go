package quality

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const maxOrder = 4

// BLEUScorer computes corpus-level BLEU: clipped n-gram precision up to
// order 4 with a brevity penalty, aggregated over the whole corpus rather
// than averaged per sentence. Zero precisions are smoothed by successive
// halving so short corpora still score.
type BLEUScorer struct {
	tokenizer string
}

// NewBLEU creates a BLEU scorer with the given tokenization scheme
// ("13a", "char" or "none").
func NewBLEU(tokenizer string) *BLEUScorer {
	if tokenizer == "" {
		tokenizer = Tokenizer13a
	}
	return &BLEUScorer{tokenizer: tokenizer}
}

// Score computes corpus BLEU on a 0–100 scale under the key "BLEU".
// The hypothesis and reference lists must be equally long; scoring an empty
// corpus is an error, while empty hypothesis strings are valid input.
func (b *BLEUScorer) Score(_ context.Context, hypotheses, references []string) (Score, error) {
	if len(hypotheses) != len(references) {
		return nil, fmt.Errorf("bleu: %d hypotheses against %d references",
			len(hypotheses), len(references))
	}
	if len(hypotheses) == 0 {
		return nil, fmt.Errorf("bleu: empty corpus")
	}

	var sysLen, refLen int
	correct := make([]int, maxOrder)
	total := make([]int, maxOrder)

	for i := range hypotheses {
		hyp, err := tokenize(b.tokenizer, hypotheses[i])
		if err != nil {
			return nil, err
		}
		ref, err := tokenize(b.tokenizer, references[i])
		if err != nil {
			return nil, err
		}

		sysLen += len(hyp)
		refLen += len(ref)

		for n := 1; n <= maxOrder; n++ {
			hypGrams := countNgrams(hyp, n)
			if len(hypGrams) == 0 {
				continue
			}
			refGrams := countNgrams(ref, n)
			for gram, cnt := range hypGrams {
				total[n-1] += cnt
				if rc := refGrams[gram]; rc > 0 {
					correct[n-1] += min(cnt, rc)
				}
			}
		}
	}

	return Score{"BLEU": computeBLEU(correct, total, sysLen, refLen)}, nil
}

// computeBLEU folds the corpus counts into the final score.
func computeBLEU(correct, total []int, sysLen, refLen int) float64 {
	if sysLen == 0 {
		return 0
	}

	smooth := 1.0
	var logSum float64
	order := 0
	for n := 0; n < maxOrder; n++ {
		if total[n] == 0 {
			break
		}
		order = n + 1

		var p float64
		if correct[n] == 0 {
			smooth *= 2
			p = 100.0 / (smooth * float64(total[n]))
		} else {
			p = 100.0 * float64(correct[n]) / float64(total[n])
		}
		logSum += math.Log(p)
	}
	if order == 0 {
		return 0
	}

	brevity := 1.0
	if sysLen < refLen {
		brevity = math.Exp(1 - float64(refLen)/float64(sysLen))
	}

	return brevity * math.Exp(logSum/float64(order))
}

// countNgrams counts the n-grams of order n in tokens.
func countNgrams(tokens []string, n int) map[string]int {
	if len(tokens) < n {
		return nil
	}
	counts := make(map[string]int, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}
