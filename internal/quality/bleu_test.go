package quality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize13a_Punctuation(t *testing.T) {
	assert.Equal(t, []string{"hello", ",", "world", "!"}, tokenize13a("hello, world!"))
	// Apostrophes are not split by the 13a scheme.
	assert.Equal(t, []string{"it's"}, tokenize13a("it's"))
}

func TestTokenize13a_DigitsKeepSeparators(t *testing.T) {
	// Periods and commas inside numbers stay attached.
	assert.Equal(t, []string{"1,000.5"}, tokenize13a("1,000.5"))
	// A trailing period after a digit is followed by a space, so it splits.
	assert.Equal(t, []string{"costs", "3", "euros", "."}, tokenize13a("costs 3 euros."))
}

func TestTokenize13a_Entities(t *testing.T) {
	assert.Equal(t, []string{`"`, "quoted", `"`}, tokenize13a("&quot;quoted&quot;"))
}

func TestTokenizeChar(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, tokenizeChar("ab c"))
	assert.Equal(t, []string{"你", "好"}, tokenizeChar("你好"))
}

func TestTokenize_UnsupportedScheme(t *testing.T) {
	_, err := tokenize("v14", "text")
	assert.Error(t, err)
}

func TestBLEUScorer_Score_Identical(t *testing.T) {
	scorer := NewBLEU(Tokenizer13a)

	refs := []string{"the cat sat on the mat", "a quick brown fox", "hello, world!"}
	score, err := scorer.Score(context.Background(), refs, refs)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, score["BLEU"], 1e-9, "identical corpus should score 100")
}

func TestBLEUScorer_Score_Deterministic(t *testing.T) {
	scorer := NewBLEU(Tokenizer13a)

	hyps := []string{"the cat sat", "a fox jumps"}
	refs := []string{"the cat sat on the mat", "a quick brown fox"}

	first, err := scorer.Score(context.Background(), hyps, refs)
	require.NoError(t, err)
	second, err := scorer.Score(context.Background(), hyps, refs)
	require.NoError(t, err)

	assert.Equal(t, first, second, "scoring twice must be deterministic")
}

func TestBLEUScorer_Score_PartialMatch(t *testing.T) {
	scorer := NewBLEU(Tokenizer13a)

	score, err := scorer.Score(context.Background(),
		[]string{"the cat sat on a mat"},
		[]string{"the cat sat on the mat"})
	require.NoError(t, err)
	assert.Greater(t, score["BLEU"], 0.0)
	assert.Less(t, score["BLEU"], 100.0)
}

func TestBLEUScorer_Score_EmptyHypotheses(t *testing.T) {
	scorer := NewBLEU(Tokenizer13a)

	score, err := scorer.Score(context.Background(),
		[]string{"", ""},
		[]string{"a b c", "d e f"})
	require.NoError(t, err, "empty hypotheses are valid input")
	assert.Equal(t, 0.0, score["BLEU"])
}

func TestBLEUScorer_Score_EmptyCorpus(t *testing.T) {
	scorer := NewBLEU(Tokenizer13a)

	_, err := scorer.Score(context.Background(), nil, nil)
	assert.Error(t, err, "an empty corpus cannot be scored")
}

func TestBLEUScorer_Score_LengthMismatch(t *testing.T) {
	scorer := NewBLEU(Tokenizer13a)

	_, err := scorer.Score(context.Background(), []string{"a"}, []string{"a", "b"})
	assert.Error(t, err)
}

func TestBLEUScorer_Score_CharTokenizer(t *testing.T) {
	scorer := NewBLEU(TokenizerChar)

	refs := []string{"你好世界", "今天天气好"}
	score, err := scorer.Score(context.Background(), refs, refs)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, score["BLEU"], 1e-9)
}

func TestNewBLEU_DefaultTokenizer(t *testing.T) {
	scorer := NewBLEU("")
	assert.Equal(t, Tokenizer13a, scorer.tokenizer)
}
