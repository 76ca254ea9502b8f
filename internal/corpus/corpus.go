package corpus

import "fmt"

// Corpus supplies reference translations by sentence index and reports its
// own length. Len is the single source of truth when the evaluated range is
// configured open-ended.
type Corpus interface {
	Len() int
	Reference(index int) (string, error)
}

// TextSource is a corpus whose source side is text, one sentence per index.
type TextSource interface {
	Corpus
	Source(index int) (string, error)
}

// AudioSource is a corpus whose source side is audio, one utterance per index.
type AudioSource interface {
	Corpus
	Audio(index int) (Utterance, error)
}

// Utterance holds one decoded audio source.
type Utterance struct {
	// Samples — mono PCM samples normalized to [-1.0, 1.0]
	Samples []float64
	// SampleRate — samples per second
	SampleRate int
}

// DurationMs returns the utterance length in milliseconds.
func (u Utterance) DurationMs() float64 {
	if u.SampleRate == 0 {
		return 0
	}
	return float64(len(u.Samples)) / float64(u.SampleRate) * 1000
}

// IndexError is returned when a sentence index falls outside the corpus.
type IndexError struct {
	Index int
	Size  int
}

// Error returns a textual description of the error.
func (e *IndexError) Error() string {
	return fmt.Sprintf("corpus index %d out of range [0, %d)", e.Index, e.Size)
}
