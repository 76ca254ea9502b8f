package instance

import (
	"fmt"

	"simulscore/internal/corpus"
)

// New constructs a live instance of the given kind bound to one corpus
// index. This is the single dispatch point for variant selection; the
// replay variant is not constructible here, it comes from FromJSON.
func New(kind Kind, index int, c corpus.Corpus, cfg Config) (Instance, error) {
	switch kind {
	case TextToText:
		src, ok := c.(corpus.TextSource)
		if !ok {
			return nil, fmt.Errorf("instance %d: corpus has no text source side", index)
		}
		return NewTextToText(index, src, cfg)
	case SpeechToText:
		src, ok := c.(corpus.AudioSource)
		if !ok {
			return nil, fmt.Errorf("instance %d: corpus has no audio source side", index)
		}
		return NewSpeechToText(index, src, cfg)
	default:
		return nil, fmt.Errorf("instance %d: kind %s is not constructible from a corpus", index, kind)
	}
}
