package corpus

import (
	"fmt"
	"path/filepath"
)

// SpeechCorpus is a corpus whose source side is a list of audio files, one
// utterance per index. Audio is decoded on demand; references are loaded
// eagerly like the text corpus.
type SpeechCorpus struct {
	paths      []string
	references []string
}

// LoadSpeech reads a speech corpus: sourceListPath holds one audio file path
// per line, referencePath one reference translation per line. Relative audio
// paths are resolved against the directory of the list file.
func LoadSpeech(sourceListPath, referencePath string) (*SpeechCorpus, error) {
	paths, err := readLines(sourceListPath)
	if err != nil {
		return nil, err
	}

	references, err := readLines(referencePath)
	if err != nil {
		return nil, err
	}

	if len(paths) != len(references) {
		return nil, fmt.Errorf("corpus sides differ: %d audio paths, %d reference lines",
			len(paths), len(references))
	}

	base := filepath.Dir(sourceListPath)
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			paths[i] = filepath.Join(base, p)
		}
	}

	return &SpeechCorpus{paths: paths, references: references}, nil
}

// Len returns the number of utterances in the corpus.
func (c *SpeechCorpus) Len() int {
	return len(c.paths)
}

// Audio decodes and returns the utterance at the given index.
func (c *SpeechCorpus) Audio(index int) (Utterance, error) {
	if index < 0 || index >= len(c.paths) {
		return Utterance{}, &IndexError{Index: index, Size: len(c.paths)}
	}
	return readWAV(c.paths[index])
}

// Reference returns the reference translation at the given index.
func (c *SpeechCorpus) Reference(index int) (string, error) {
	if index < 0 || index >= len(c.references) {
		return "", &IndexError{Index: index, Size: len(c.references)}
	}
	return c.references[index], nil
}
