package corpus

import (
	"bufio"
	"fmt"
	"os"
)

// TextCorpus is an in-memory text corpus: a source sentence and a reference
// translation per index. Both sides are loaded eagerly; content is immutable
// after construction.
type TextCorpus struct {
	sources    []string
	references []string
}

// LoadText reads a parallel corpus from two files, one sentence per line.
// The files must hold the same number of lines.
func LoadText(sourcePath, referencePath string) (*TextCorpus, error) {
	sources, err := readLines(sourcePath)
	if err != nil {
		return nil, err
	}

	references, err := readLines(referencePath)
	if err != nil {
		return nil, err
	}

	if len(sources) != len(references) {
		return nil, fmt.Errorf("corpus sides differ: %d source lines, %d reference lines",
			len(sources), len(references))
	}

	return &TextCorpus{sources: sources, references: references}, nil
}

// Len returns the number of sentences in the corpus.
func (c *TextCorpus) Len() int {
	return len(c.sources)
}

// Source returns the source sentence at the given index.
func (c *TextCorpus) Source(index int) (string, error) {
	if index < 0 || index >= len(c.sources) {
		return "", &IndexError{Index: index, Size: len(c.sources)}
	}
	return c.sources[index], nil
}

// Reference returns the reference translation at the given index.
func (c *TextCorpus) Reference(index int) (string, error) {
	if index < 0 || index >= len(c.references) {
		return "", &IndexError{Index: index, Size: len(c.references)}
	}
	return c.references[index], nil
}

// readLines loads a whole file as a slice of lines. Scanner buffer is grown
// beyond the default so long sentences do not truncate the corpus.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
