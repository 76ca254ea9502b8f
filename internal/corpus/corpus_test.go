package corpus

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src.txt", "hello world\nsecond line\n")
	ref := writeFile(t, dir, "ref.txt", "hallo welt\nzweite zeile\n")

	c, err := LoadText(src, ref)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())

	source, err := c.Source(0)
	require.NoError(t, err)
	assert.Equal(t, "hello world", source)

	reference, err := c.Reference(1)
	require.NoError(t, err)
	assert.Equal(t, "zweite zeile", reference)
}

func TestLoadText_SizeMismatch(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src.txt", "one\ntwo\n")
	ref := writeFile(t, dir, "ref.txt", "eins\n")

	_, err := LoadText(src, ref)
	assert.Error(t, err)
}

func TestLoadText_MissingFile(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.txt", "eins\n")

	_, err := LoadText(filepath.Join(dir, "absent.txt"), ref)
	assert.Error(t, err)
}

func TestTextCorpus_IndexError(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src.txt", "one\n")
	ref := writeFile(t, dir, "ref.txt", "eins\n")

	c, err := LoadText(src, ref)
	require.NoError(t, err)

	_, err = c.Source(3)
	var indexErr *IndexError
	assert.ErrorAs(t, err, &indexErr)
	assert.Equal(t, 3, indexErr.Index)
}

// writeWAV emits a minimal canonical PCM16 file.
func writeWAV(t *testing.T, path string, rate int, samples []int16) {
	t.Helper()

	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestReadWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	writeWAV(t, path, 16000, []int16{0, 16384, -16384, 32767})

	utt, err := readWAV(path)
	require.NoError(t, err)

	assert.Equal(t, 16000, utt.SampleRate)
	require.Len(t, utt.Samples, 4)
	assert.InDelta(t, 0.0, utt.Samples[0], 1e-9)
	assert.InDelta(t, 0.5, utt.Samples[1], 1e-9)
	assert.InDelta(t, -0.5, utt.Samples[2], 1e-9)
}

func TestReadWAV_NotWAV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.wav", "definitely not audio")

	_, err := readWAV(path)
	assert.Error(t, err)
}

func TestLoadSpeech(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "u0.wav"), 8000, make([]int16, 80)) // 10ms
	list := writeFile(t, dir, "list.txt", "u0.wav\n")
	ref := writeFile(t, dir, "ref.txt", "hallo\n")

	c, err := LoadSpeech(list, ref)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())

	utt, err := c.Audio(0)
	require.NoError(t, err)
	assert.Equal(t, 8000, utt.SampleRate)
	assert.InDelta(t, 10.0, utt.DurationMs(), 1e-9)

	reference, err := c.Reference(0)
	require.NoError(t, err)
	assert.Equal(t, "hallo", reference)
}

func TestUtterance_DurationMs_ZeroRate(t *testing.T) {
	assert.Zero(t, Utterance{Samples: make([]float64, 100)}.DurationMs())
}
