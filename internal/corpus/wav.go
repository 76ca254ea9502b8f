package corpus

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// readWAV decodes a RIFF/WAVE file holding 16-bit PCM audio. Multi-channel
// input is downmixed to mono by averaging. Only the canonical chunk layout
// is supported; compressed formats are rejected.
func readWAV(path string) (Utterance, error) {
	f, err := os.Open(path)
	if err != nil {
		return Utterance{}, err
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return Utterance{}, fmt.Errorf("%s: not a WAV file: %w", path, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Utterance{}, fmt.Errorf("%s: not a WAV file", path)
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		data          []byte
	)

	for {
		var header [8]byte
		if _, err := io.ReadFull(f, header[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return Utterance{}, err
		}
		chunkID := string(header[0:4])
		chunkSize := binary.LittleEndian.Uint32(header[4:8])

		switch chunkID {
		case "fmt ":
			fmtChunk := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, fmtChunk); err != nil {
				return Utterance{}, err
			}
			audioFormat := binary.LittleEndian.Uint16(fmtChunk[0:2])
			if audioFormat != 1 {
				return Utterance{}, fmt.Errorf("%s: unsupported WAV format %d, want PCM", path, audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
		case "data":
			data = make([]byte, chunkSize)
			if _, err := io.ReadFull(f, data); err != nil {
				return Utterance{}, err
			}
		default:
			// Chunks are word-aligned; skip unknown ones.
			skip := int64(chunkSize)
			if chunkSize%2 == 1 {
				skip++
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return Utterance{}, err
			}
		}

		if sampleRate != 0 && data != nil {
			break
		}
	}

	if sampleRate == 0 || data == nil {
		return Utterance{}, fmt.Errorf("%s: missing fmt or data chunk", path)
	}
	if bitsPerSample != 16 {
		return Utterance{}, fmt.Errorf("%s: unsupported sample width %d, want 16", path, bitsPerSample)
	}
	if channels < 1 {
		return Utterance{}, fmt.Errorf("%s: invalid channel count %d", path, channels)
	}

	frameSize := 2 * channels
	frames := len(data) / frameSize
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			raw := int16(binary.LittleEndian.Uint16(data[i*frameSize+ch*2:]))
			sum += float64(raw) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}

	return Utterance{Samples: samples, SampleRate: sampleRate}, nil
}
