package instance

import (
	"time"

	"simulscore/internal/corpus"
)

// defaultSegmentSizeMs is the audio span delivered per source request unit
// when the configuration leaves it unset.
const defaultSegmentSizeMs = 10

// SpeechToTextInstance drives one utterance of incremental speech-to-text
// evaluation. Source audio is handed out in fixed-duration segments; delays
// are measured in milliseconds of consumed audio, and the computation-aware
// family is measured in elapsed wall-clock milliseconds.
type SpeechToTextInstance struct {
	index     int
	reference string
	cfg       Config

	samples    []float64
	sampleRate int
	durationMs float64
	read       int // samples delivered so far
	segmentID  int

	predictions []string
	delays      []float64
	elapsed     []float64

	started            bool
	startTime          time.Time
	finishedRead       bool
	finishedPrediction bool

	metrics Metrics
}

// NewSpeechToText binds a fresh instance to one corpus index. The utterance
// is decoded eagerly so delivery never fails mid-stream.
func NewSpeechToText(index int, src corpus.AudioSource, cfg Config) (*SpeechToTextInstance, error) {
	utt, err := src.Audio(index)
	if err != nil {
		return nil, err
	}

	reference, err := src.Reference(index)
	if err != nil {
		return nil, err
	}

	if cfg.SegmentSizeMs <= 0 {
		cfg.SegmentSizeMs = defaultSegmentSizeMs
	}

	return &SpeechToTextInstance{
		index:      index,
		reference:  reference,
		cfg:        cfg,
		samples:    utt.Samples,
		sampleRate: utt.SampleRate,
		durationMs: utt.DurationMs(),
	}, nil
}

// Index returns the corpus index.
func (i *SpeechToTextInstance) Index() int { return i.index }

// Finished reports whether the hypothesis stream is closed.
func (i *SpeechToTextInstance) Finished() bool { return i.finishedPrediction }

// Prediction returns the hypothesis assembled so far.
func (i *SpeechToTextInstance) Prediction() string {
	return joinTokens(i.predictions, i.cfg.NoSpace)
}

// Reference returns the reference translation.
func (i *SpeechToTextInstance) Reference() string { return i.reference }

// Metrics returns the terminal metric families; nil until finalized.
func (i *SpeechToTextInstance) Metrics() Metrics { return i.metrics }

// SendSource returns the next segmentSize units of audio, each unit spanning
// the configured number of milliseconds. The final segment is flagged; later
// calls return an empty finished segment.
func (i *SpeechToTextInstance) SendSource(segmentSize int) Segment {
	i.touch()

	seg := Segment{SegmentID: i.segmentID, SampleRate: i.sampleRate}
	i.segmentID++

	if i.finishedRead {
		seg.Finished = true
		return seg
	}

	if segmentSize < 1 {
		segmentSize = 1
	}
	span := segmentSize * i.cfg.SegmentSizeMs * i.sampleRate / 1000
	if span < 1 {
		span = 1
	}
	end := i.read + span
	if end >= len(i.samples) {
		end = len(i.samples)
		i.finishedRead = true
		seg.Finished = true
	}

	seg.Samples = i.samples[i.read:end]
	i.read = end

	return seg
}

// RecvHypothesis appends target tokens. Each token records the milliseconds
// of audio consumed as its delay and the wall time since the first exchange.
// The end-of-sequence marker closes the stream and computes terminal metrics.
func (i *SpeechToTextInstance) RecvHypothesis(tokens []string) {
	if i.finishedPrediction {
		return
	}
	i.touch()

	now := i.elapsedMs()
	for _, tok := range tokens {
		if tok == EndOfSequence {
			i.Finalize()
			return
		}
		i.predictions = append(i.predictions, tok)
		i.delays = append(i.delays, i.consumedMs())
		i.elapsed = append(i.elapsed, now)
	}
}

// Finalize computes terminal metrics, forcing completion when the hypothesis
// stream never closed. Idempotent.
func (i *SpeechToTextInstance) Finalize() {
	if i.metrics != nil {
		return
	}
	i.finishedPrediction = true

	tgtLen := targetLength(i.predictions, i.cfg.LatencyUnit)

	i.metrics = Metrics{
		"latency":    evalLatency(i.delays, i.durationMs, tgtLen),
		"latency_ca": evalLatency(i.elapsed, i.durationMs, tgtLen),
	}
}

// Record serializes the instance for the execution log.
func (i *SpeechToTextInstance) Record() Record {
	return Record{
		Index:        i.index,
		Prediction:   i.Prediction(),
		Reference:    i.reference,
		Delays:       i.delays,
		Elapsed:      i.elapsed,
		SourceLength: i.durationMs,
		Finished:     i.finishedPrediction,
		Metrics:      i.metrics,
	}
}

func (i *SpeechToTextInstance) consumedMs() float64 {
	if i.sampleRate == 0 {
		return 0
	}
	return float64(i.read) / float64(i.sampleRate) * 1000
}

func (i *SpeechToTextInstance) touch() {
	if !i.started {
		i.started = true
		i.startTime = time.Now()
	}
}

func (i *SpeechToTextInstance) elapsedMs() float64 {
	if !i.started {
		return 0
	}
	return float64(time.Since(i.startTime)) / float64(time.Millisecond)
}
