package instance

import (
	"strings"
	"time"

	"simulscore/internal/corpus"
)

// TextToTextInstance drives one sentence of incremental text-to-text
// evaluation. Source words are handed out in segments; each received
// hypothesis token records how many source words had been read by then.
type TextToTextInstance struct {
	index     int
	reference string
	cfg       Config

	sourceWords []string
	step        int // source words delivered so far
	segmentID   int

	predictions []string
	delays      []float64
	elapsed     []float64

	started            bool
	startTime          time.Time
	finishedRead       bool
	finishedPrediction bool
	readDoneMs         float64 // wall clock ms from start until the source was exhausted

	metrics Metrics
}

// NewTextToText binds a fresh instance to one corpus index.
func NewTextToText(index int, src corpus.TextSource, cfg Config) (*TextToTextInstance, error) {
	source, err := src.Source(index)
	if err != nil {
		return nil, err
	}

	reference, err := src.Reference(index)
	if err != nil {
		return nil, err
	}

	return &TextToTextInstance{
		index:       index,
		reference:   reference,
		cfg:         cfg,
		sourceWords: strings.Fields(source),
	}, nil
}

// Index returns the corpus index.
func (i *TextToTextInstance) Index() int { return i.index }

// Finished reports whether the hypothesis stream is closed.
func (i *TextToTextInstance) Finished() bool { return i.finishedPrediction }

// Prediction returns the hypothesis assembled so far.
func (i *TextToTextInstance) Prediction() string {
	return joinTokens(i.predictions, i.cfg.NoSpace)
}

// Reference returns the reference translation.
func (i *TextToTextInstance) Reference() string { return i.reference }

// Metrics returns the terminal metric families; nil until finalized.
func (i *TextToTextInstance) Metrics() Metrics { return i.metrics }

// SendSource returns the next segmentSize source words. The final segment
// carries the end-of-sequence marker; further calls return only the marker.
func (i *TextToTextInstance) SendSource(segmentSize int) Segment {
	i.touch()

	seg := Segment{SegmentID: i.segmentID}
	i.segmentID++

	if i.finishedRead {
		seg.Segment = EndOfSequence
		seg.Finished = true
		return seg
	}

	if segmentSize < 1 {
		segmentSize = 1
	}
	end := i.step + segmentSize
	if end >= len(i.sourceWords) {
		end = len(i.sourceWords)
		i.finishedRead = true
		i.readDoneMs = i.elapsedMs()
	}

	words := i.sourceWords[i.step:end]
	i.step = end

	seg.Segment = strings.Join(words, " ")
	if i.finishedRead {
		if seg.Segment == "" {
			seg.Segment = EndOfSequence
		} else {
			seg.Segment += " " + EndOfSequence
		}
		seg.Finished = true
	}

	return seg
}

// RecvHypothesis appends target tokens. Each token records the current read
// position as its delay and the wall time since the first exchange. The
// end-of-sequence marker closes the stream and computes terminal metrics.
func (i *TextToTextInstance) RecvHypothesis(tokens []string) {
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
		i.delays = append(i.delays, float64(i.step))
		i.elapsed = append(i.elapsed, now)
	}
}

// Finalize computes terminal metrics. When called before the hypothesis
// stream closed (forced recovery) the instance is marked finished with
// whatever tokens arrived. Idempotent.
func (i *TextToTextInstance) Finalize() {
	if i.metrics != nil {
		return
	}
	i.finishedPrediction = true

	srcLen := float64(len(i.sourceWords))
	tgtLen := targetLength(i.predictions, i.cfg.LatencyUnit)

	i.metrics = Metrics{
		"latency": evalLatency(i.delays, srcLen, tgtLen),
		// Wall-clock variant of the same family; zero when the instance
		// never consumed its source.
		"latency_text_w_time": evalLatency(i.elapsed, i.readDoneMs, tgtLen),
	}
}

// Record serializes the instance for the execution log.
func (i *TextToTextInstance) Record() Record {
	return Record{
		Index:        i.index,
		Prediction:   i.Prediction(),
		Reference:    i.reference,
		Delays:       i.delays,
		Elapsed:      i.elapsed,
		SourceLength: float64(len(i.sourceWords)),
		Finished:     i.finishedPrediction,
		Metrics:      i.metrics,
	}
}

func (i *TextToTextInstance) touch() {
	if !i.started {
		i.started = true
		i.startTime = time.Now()
	}
}

func (i *TextToTextInstance) elapsedMs() float64 {
	if !i.started {
		return 0
	}
	return float64(time.Since(i.startTime)) / float64(time.Millisecond)
}
