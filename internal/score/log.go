package score

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"simulscore/internal/instance"
	"simulscore/internal/quality"
)

// ErrUnsupportedTarget is returned when log replay is requested for an
// output modality other than text.
var ErrUnsupportedTarget = errors.New("score: unsupported replay target type")

// TargetTypeText is the only output modality the replay path supports.
const TargetTypeText = "text"

// FromLog rebuilds a scorer purely from a persisted execution log: one JSON
// record per line, each deserialized into a replay instance keyed by its
// self-reported index. The resulting range is count-based — startIndex 0,
// endIndex the number of records — so well-formed logs are expected to be
// dense and zero-based; a duplicate index is rejected outright, and a gap
// surfaces later as an unknown-instance error during aggregation.
//
// The returned scorer has no corpus bound: it scores, but source delivery
// returns ErrNoCorpus.
func FromLog(path string, targetType string) (*Scorer, error) {
	if targetType != TargetTypeText {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, targetType)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	instances := make(map[int]instance.Instance)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		inst, err := instance.FromJSON(scanner.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if _, exists := instances[inst.Index()]; exists {
			return nil, fmt.Errorf("%s:%d: duplicate instance index %d", path, line, inst.Index())
		}
		instances[inst.Index()] = inst
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Scorer{
		quality:    quality.NewBLEU(quality.Tokenizer13a),
		kind:       instance.TextOutputReplay,
		startIndex: 0,
		endIndex:   len(instances),
		instances:  instances,
	}, nil
}
