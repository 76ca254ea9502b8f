package instance

import "math"

// Latency metrics over a delay sequence. delays[i] is the amount of source
// (words for text, milliseconds for speech) consumed before the i-th target
// token was emitted; srcLen and tgtLen are total lengths in the same units.
//
// All three functions return 0 for degenerate input (no delays, zero
// lengths) so that a forcibly finalized instance still aggregates cleanly.

// AverageLagging measures, in source units, how far the hypothesis trails
// the amount a fully in-sync system would have consumed. Summation stops at
// the first token emitted after the whole source was read.
func AverageLagging(delays []float64, srcLen, tgtLen float64) float64 {
	if len(delays) == 0 || srcLen == 0 || tgtLen == 0 {
		return 0
	}

	gamma := tgtLen / srcLen
	var al float64
	tau := 0
	for t, d := range delays {
		al += d - float64(t)/gamma
		tau = t + 1
		if d >= srcLen {
			break
		}
	}

	return al / float64(tau)
}

// AverageProportion is the normalized area under the delay curve: the mean
// fraction of source consumed per emitted token.
func AverageProportion(delays []float64, srcLen, tgtLen float64) float64 {
	if len(delays) == 0 || srcLen == 0 || tgtLen == 0 {
		return 0
	}

	var sum float64
	for _, d := range delays {
		sum += d
	}

	return sum / (srcLen * tgtLen)
}

// DifferentiableAverageLagging is the smoothed AL variant: each effective
// delay is at least the previous one plus the minimum per-token source cost,
// which removes AL's discontinuity at the source boundary.
func DifferentiableAverageLagging(delays []float64, srcLen, tgtLen float64) float64 {
	if len(delays) == 0 || srcLen == 0 || tgtLen == 0 {
		return 0
	}

	rate := srcLen / tgtLen
	var dal, prev float64
	for i, d := range delays {
		var g float64
		if i == 0 {
			g = d
		} else {
			g = math.Max(d, prev+rate)
		}
		dal += g - float64(i)*rate
		prev = g
	}

	return dal / float64(len(delays))
}

// evalLatency computes the full metric family for one delay sequence.
func evalLatency(delays []float64, srcLen, tgtLen float64) map[string]float64 {
	return map[string]float64{
		"AL":  AverageLagging(delays, srcLen, tgtLen),
		"AP":  AverageProportion(delays, srcLen, tgtLen),
		"DAL": DifferentiableAverageLagging(delays, srcLen, tgtLen),
	}
}
