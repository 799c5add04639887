package scalar

import (
	"math"
	"sort"
)

const (
	// throughputBpsThreshold separates already-converted Mbps values from
	// raw bit/s values. A median above it means the series is in bit/s.
	throughputBpsThreshold = 1e5

	// delaySecondsThreshold separates millisecond values from second
	// values. A median below it means the series is in seconds.
	delaySecondsThreshold = 10.0
)

// NormalizeThroughput returns the values in Mbps. Values are assumed to be
// in bit/s when their median exceeds throughputBpsThreshold, otherwise they
// are taken to be Mbps already and left unchanged. Non-finite values are
// dropped. The thresholds match the reference analysis tooling so results
// stay numerically comparable.
func NormalizeThroughput(values []float64) []float64 {
	vals := finite(values)
	if len(vals) == 0 {
		return nil
	}
	if median(vals) > throughputBpsThreshold {
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = v / 1e6
		}
		return out
	}
	return vals
}

// NormalizeDelay returns the values in milliseconds. Values are assumed to
// be in seconds when their median falls below delaySecondsThreshold,
// otherwise they are taken to be milliseconds already and left unchanged.
// Non-finite values are dropped.
func NormalizeDelay(values []float64) []float64 {
	vals := finite(values)
	if len(vals) == 0 {
		return nil
	}
	if median(vals) < delaySecondsThreshold {
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = v * 1000.0
		}
		return out
	}
	return vals
}

// finite filters out NaN and Inf values.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// median returns the median of a non-empty slice.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// mean returns the arithmetic mean of the finite values, or def when none
// remain.
func mean(values []float64, def float64) float64 {
	vals := finite(values)
	if len(vals) == 0 {
		return def
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sum returns the sum of the finite values.
func sum(values []float64) float64 {
	var s float64
	for _, v := range finite(values) {
		s += v
	}
	return s
}
