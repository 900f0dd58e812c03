package qc

import (
	"math"
	"sort"
)

// madConsistency rescales the median absolute deviation so it estimates the
// standard deviation of normally distributed data.
const madConsistency = 0.6745

// window extracts the centered window of size w around index i, returning
// false when the series boundary truncates it. w must be odd.
func window(vals []float64, i, w int) ([]float64, bool) {
	half := w / 2
	if i-half < 0 || i+half >= len(vals) {
		return nil, false
	}
	return vals[i-half : i+half+1], true
}

// median returns the median of the non-missing values in w, and false when
// every value is missing.
func median(w []float64) (float64, bool) {
	clean := make([]float64, 0, len(w))
	for _, v := range w {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0, false
	}
	sort.Float64s(clean)
	mid := len(clean) / 2
	if len(clean)%2 == 1 {
		return clean[mid], true
	}
	return (clean[mid-1] + clean[mid]) / 2, true
}

// madZScore computes the MAD-based z-score of v within the window. A zero
// MAD (flatline-like window) yields z = 0: flatlines are a separate check,
// not spikes, and dividing by zero would manufacture false positives.
func madZScore(w []float64, v float64) float64 {
	med, ok := median(w)
	if !ok {
		return 0
	}
	dev := make([]float64, 0, len(w))
	for _, x := range w {
		if !math.IsNaN(x) {
			dev = append(dev, math.Abs(x-med))
		}
	}
	mad, ok := median(dev)
	if !ok || mad == 0 {
		return 0
	}
	return madConsistency * (v - med) / mad
}

// fullVariance returns the population variance of the window, and false when
// any value is missing: a window with holes is not evidence of a flatline.
func fullVariance(w []float64) (float64, bool) {
	sum := 0.0
	for _, v := range w {
		if math.IsNaN(v) {
			return 0, false
		}
		sum += v
	}
	mean := sum / float64(len(w))
	ss := 0.0
	for _, v := range w {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(w)), true
}
