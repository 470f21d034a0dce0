package ms

import "sort"

const (
	// defaultNoiseLevel is returned when a spectrum is too sparse to
	// estimate a noise floor from.
	defaultNoiseLevel = 100.0

	// minNoiseLevel is the floor on any median-based estimate.
	minNoiseLevel = 50.0

	// medianNoiseScale converts the median positive intensity into a
	// noise-floor estimate.
	medianNoiseScale = 0.1
)

// EstimateNoise derives a noise-floor estimate from a spectrum's peak
// intensities: one tenth of the median positive intensity, floored at
// 50. Spectra with fewer than 10 peaks, or with no positive
// intensities, get the fixed default of 100.
func EstimateNoise(intensities []float64) float64 {
	if len(intensities) < 10 {
		return defaultNoiseLevel
	}
	positive := make([]float64, 0, len(intensities))
	for _, v := range intensities {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return defaultNoiseLevel
	}
	noise := median(positive) * medianNoiseScale
	if noise < minNoiseLevel {
		return minNoiseLevel
	}
	return noise
}

// median returns the middle value of vs, averaging the two central
// values for even lengths. vs is copied before sorting.
func median(vs []float64) float64 {
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile returns the p-th percentile (0-100) of vs using linear
// interpolation between closest ranks. vs is copied before sorting.
func percentile(vs []float64, p float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
