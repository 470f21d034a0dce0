package ms

// Normalization methods.
const (
	NormalizeMedian = "median"
	NormalizeMean   = "mean"
)

// normalizationScale rescales factor-divided intensities into a common
// range across samples.
const normalizationScale = 1e6

// NormalizationFactor computes the per-sample scaling divisor for the
// given method over the sample's detected peak intensities. An
// unrecognized method, an empty peak list, or a non-positive factor
// degrade to 1.0 (no-op).
func NormalizationFactor(sample *Sample, method string) float64 {
	if len(sample.DetectedPeaks) == 0 {
		return 1.0
	}
	intensities := make([]float64, len(sample.DetectedPeaks))
	for i, pk := range sample.DetectedPeaks {
		intensities[i] = pk.Intensity
	}

	var factor float64
	switch method {
	case NormalizeMedian:
		factor = median(intensities)
	case NormalizeMean:
		sum := 0.0
		for _, v := range intensities {
			sum += v
		}
		factor = sum / float64(len(intensities))
	default:
		return 1.0
	}
	if factor <= 0 {
		return 1.0
	}
	return factor
}

// NormalizeSample scales the sample's detected peak intensities by
// intensity/factor*1e6, writes the result to NormalizedPeaks, and
// advances the status. Returns the peak count.
func NormalizeSample(sample *Sample, method string) int {
	factor := NormalizationFactor(sample, method)
	normalized := make([]Peak, len(sample.DetectedPeaks))
	for i, pk := range sample.DetectedPeaks {
		pk.Intensity = pk.Intensity / factor * normalizationScale
		normalized[i] = pk
	}
	sample.NormalizedPeaks = normalized
	sample.ProcessingStatus = StatusNormalized
	return len(normalized)
}
