package ms

// Filtering defaults. The SNR floor is a fixed part of the contract,
// not caller-tunable.
const (
	DefaultMinIntensity = 500.0
	filterSNRFloor      = 3.0
)

// FilterSample keeps the detected peaks passing both the intensity and
// SNR floors, writes them to FilteredPeaks, and advances the status.
// Returns the surviving-peak count.
func FilterSample(sample *Sample, minIntensity float64) int {
	var kept []Peak
	for _, pk := range sample.DetectedPeaks {
		if pk.Intensity >= minIntensity && pk.SNR >= filterSNRFloor {
			kept = append(kept, pk)
		}
	}
	sample.FilteredPeaks = kept
	sample.ProcessingStatus = StatusFiltered
	return len(kept)
}
