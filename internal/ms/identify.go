package ms

import "fmt"

// Identification stub limits. Spectral-library matching is out of
// scope; this stage only emits placeholder records so the client
// workflow can exercise the identification branch.
const (
	identifyMaxPeaks          = 50
	identifyPutativeIntensity = 10000.0
)

// IdentifySample emits a placeholder compound record for up to the
// first 50 detected peaks, flagging high-intensity peaks as putative
// identifications, and advances the status. Returns the putative count.
func IdentifySample(sample *Sample) int {
	peaks := sample.DetectedPeaks
	if len(peaks) > identifyMaxPeaks {
		peaks = peaks[:identifyMaxPeaks]
	}

	putative := 0
	compounds := make([]IdentifiedCompound, 0, len(peaks))
	for _, pk := range peaks {
		c := IdentifiedCompound{
			Name:          fmt.Sprintf("Unknown m/z %.4f @ %.2f", pk.MZ, pk.RetentionTime),
			MZ:            pk.MZ,
			RetentionTime: pk.RetentionTime,
			Intensity:     pk.Intensity,
		}
		if pk.Intensity > identifyPutativeIntensity {
			c.Putative = true
			putative++
		}
		compounds = append(compounds, c)
	}
	sample.IdentifiedCompounds = compounds
	sample.ProcessingStatus = StatusIdentified
	return putative
}
