// Package testutil provides shared test fixtures for the processing
// packages.
package testutil

import (
	"math/rand"

	"github.com/banshee-data/metabolite.report/internal/ms"
)

// Spectrum builds a spectrum at the given retention time whose peak
// list is the provided (mz, intensity) pairs.
func Spectrum(rt float64, pairs ...[2]float64) ms.Spectrum {
	peaks := make([]ms.RawPeak, len(pairs))
	for i, p := range pairs {
		peaks[i] = ms.RawPeak{MZ: p[0], Intensity: p[1]}
	}
	return ms.Spectrum{RetentionTime: rt, MSLevel: 1, ScanNumber: 1, Peaks: peaks}
}

// NoisySpectrum builds a spectrum with count low-intensity filler peaks
// around baseMZ plus the given prominent pairs, so size-gated code
// paths see a realistically dense scan. The filler is deterministic
// for a given seed.
func NoisySpectrum(rt, baseMZ float64, count int, seed int64, prominent ...[2]float64) ms.Spectrum {
	rng := rand.New(rand.NewSource(seed))
	peaks := make([]ms.RawPeak, 0, count+len(prominent))
	for i := 0; i < count; i++ {
		peaks = append(peaks, ms.RawPeak{
			MZ:        baseMZ + rng.Float64()*50,
			Intensity: 40 + rng.Float64()*20,
		})
	}
	for _, p := range prominent {
		peaks = append(peaks, ms.RawPeak{MZ: p[0], Intensity: p[1]})
	}
	return ms.Spectrum{RetentionTime: rt, MSLevel: 1, ScanNumber: 1, Peaks: peaks}
}

// DetectedSample builds a sample that already carries detected peaks,
// for exercising the post-detection stages directly.
func DetectedSample(name string, peaks ...ms.Peak) *ms.Sample {
	return &ms.Sample{
		FileName:         name,
		DetectedPeaks:    peaks,
		ProcessingStatus: ms.StatusPeaksDetected,
	}
}

// DetectedPeak builds a detected peak with a plausible SNR annotation
// against a noise floor of 100.
func DetectedPeak(mz, intensity, rt float64) ms.Peak {
	return ms.Peak{
		MZ:            mz,
		Intensity:     intensity,
		RetentionTime: rt,
		ScanNumber:    1,
		MSLevel:       1,
		SNR:           intensity / 100,
		NoiseLevel:    100,
	}
}
