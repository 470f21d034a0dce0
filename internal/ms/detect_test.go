package ms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// denseSpectrum returns a spectrum with eleven low peaks plus the given
// prominent ones, so it clears the hi-res size gate.
func denseSpectrum(rt float64, prominent ...RawPeak) Spectrum {
	peaks := make([]RawPeak, 0, 11+len(prominent))
	for i := 0; i < 11; i++ {
		peaks = append(peaks, RawPeak{MZ: 50 + float64(i), Intensity: 100})
	}
	peaks = append(peaks, prominent...)
	return Spectrum{RetentionTime: rt, MSLevel: 1, ScanNumber: 7, Peaks: peaks}
}

func TestHiResPickerSkipsSparseSpectra(t *testing.T) {
	p, err := NewHiResPicker(DefaultPickerOptions())
	require.NoError(t, err)

	spec := Spectrum{RetentionTime: 1, MSLevel: 1, Peaks: make([]RawPeak, 10)}
	for i := range spec.Peaks {
		spec.Peaks[i] = RawPeak{MZ: float64(100 + i), Intensity: 1e6}
	}
	assert.Empty(t, p.DetectPeaks(spec, 1000), "spectra with <=10 peaks must emit nothing")

	spec.Peaks = append(spec.Peaks, RawPeak{MZ: 111, Intensity: 1e6})
	assert.NotEmpty(t, p.DetectPeaks(spec, 1000), "11 peaks is enough")
}

func TestHiResPickerMinIntensityRule(t *testing.T) {
	p, err := NewHiResPicker(DefaultPickerOptions())
	require.NoError(t, err)

	// Noise floor: the filler peaks at 100 dominate the median, so the
	// estimate is 100*0.1 floored to 50. min_intensity = max(1000, 50*3).
	spec := denseSpectrum(2.5,
		RawPeak{MZ: 200.1, Intensity: 999},
		RawPeak{MZ: 200.2, Intensity: 1000},
		RawPeak{MZ: 200.3, Intensity: 5000},
	)
	got := p.DetectPeaks(spec, 1000)
	require.Len(t, got, 2)

	for _, pk := range got {
		assert.GreaterOrEqual(t, pk.Intensity, 1000.0,
			"no peak below max(noise_threshold, noise*3) may survive")
		assert.Equal(t, 2.5, pk.RetentionTime)
		assert.Equal(t, 7, pk.ScanNumber)
		assert.Equal(t, 1, pk.MSLevel)
	}
}

func TestHiResPickerNoiseMultiplierDominates(t *testing.T) {
	p, err := NewHiResPicker(DefaultPickerOptions())
	require.NoError(t, err)

	// Eleven peaks at 10000: noise = 10000*0.1 = 1000, so the cutoff is
	// noise*3 = 3000, above the caller threshold of 1000.
	spec := Spectrum{RetentionTime: 1, MSLevel: 1}
	for i := 0; i < 11; i++ {
		spec.Peaks = append(spec.Peaks, RawPeak{MZ: float64(100 + i), Intensity: 10000})
	}
	spec.Peaks = append(spec.Peaks, RawPeak{MZ: 120, Intensity: 2500})

	got := p.DetectPeaks(spec, 1000)
	for _, pk := range got {
		assert.GreaterOrEqual(t, pk.Intensity, 3000.0)
	}
}

func TestDetectedPeakSNRProperty(t *testing.T) {
	p, err := NewHiResPicker(DefaultPickerOptions())
	require.NoError(t, err)

	spec := denseSpectrum(1.0,
		RawPeak{MZ: 300.5, Intensity: 4000},
		RawPeak{MZ: 301.5, Intensity: 8000},
	)
	got := p.DetectPeaks(spec, 1000)
	require.NotEmpty(t, got)

	for _, pk := range got {
		denom := math.Max(pk.NoiseLevel, 1.0)
		assert.InDelta(t, pk.Intensity/denom, pk.SNR, 1e-9,
			"snr must equal intensity / max(noise, 1)")
	}
}

func TestHiResPickerOutputSortedByMZ(t *testing.T) {
	p, err := NewHiResPicker(DefaultPickerOptions())
	require.NoError(t, err)

	spec := denseSpectrum(1.0,
		RawPeak{MZ: 500.0, Intensity: 5000},
		RawPeak{MZ: 250.0, Intensity: 5000},
		RawPeak{MZ: 400.0, Intensity: 5000},
	)
	got := p.DetectPeaks(spec, 1000)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].MZ, got[i].MZ)
	}
}

func TestPercentilePicker(t *testing.T) {
	p := &PercentilePicker{}

	// Sparse spectra are NOT skipped on the degraded path.
	spec := Spectrum{RetentionTime: 3, MSLevel: 1, Peaks: []RawPeak{
		{MZ: 100, Intensity: 400},
		{MZ: 101, Intensity: 800},
		{MZ: 102, Intensity: 1200},
		{MZ: 103, Intensity: 2400},
	}}
	// 25th percentile of [400 800 1200 2400] = 700; cutoff =
	// max(1000, 700*2) = 1400.
	got := p.DetectPeaks(spec, 1000)
	require.Len(t, got, 1)
	assert.Equal(t, 2400.0, got[0].Intensity)
	assert.InDelta(t, 700.0, got[0].NoiseLevel, 1e-9)
	assert.InDelta(t, 2400.0/700.0, got[0].SNR, 1e-9)
}

func TestPercentilePickerEmptySpectrum(t *testing.T) {
	p := &PercentilePicker{}
	assert.Empty(t, p.DetectPeaks(Spectrum{}, 1000))
}

func TestNewPickerCapabilityProbe(t *testing.T) {
	testCases := []struct {
		name     string
		opts     PickerOptions
		wantPath string
	}{
		{"defaults_select_full_fidelity", DefaultPickerOptions(), PathFullFidelity},
		{"forced_degraded", PickerOptions{SignalToNoise: 1, SpacingDifference: 1.5, SpacingDifferenceGap: 4, ForceDegraded: true}, PathDegraded},
		{"invalid_snr_falls_back", PickerOptions{SignalToNoise: 0, SpacingDifference: 1.5, SpacingDifferenceGap: 4}, PathDegraded},
		{"invalid_spacing_falls_back", PickerOptions{SignalToNoise: 1, SpacingDifference: 5, SpacingDifferenceGap: 4}, PathDegraded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			picker := NewPicker(tc.opts)
			assert.Equal(t, tc.wantPath, picker.Path())
		})
	}
}

func TestDetectSample(t *testing.T) {
	p, err := NewHiResPicker(DefaultPickerOptions())
	require.NoError(t, err)

	sample := &Sample{
		FileName: "run_a.mzML",
		Spectra: []Spectrum{
			denseSpectrum(1.0, RawPeak{MZ: 200, Intensity: 5000}),
			{RetentionTime: 2.0, MSLevel: 1}, // malformed: no peak list
			denseSpectrum(3.0, RawPeak{MZ: 210, Intensity: 6000}),
		},
	}

	n := DetectSample(p, sample, 1000)
	assert.Equal(t, 2, n)
	assert.Len(t, sample.DetectedPeaks, 2)
	assert.Equal(t, StatusPeaksDetected, sample.ProcessingStatus)
}
