package ms

import (
	"fmt"
	"sort"

	"github.com/banshee-data/metabolite.report/internal/monitoring"
)

// Algorithm path names reported by the health probe.
const (
	PathFullFidelity = "full_fidelity"
	PathDegraded     = "degraded"
)

// DefaultNoiseThreshold is the minimum-intensity parameter applied when
// the caller does not override it.
const DefaultNoiseThreshold = 1000.0

// PeakPicker filters a spectrum's raw observations into an annotated
// peak list. Implementations differ in how they estimate the noise
// floor; the surviving-peak contract is shared: only peaks with
// intensity >= max(noiseThreshold, noise*multiplier) are emitted, each
// annotated with snr = intensity / max(noise, 1).
type PeakPicker interface {
	// DetectPeaks returns the surviving peaks for one spectrum. A
	// malformed spectrum (no peak list) contributes zero peaks.
	DetectPeaks(spec Spectrum, noiseThreshold float64) []Peak

	// Path identifies which algorithm path this picker implements,
	// PathFullFidelity or PathDegraded.
	Path() string
}

// PickerOptions tunes the full-fidelity picker. The zero value is not
// valid; use DefaultPickerOptions.
type PickerOptions struct {
	// SignalToNoise is the minimum SNR the hi-res picker is configured
	// for. Must be positive.
	SignalToNoise float64

	// SpacingDifference and SpacingDifferenceGap bound the m/z spacing
	// irregularity tolerated between adjacent raw points. Both must be
	// positive and Gap must not be smaller than SpacingDifference.
	SpacingDifference    float64
	SpacingDifferenceGap float64

	// ForceDegraded skips the full-fidelity path entirely and selects
	// the percentile fallback picker.
	ForceDegraded bool
}

// DefaultPickerOptions mirrors the production tuning of the hi-res
// peak picker.
func DefaultPickerOptions() PickerOptions {
	return PickerOptions{
		SignalToNoise:        1.0,
		SpacingDifference:    1.5,
		SpacingDifferenceGap: 4.0,
	}
}

// NewPicker is the capability probe: it attempts to construct the
// full-fidelity picker and falls back to the degraded percentile picker
// when the options do not validate or degraded mode is forced. The
// selected path is fixed for the life of the picker; callers branch on
// Path() only for reporting, never per call.
func NewPicker(opts PickerOptions) PeakPicker {
	if opts.ForceDegraded {
		monitoring.Logf("peak picker: degraded path forced by configuration")
		return &PercentilePicker{}
	}
	p, err := NewHiResPicker(opts)
	if err != nil {
		monitoring.Logf("peak picker: full-fidelity path unavailable (%v), using degraded fallback", err)
		return &PercentilePicker{}
	}
	return p
}

// HiResPicker is the full-fidelity peak detector. It sorts each
// spectrum by m/z, estimates the noise floor from the median positive
// intensity, and applies a 3x noise multiplier. Spectra with 10 or
// fewer peaks are skipped entirely.
type HiResPicker struct {
	opts PickerOptions
}

// hiResMinPeaks is the spectrum size below which the hi-res picker
// refuses to estimate noise and emits nothing.
const hiResMinPeaks = 10

// hiResNoiseMultiplier scales the noise floor into the minimum
// intensity cutoff on the full-fidelity path.
const hiResNoiseMultiplier = 3.0

// NewHiResPicker validates opts and returns the full-fidelity picker.
func NewHiResPicker(opts PickerOptions) (*HiResPicker, error) {
	if opts.SignalToNoise <= 0 {
		return nil, fmt.Errorf("signal_to_noise must be positive, got %g", opts.SignalToNoise)
	}
	if opts.SpacingDifference <= 0 || opts.SpacingDifferenceGap <= 0 {
		return nil, fmt.Errorf("spacing parameters must be positive, got %g/%g",
			opts.SpacingDifference, opts.SpacingDifferenceGap)
	}
	if opts.SpacingDifferenceGap < opts.SpacingDifference {
		return nil, fmt.Errorf("spacing_difference_gap %g smaller than spacing_difference %g",
			opts.SpacingDifferenceGap, opts.SpacingDifference)
	}
	return &HiResPicker{opts: opts}, nil
}

func (p *HiResPicker) Path() string { return PathFullFidelity }

func (p *HiResPicker) DetectPeaks(spec Spectrum, noiseThreshold float64) []Peak {
	if len(spec.Peaks) <= hiResMinPeaks {
		return nil
	}

	sorted := append([]RawPeak(nil), spec.Peaks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MZ < sorted[j].MZ })

	intensities := make([]float64, len(sorted))
	for i, rp := range sorted {
		intensities[i] = rp.Intensity
	}
	noise := EstimateNoise(intensities)

	return filterPeaks(sorted, spec, noise, noiseThreshold, hiResNoiseMultiplier)
}

// PercentilePicker is the degraded fallback detector for raw,
// unordered peak pools with no noise model available. The noise floor
// is the 25th percentile of intensities and the multiplier is loosened
// to 2x.
type PercentilePicker struct{}

const degradedNoiseMultiplier = 2.0

func (p *PercentilePicker) Path() string { return PathDegraded }

func (p *PercentilePicker) DetectPeaks(spec Spectrum, noiseThreshold float64) []Peak {
	if len(spec.Peaks) == 0 {
		return nil
	}

	intensities := make([]float64, len(spec.Peaks))
	for i, rp := range spec.Peaks {
		intensities[i] = rp.Intensity
	}
	noise := percentile(intensities, 25)
	if noise <= 0 {
		noise = defaultNoiseLevel
	}

	return filterPeaks(spec.Peaks, spec, noise, noiseThreshold, degradedNoiseMultiplier)
}

// filterPeaks applies the shared minimum-intensity rule and SNR
// annotation to raw peaks from one spectrum.
func filterPeaks(raw []RawPeak, spec Spectrum, noise, noiseThreshold, multiplier float64) []Peak {
	minIntensity := noiseThreshold
	if floor := noise * multiplier; floor > minIntensity {
		minIntensity = floor
	}

	var out []Peak
	for _, rp := range raw {
		if rp.Intensity < minIntensity {
			continue
		}
		snrDenom := noise
		if snrDenom < 1.0 {
			snrDenom = 1.0
		}
		out = append(out, Peak{
			MZ:            rp.MZ,
			Intensity:     rp.Intensity,
			RetentionTime: spec.RetentionTime,
			ScanNumber:    spec.ScanNumber,
			MSLevel:       spec.MSLevel,
			SNR:           rp.Intensity / snrDenom,
			NoiseLevel:    noise,
		})
	}
	return out
}

// DetectSample runs the picker over every spectrum of one sample,
// concatenating the surviving peaks and advancing the processing
// status. Spectra without a peak list are skipped silently.
func DetectSample(picker PeakPicker, sample *Sample, noiseThreshold float64) int {
	var detected []Peak
	for _, spec := range sample.Spectra {
		if len(spec.Peaks) == 0 {
			continue
		}
		detected = append(detected, picker.DetectPeaks(spec, noiseThreshold)...)
	}
	sample.DetectedPeaks = detected
	sample.ProcessingStatus = StatusPeaksDetected
	return len(detected)
}
