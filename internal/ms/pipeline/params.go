package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/metabolite.report/internal/ms"
)

// StepParams is the closed tagged variant over per-step parameter
// records. Each record carries its step's tunables with defaults
// already applied; the dispatcher switches exhaustively on the
// concrete type.
type StepParams interface {
	Step() Step
}

// PeakDetectionParams tunes the peak_detection step.
type PeakDetectionParams struct {
	NoiseThreshold float64
}

// AlignmentParams tunes the alignment step.
type AlignmentParams struct {
	MZTolerance float64
	RTTolerance float64
}

// StatisticsParams tunes the statistics step.
type StatisticsParams struct {
	PValueThreshold float64
}

// FilteringParams tunes the filtering step. The SNR floor is fixed by
// the stage contract and deliberately absent here.
type FilteringParams struct {
	MinIntensity float64
}

// NormalizationParams tunes the normalization step.
type NormalizationParams struct {
	Method string
}

// IdentificationParams carries no tunables; the identification stage
// is a stub with fixed limits.
type IdentificationParams struct{}

func (PeakDetectionParams) Step() Step  { return StepPeakDetection }
func (AlignmentParams) Step() Step      { return StepAlignment }
func (StatisticsParams) Step() Step     { return StepStatistics }
func (FilteringParams) Step() Step      { return StepFiltering }
func (NormalizationParams) Step() Step  { return StepNormalization }
func (IdentificationParams) Step() Step { return StepIdentification }

// DefaultParams returns the parameter record for a step with all
// defaults applied.
func DefaultParams(step Step) StepParams {
	switch step {
	case StepPeakDetection:
		return PeakDetectionParams{NoiseThreshold: ms.DefaultNoiseThreshold}
	case StepAlignment:
		return AlignmentParams{MZTolerance: ms.DefaultMZTolerance, RTTolerance: ms.DefaultRTTolerance}
	case StepStatistics:
		return StatisticsParams{PValueThreshold: ms.DefaultPValueThreshold}
	case StepFiltering:
		return FilteringParams{MinIntensity: ms.DefaultMinIntensity}
	case StepNormalization:
		return NormalizationParams{Method: ms.NormalizeMedian}
	case StepIdentification:
		return IdentificationParams{}
	}
	// Unreachable for the closed Step set.
	return nil
}

// rawParams mirrors the wire parameter object. Fields are pointers so
// omitted keys retain their defaults; partial parameter objects are
// safe.
type rawParams struct {
	NoiseThreshold  *float64 `json:"noise_threshold,omitempty"`
	MZTolerance     *float64 `json:"mz_tolerance,omitempty"`
	RTTolerance     *float64 `json:"rt_tolerance,omitempty"`
	PValueThreshold *float64 `json:"p_value_threshold,omitempty"`
	MinIntensity    *float64 `json:"min_intensity,omitempty"`
	Method          *string  `json:"method,omitempty"`
}

// DecodeParams merges a wire parameter object over the step's
// defaults. A nil or empty raw object yields the defaults unchanged;
// keys belonging to other steps are ignored.
func DecodeParams(step Step, raw json.RawMessage) (StepParams, error) {
	params := DefaultParams(step)
	if len(raw) == 0 {
		return params, nil
	}

	var rp rawParams
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("invalid parameters for step %s: %w", step, err)
	}

	switch p := params.(type) {
	case PeakDetectionParams:
		if rp.NoiseThreshold != nil {
			p.NoiseThreshold = *rp.NoiseThreshold
		}
		return p, nil
	case AlignmentParams:
		if rp.MZTolerance != nil {
			p.MZTolerance = *rp.MZTolerance
		}
		if rp.RTTolerance != nil {
			p.RTTolerance = *rp.RTTolerance
		}
		return p, nil
	case StatisticsParams:
		if rp.PValueThreshold != nil {
			p.PValueThreshold = *rp.PValueThreshold
		}
		return p, nil
	case FilteringParams:
		if rp.MinIntensity != nil {
			p.MinIntensity = *rp.MinIntensity
		}
		return p, nil
	case NormalizationParams:
		if rp.Method != nil {
			p.Method = *rp.Method
		}
		return p, nil
	case IdentificationParams:
		return p, nil
	}
	return params, nil
}
