package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParamsDefaults(t *testing.T) {
	testCases := []struct {
		name     string
		step     Step
		expected StepParams
	}{
		{"peak_detection", StepPeakDetection, PeakDetectionParams{NoiseThreshold: 1000}},
		{"alignment", StepAlignment, AlignmentParams{MZTolerance: 0.01, RTTolerance: 0.5}},
		{"statistics", StepStatistics, StatisticsParams{PValueThreshold: 0.05}},
		{"filtering", StepFiltering, FilteringParams{MinIntensity: 500}},
		{"normalization", StepNormalization, NormalizationParams{Method: "median"}},
		{"identification", StepIdentification, IdentificationParams{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Both a nil and an empty object must yield the defaults.
			got, err := DecodeParams(tc.step, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)

			got, err = DecodeParams(tc.step, json.RawMessage(`{}`))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDecodeParamsOverrides(t *testing.T) {
	got, err := DecodeParams(StepAlignment, json.RawMessage(`{"mz_tolerance": 0.005}`))
	require.NoError(t, err)
	assert.Equal(t, AlignmentParams{MZTolerance: 0.005, RTTolerance: 0.5}, got,
		"omitted keys keep their defaults")

	got, err = DecodeParams(StepPeakDetection, json.RawMessage(`{"noise_threshold": 2500}`))
	require.NoError(t, err)
	assert.Equal(t, PeakDetectionParams{NoiseThreshold: 2500}, got)

	got, err = DecodeParams(StepNormalization, json.RawMessage(`{"method": "mean"}`))
	require.NoError(t, err)
	assert.Equal(t, NormalizationParams{Method: "mean"}, got)
}

func TestDecodeParamsIgnoresForeignKeys(t *testing.T) {
	got, err := DecodeParams(StepStatistics, json.RawMessage(`{"mz_tolerance": 0.005, "p_value_threshold": 0.01}`))
	require.NoError(t, err)
	assert.Equal(t, StatisticsParams{PValueThreshold: 0.01}, got)
}

func TestDecodeParamsInvalidJSON(t *testing.T) {
	_, err := DecodeParams(StepStatistics, json.RawMessage(`{"p_value_threshold": "high"}`))
	assert.Error(t, err)
}

func TestParamsStepTags(t *testing.T) {
	assert.Equal(t, StepPeakDetection, PeakDetectionParams{}.Step())
	assert.Equal(t, StepAlignment, AlignmentParams{}.Step())
	assert.Equal(t, StepStatistics, StatisticsParams{}.Step())
	assert.Equal(t, StepFiltering, FilteringParams{}.Step())
	assert.Equal(t, StepNormalization, NormalizationParams{}.Step())
	assert.Equal(t, StepIdentification, IdentificationParams{}.Step())
}
