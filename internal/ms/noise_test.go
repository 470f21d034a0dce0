package ms

import (
	"math"
	"testing"
)

func TestEstimateNoise(t *testing.T) {
	testCases := []struct {
		name        string
		intensities []float64
		expected    float64
	}{
		{"empty", nil, 100.0},
		{"too_few_peaks", []float64{500, 600, 700}, 100.0},
		{"all_zero", make([]float64, 20), 100.0},
		{
			// median of ten values 1000..10000 is 5500; *0.1 = 550.
			"median_scaled",
			[]float64{1000, 2000, 3000, 4000, 5000, 6000, 7000, 8000, 9000, 10000},
			550.0,
		},
		{
			// median 300 * 0.1 = 30, below the 50 floor.
			"floored_at_50",
			[]float64{100, 200, 300, 300, 300, 300, 300, 400, 500, 600},
			50.0,
		},
		{
			// zeros are excluded from the median, not counted as values.
			"zeros_excluded_from_median",
			[]float64{0, 0, 0, 0, 0, 6000, 6000, 6000, 6000, 6000},
			600.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := EstimateNoise(tc.intensities)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("EstimateNoise() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestEstimateNoiseIsPure(t *testing.T) {
	in := []float64{9000, 1000, 5000, 3000, 7000, 2000, 8000, 4000, 6000, 10000}
	orig := append([]float64(nil), in...)

	EstimateNoise(in)

	for i := range in {
		if in[i] != orig[i] {
			t.Fatalf("input mutated at %d: %v != %v", i, in[i], orig[i])
		}
	}
}

func TestPercentile(t *testing.T) {
	testCases := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"empty", nil, 25, 0},
		{"single", []float64{42}, 25, 42},
		{"quartile", []float64{1, 2, 3, 4, 5}, 25, 2},
		{"interpolated", []float64{10, 20}, 25, 12.5},
		{"min", []float64{3, 1, 2}, 0, 1},
		{"max", []float64{3, 1, 2}, 100, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := percentile(tc.values, tc.p)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("percentile(%v, %v) = %v, want %v", tc.values, tc.p, got, tc.expected)
			}
		})
	}
}
