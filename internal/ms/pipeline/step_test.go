package pipeline

import "testing"

func TestParseStep(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  Step
		expectErr bool
	}{
		{"peak_detection", "peak_detection", StepPeakDetection, false},
		{"alignment", "alignment", StepAlignment, false},
		{"statistics", "statistics", StepStatistics, false},
		{"filtering", "filtering", StepFiltering, false},
		{"normalization", "normalization", StepNormalization, false},
		{"identification", "identification", StepIdentification, false},
		{"unknown", "baseline_correction", 0, true},
		{"empty", "", 0, true},
		{"case_sensitive", "Alignment", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStep(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("expected error for %q, got step %v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("ParseStep(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestStepStringRoundTrip(t *testing.T) {
	steps := []Step{
		StepPeakDetection, StepAlignment, StepStatistics,
		StepFiltering, StepNormalization, StepIdentification,
	}
	for _, s := range steps {
		parsed, err := ParseStep(s.String())
		if err != nil {
			t.Errorf("ParseStep(%q) failed: %v", s.String(), err)
			continue
		}
		if parsed != s {
			t.Errorf("round trip %v -> %q -> %v", s, s.String(), parsed)
		}
	}
}
