package pipeline

import "fmt"

// Step is the closed set of processing steps. The string form is the
// wire name accepted by the external interface; internal callers
// dispatch on typed parameter records, so an unknown step can only
// arise at the boundary where ParseStep validates it.
type Step int

const (
	StepPeakDetection Step = iota
	StepAlignment
	StepStatistics
	StepFiltering
	StepNormalization
	StepIdentification
)

var stepNames = map[Step]string{
	StepPeakDetection:  "peak_detection",
	StepAlignment:      "alignment",
	StepStatistics:     "statistics",
	StepFiltering:      "filtering",
	StepNormalization:  "normalization",
	StepIdentification: "identification",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ParseStep maps a wire step name to its Step, rejecting unknown names.
func ParseStep(name string) (Step, error) {
	for s, n := range stepNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown processing step %q", name)
}
