package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/metabolite.report/internal/monitoring"
	"github.com/banshee-data/metabolite.report/internal/ms"
)

// Processor sequences the processing stages over a sample batch. Its
// configuration is immutable after construction; a single Processor is
// safe for concurrent invocations because every call operates only on
// its own batch.
type Processor struct {
	picker  ms.PeakPicker
	aligner ms.Aligner
}

// NewProcessor constructs a Processor around the given peak picker.
// A nil picker selects the default capability-probed one.
func NewProcessor(picker ms.PeakPicker) *Processor {
	if picker == nil {
		picker = ms.NewPicker(ms.DefaultPickerOptions())
	}
	return &Processor{
		picker:  picker,
		aligner: ms.GreedyAligner{},
	}
}

// AlgorithmPath reports which peak-detection path the processor was
// constructed with, for the health probe.
func (p *Processor) AlgorithmPath() string {
	return p.picker.Path()
}

// Result is the outcome of one processing invocation: the updated
// batch, step-specific counters (only the relevant ones serialize),
// and a human-readable message.
type Result struct {
	RunID string       `json:"runId"`
	Data  []*ms.Sample `json:"data"`

	PeaksDetected       *int `json:"peaksDetected,omitempty"`
	AlignedFeatures     *int `json:"alignedFeatures,omitempty"`
	TotalFeatures       *int `json:"totalFeatures,omitempty"`
	SignificantFeatures *int `json:"significantFeatures,omitempty"`
	FilteredPeaks       *int `json:"filteredPeaks,omitempty"`
	NormalizedPeaks     *int `json:"normalizedPeaks,omitempty"`
	CompoundsIdentified *int `json:"compoundsIdentified,omitempty"`

	Message string `json:"message"`
}

func counter(v int) *int { return &v }

// dropNilSamples excludes malformed (null) batch entries before any
// stage sees them. A nil sample is a per-item recoverable failure:
// logged and skipped, never fatal to the batch.
func dropNilSamples(step Step, samples []*ms.Sample) []*ms.Sample {
	kept := make([]*ms.Sample, 0, len(samples))
	dropped := 0
	for _, s := range samples {
		if s == nil {
			dropped++
			continue
		}
		kept = append(kept, s)
	}
	if dropped > 0 {
		monitoring.Logf("%s: dropped %d null sample records from batch of %d", step, dropped, len(samples))
	}
	return kept
}

// Process runs one stage over the batch. The stage is selected by the
// concrete type of params; recoverable per-item failures are handled
// inside the stages, so an error here means the whole stage failed and
// carries the step name.
func (p *Processor) Process(ctx context.Context, samples []*ms.Sample, params StepParams) (*Result, error) {
	samples = dropNilSamples(params.Step(), samples)
	res, err := p.dispatch(ctx, samples, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", params.Step(), err)
	}
	res.RunID = uuid.NewString()
	res.Data = samples
	return res, nil
}

func (p *Processor) dispatch(ctx context.Context, samples []*ms.Sample, params StepParams) (*Result, error) {
	switch sp := params.(type) {
	case PeakDetectionParams:
		return p.detectPeaks(ctx, samples, sp)
	case AlignmentParams:
		return p.alignPeaks(samples, sp)
	case StatisticsParams:
		return p.computeStatistics(samples, sp)
	case FilteringParams:
		return p.filterPeaks(samples, sp)
	case NormalizationParams:
		return p.normalizePeaks(samples, sp)
	case IdentificationParams:
		return p.identifyCompounds(samples)
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", params)
	}
}

// detectPeaks runs peak detection per sample. Samples are independent,
// so the work fans out across the batch; results land back on each
// sample's own record, keeping the output deterministic.
func (p *Processor) detectPeaks(ctx context.Context, samples []*ms.Sample, params PeakDetectionParams) (*Result, error) {
	counts := make([]int, len(samples))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range samples {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			counts[i] = ms.DetectSample(p.picker, s, params.NoiseThreshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	monitoring.Logf("peak detection: %d peaks across %d samples", total, len(samples))

	return &Result{
		PeaksDetected: counter(total),
		Message:       fmt.Sprintf("Detected %d peaks across %d samples", total, len(samples)),
	}, nil
}

func (p *Processor) alignPeaks(samples []*ms.Sample, params AlignmentParams) (*Result, error) {
	features := ms.AlignBatch(p.aligner, samples, params.MZTolerance, params.RTTolerance)
	monitoring.Logf("alignment: %d features across %d samples", len(features), len(samples))

	return &Result{
		AlignedFeatures: counter(len(features)),
		Message:         fmt.Sprintf("Aligned %d features across %d samples", len(features), len(samples)),
	}, nil
}

func (p *Processor) computeStatistics(samples []*ms.Sample, params StatisticsParams) (*Result, error) {
	engine := &ms.StatisticalEngine{PValueThreshold: params.PValueThreshold}
	results, significant := engine.ComputeStatistics(samples)
	monitoring.Logf("statistics: %d/%d features significant (FDR)", significant, len(results))

	return &Result{
		TotalFeatures:       counter(len(results)),
		SignificantFeatures: counter(significant),
		Message:             fmt.Sprintf("Statistical analysis completed: %d/%d significant features", significant, len(results)),
	}, nil
}

func (p *Processor) filterPeaks(samples []*ms.Sample, params FilteringParams) (*Result, error) {
	total := 0
	for _, s := range samples {
		total += ms.FilterSample(s, params.MinIntensity)
	}
	return &Result{
		FilteredPeaks: counter(total),
		Message:       fmt.Sprintf("Filtering kept %d peaks across %d samples", total, len(samples)),
	}, nil
}

func (p *Processor) normalizePeaks(samples []*ms.Sample, params NormalizationParams) (*Result, error) {
	total := 0
	for _, s := range samples {
		total += ms.NormalizeSample(s, params.Method)
	}
	return &Result{
		NormalizedPeaks: counter(total),
		Message:         fmt.Sprintf("Normalized %d peaks using %s scaling", total, params.Method),
	}, nil
}

func (p *Processor) identifyCompounds(samples []*ms.Sample) (*Result, error) {
	putative := 0
	for _, s := range samples {
		putative += ms.IdentifySample(s)
	}
	return &Result{
		CompoundsIdentified: counter(putative),
		Message:             fmt.Sprintf("Identified %d putative compounds across %d samples", putative, len(samples)),
	}, nil
}
