// Package ms implements the core processing stages for untargeted
// mass-spectrometry sample batches: noise estimation, peak detection,
// cross-sample feature alignment, differential statistics, and the
// auxiliary filtering, normalization, and identification branches.
//
// The package operates on a batch of Sample records. Each stage reads
// the cumulative state left by earlier stages, writes its output back
// onto the samples, and advances the processing status marker. Wire
// names match the upstream JSON format consumed by the web client.
package ms

// ProcessingStatus marks the last pipeline stage applied to a sample.
type ProcessingStatus string

const (
	StatusPeaksDetected ProcessingStatus = "peaks_detected"
	StatusAligned       ProcessingStatus = "aligned"
	StatusStatsComplete ProcessingStatus = "statistics_completed"
	StatusFiltered      ProcessingStatus = "filtered"
	StatusNormalized    ProcessingStatus = "normalized"
	StatusIdentified    ProcessingStatus = "identified"
)

// RawPeak is a single (m/z, intensity) observation inside a spectrum,
// before any noise filtering.
type RawPeak struct {
	MZ        float64 `json:"mz"`
	Intensity float64 `json:"intensity"`
}

// Spectrum is one scan's worth of raw observations. Peaks are not
// required to be sorted by m/z; stages that care sort internally.
type Spectrum struct {
	RetentionTime float64   `json:"retentionTime"`
	MSLevel       int       `json:"msLevel"`
	ScanNumber    int       `json:"scanNumber"`
	Peaks         []RawPeak `json:"peaks"`
}

// Peak is a detected peak. It is immutable once created by the peak
// detector; alignment attaches a feature id on a copy, never in place.
type Peak struct {
	MZ            float64 `json:"mz"`
	Intensity     float64 `json:"intensity"`
	RetentionTime float64 `json:"retentionTime"`
	ScanNumber    int     `json:"scanNumber"`
	MSLevel       int     `json:"msLevel"`
	SNR           float64 `json:"snr"`
	NoiseLevel    float64 `json:"noiseLevel"`
	FeatureID     string  `json:"featureId,omitempty"`
}

// SamplePeak tags a detected peak with the sample it came from, for
// pooling across a batch.
type SamplePeak struct {
	Peak
	SampleIndex int    `json:"sampleIndex"`
	SampleName  string `json:"sampleName"`
}

// AlignedFeature is a consensus signal grouping peaks from at least two
// distinct samples within m/z and retention-time tolerance. The feature
// owns copies of its contributing peaks; the per-sample aligned peak is
// a projection back into this set carrying the feature id.
type AlignedFeature struct {
	ID            string       `json:"id"`
	MZ            float64      `json:"mz"`
	RT            float64      `json:"rt"`
	IntensityMean float64      `json:"intensity_mean"`
	IntensityStd  float64      `json:"intensity_std"`
	CV            float64      `json:"cv"`
	SampleCount   int          `json:"sample_count"`
	Peaks         []SamplePeak `json:"peaks"`
}

// StatisticalResult holds the differential-testing outcome for one
// aligned feature, including the multiple-testing-corrected p-values.
type StatisticalResult struct {
	FeatureID  string  `json:"featureId"`
	MZ         float64 `json:"mz"`
	RT         float64 `json:"rt"`
	PValue     float64 `json:"pValue"`
	TStatistic float64 `json:"tStatistic"`
	UStatistic float64 `json:"uStatistic"`
	UPValue    float64 `json:"uPValue"`

	FoldChange     float64 `json:"foldChange"`
	Log2FoldChange float64 `json:"log2FoldChange"`
	CohensD        float64 `json:"cohensD"`

	Group1Mean float64 `json:"group1Mean"`
	Group2Mean float64 `json:"group2Mean"`
	Group1Std  float64 `json:"group1Std"`
	Group2Std  float64 `json:"group2Std"`

	Significant           bool    `json:"significant"`
	PValueFDR             float64 `json:"pValueFDR"`
	PValueBonferroni      float64 `json:"pValueBonferroni"`
	SignificantFDR        bool    `json:"significantFDR"`
	SignificantBonferroni bool    `json:"significantBonferroni"`
}

// IdentifiedCompound is a placeholder identification record. Real
// spectral-library matching is out of scope; the identification stage
// only emits stub records.
type IdentifiedCompound struct {
	Name          string  `json:"name"`
	MZ            float64 `json:"mz"`
	RetentionTime float64 `json:"retentionTime"`
	Intensity     float64 `json:"intensity"`
	MatchScore    float64 `json:"matchScore"`
	Putative      bool    `json:"putative"`
}

// Sample is one input file's worth of data. FileName is the primary key
// across the whole pipeline. The slices accumulate as stages run.
type Sample struct {
	FileName            string               `json:"fileName"`
	Spectra             []Spectrum           `json:"spectra,omitempty"`
	DetectedPeaks       []Peak               `json:"detectedPeaks,omitempty"`
	AlignedPeaks        []SamplePeak         `json:"alignedPeaks,omitempty"`
	FilteredPeaks       []Peak               `json:"filteredPeaks,omitempty"`
	NormalizedPeaks     []Peak               `json:"normalizedPeaks,omitempty"`
	IdentifiedCompounds []IdentifiedCompound `json:"identifiedCompounds,omitempty"`
	StatisticalResults  []StatisticalResult  `json:"statisticalResults,omitempty"`
	ProcessingStatus    ProcessingStatus     `json:"processingStatus,omitempty"`
}
