package ms

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Default alignment tolerances.
const (
	DefaultMZTolerance = 0.01
	DefaultRTTolerance = 0.5
)

// Aligner clusters a pooled, sample-tagged peak list into consensus
// features. Implementations must be deterministic for identical input
// batches and tolerances.
type Aligner interface {
	// Align returns the aligned features for the pooled batch. An empty
	// peak list yields an empty feature set.
	Align(peaks []SamplePeak, mzTolerance, rtTolerance float64) []AlignedFeature
}

// GreedyAligner implements single-pass greedy interval clustering over
// the globally m/z-sorted peak list. The algorithm is order-dependent
// and deliberately not optimal bipartite matching: a candidate peak
// joins the current group when its m/z and retention-time deviations
// from the group's running means are both within tolerance, otherwise
// the group is closed and a new one seeded. Groups spanning fewer than
// two distinct samples are discarded.
//
// The pass over the sorted list is inherently sequential; downstream
// feature ids and group membership depend on its ordering.
type GreedyAligner struct{}

func (GreedyAligner) Align(peaks []SamplePeak, mzTolerance, rtTolerance float64) []AlignedFeature {
	if len(peaks) == 0 {
		return nil
	}

	sorted := append([]SamplePeak(nil), peaks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.MZ != b.MZ {
			return a.MZ < b.MZ
		}
		if a.RetentionTime != b.RetentionTime {
			return a.RetentionTime < b.RetentionTime
		}
		if a.SampleName != b.SampleName {
			return a.SampleName < b.SampleName
		}
		return a.Intensity < b.Intensity
	})

	var features []AlignedFeature
	group := []SamplePeak{sorted[0]}
	mzSum := sorted[0].MZ
	rtSum := sorted[0].RetentionTime

	for _, pk := range sorted[1:] {
		n := float64(len(group))
		mzMean := mzSum / n
		rtMean := rtSum / n

		if math.Abs(pk.MZ-mzMean) <= mzTolerance && math.Abs(pk.RetentionTime-rtMean) <= rtTolerance {
			group = append(group, pk)
			mzSum += pk.MZ
			rtSum += pk.RetentionTime
			continue
		}

		if f, ok := finalizeFeature(group); ok {
			features = append(features, f)
		}
		group = []SamplePeak{pk}
		mzSum = pk.MZ
		rtSum = pk.RetentionTime
	}
	if f, ok := finalizeFeature(group); ok {
		features = append(features, f)
	}
	return features
}

// finalizeFeature turns a closed group into an AlignedFeature, or
// reports false when the group does not span two distinct samples.
func finalizeFeature(group []SamplePeak) (AlignedFeature, bool) {
	samples := make(map[string]struct{}, len(group))
	for _, pk := range group {
		samples[pk.SampleName] = struct{}{}
	}
	if len(samples) < 2 {
		return AlignedFeature{}, false
	}

	mzs := make([]float64, len(group))
	rts := make([]float64, len(group))
	intensities := make([]float64, len(group))
	for i, pk := range group {
		mzs[i] = pk.MZ
		rts[i] = pk.RetentionTime
		intensities[i] = pk.Intensity
	}

	mean, std := stat.PopMeanStdDev(intensities, nil)
	cv := 0.0
	if mean != 0 {
		cv = std / mean
	}

	// Id derived from group size and seed m/z. Deterministic for a
	// given input ordering; not globally unique across invocations.
	return AlignedFeature{
		ID:            fmt.Sprintf("feature_%d_%.4f", len(group), group[0].MZ),
		MZ:            stat.Mean(mzs, nil),
		RT:            stat.Mean(rts, nil),
		IntensityMean: mean,
		IntensityStd:  std,
		CV:            cv,
		SampleCount:   len(samples),
		Peaks:         group,
	}, true
}

// PoolPeaks collects every detected peak across the batch, tagged with
// its originating sample.
func PoolPeaks(samples []*Sample) []SamplePeak {
	var pooled []SamplePeak
	for i, s := range samples {
		for _, pk := range s.DetectedPeaks {
			pooled = append(pooled, SamplePeak{
				Peak:        pk,
				SampleIndex: i,
				SampleName:  s.FileName,
			})
		}
	}
	return pooled
}

// ProjectAlignedPeaks extracts, for one sample, its representative peak
// from each feature it contributed to: the maximum-intensity
// contribution, stamped with the feature id. Ordering follows the
// feature list.
func ProjectAlignedPeaks(features []AlignedFeature, sampleName string) []SamplePeak {
	var aligned []SamplePeak
	for _, f := range features {
		best := -1
		for i, pk := range f.Peaks {
			if pk.SampleName != sampleName {
				continue
			}
			if best < 0 || pk.Intensity > f.Peaks[best].Intensity {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		pk := f.Peaks[best]
		pk.FeatureID = f.ID
		aligned = append(aligned, pk)
	}
	return aligned
}

// AlignBatch pools the batch's detected peaks, aligns them, writes each
// sample's aligned-peak projection back, and advances the status. It
// returns the consensus feature table.
func AlignBatch(aligner Aligner, samples []*Sample, mzTolerance, rtTolerance float64) []AlignedFeature {
	features := aligner.Align(PoolPeaks(samples), mzTolerance, rtTolerance)
	for _, s := range samples {
		s.AlignedPeaks = ProjectAlignedPeaks(features, s.FileName)
		s.ProcessingStatus = StatusAligned
	}
	return features
}
