package ms

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/metabolite.report/internal/monitoring"
)

// DefaultPValueThreshold is the significance level applied when the
// caller does not override it.
const DefaultPValueThreshold = 0.05

// StatisticalEngine computes per-feature group-comparison statistics
// over an aligned batch and applies multiple-testing correction across
// the whole result set.
type StatisticalEngine struct {
	// PValueThreshold is the significance level for all flags.
	PValueThreshold float64
}

// featureIntensities is the per-feature view assembled from the
// batch's aligned peaks: one intensity per sample, keyed by file name.
type featureIntensities struct {
	id          string
	mz          float64
	rt          float64
	intensities map[string]float64
}

// buildFeatureTable collects aligned peaks across the batch into
// per-feature intensity maps, in first-seen order. Peaks without a
// feature id fall back to an m/z-derived key.
func buildFeatureTable(samples []*Sample) []*featureIntensities {
	var order []string
	byID := make(map[string]*featureIntensities)
	for _, s := range samples {
		for _, pk := range s.AlignedPeaks {
			id := pk.FeatureID
			if id == "" {
				id = fmt.Sprintf("mz_%.4f", pk.MZ)
			}
			f, ok := byID[id]
			if !ok {
				f = &featureIntensities{
					id:          id,
					mz:          pk.MZ,
					rt:          pk.RetentionTime,
					intensities: make(map[string]float64),
				}
				byID[id] = f
				order = append(order, id)
			}
			f.intensities[s.FileName] = pk.Intensity
		}
	}
	out := make([]*featureIntensities, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out
}

// ComputeStatistics runs the full battery over the batch: positional
// group split, per-feature tests, then FDR and Bonferroni correction
// over the surviving raw p-values. It writes the result set onto every
// sample, advances the status, and returns the results plus the count
// of FDR-significant features.
//
// The group split is positional: the first half of the input ordering
// (rounded down) against the remainder. This is a placeholder
// convention carried for compatibility with the upstream service; real
// experimental-design metadata should replace it before any production
// use of the significance calls.
func (e *StatisticalEngine) ComputeStatistics(samples []*Sample) ([]StatisticalResult, int) {
	threshold := e.PValueThreshold
	if threshold <= 0 {
		threshold = DefaultPValueThreshold
	}

	names := make([]string, len(samples))
	for i, s := range samples {
		names[i] = s.FileName
	}
	mid := len(names) / 2
	group1 := names[:mid]
	group2 := names[mid:]

	var results []StatisticalResult
	for _, f := range buildFeatureTable(samples) {
		res, err := testFeature(f, group1, group2, threshold)
		if err != nil {
			monitoring.Logf("statistics: feature %s skipped: %v", f.id, err)
			continue
		}
		if res != nil {
			results = append(results, *res)
		}
	}

	AdjustResults(results, threshold)

	significant := 0
	for _, r := range results {
		if r.SignificantFDR {
			significant++
		}
	}

	for _, s := range samples {
		s.StatisticalResults = results
		s.ProcessingStatus = StatusStatsComplete
	}
	return results, significant
}

// testFeature computes the per-feature battery. It returns (nil, nil)
// when the feature lacks group coverage (not an error), and an error
// when the tests degenerate numerically.
func testFeature(f *featureIntensities, group1, group2 []string, threshold float64) (*StatisticalResult, error) {
	recorded := func(names []string) int {
		n := 0
		for _, name := range names {
			if _, ok := f.intensities[name]; ok {
				n++
			}
		}
		return n
	}
	if recorded(group1) < 2 || recorded(group2) < 2 {
		return nil, nil
	}

	// Missing sample intensities default to 0, they are not excluded.
	gather := func(names []string) []float64 {
		vs := make([]float64, len(names))
		for i, name := range names {
			vs[i] = f.intensities[name]
		}
		return vs
	}
	x1 := gather(group1)
	x2 := gather(group2)

	tStat, pValue, err := tTestEqualVar(x1, x2)
	if err != nil {
		return nil, err
	}
	uStat, uP, err := mannWhitneyU(x1, x2)
	if err != nil {
		return nil, err
	}

	mean1, std1 := stat.PopMeanStdDev(x1, nil)
	mean2, std2 := stat.PopMeanStdDev(x2, nil)

	foldChange := 1.0
	if mean1 > 0 {
		foldChange = mean2 / mean1
	}
	log2FC := 0.0
	if foldChange > 0 {
		log2FC = math.Log2(foldChange)
	}

	pooled := math.Sqrt((std1*std1 + std2*std2) / 2)
	cohensD := 0.0
	if pooled > 0 {
		cohensD = (mean2 - mean1) / pooled
	}

	return &StatisticalResult{
		FeatureID:      f.id,
		MZ:             f.mz,
		RT:             f.rt,
		PValue:         pValue,
		TStatistic:     tStat,
		UStatistic:     uStat,
		UPValue:        uP,
		FoldChange:     foldChange,
		Log2FoldChange: log2FC,
		CohensD:        cohensD,
		Group1Mean:     mean1,
		Group2Mean:     mean2,
		Group1Std:      std1,
		Group2Std:      std2,
		Significant:    pValue < threshold,
	}, nil
}

// tTestEqualVar is the two-sample independent t-test under the
// equal-variance assumption: pooled variance, n1+n2-2 degrees of
// freedom, two-sided p from the Student's-t distribution.
func tTestEqualVar(x1, x2 []float64) (tStat, pValue float64, err error) {
	n1 := float64(len(x1))
	n2 := float64(len(x2))
	if n1 < 2 || n2 < 2 {
		return 0, 0, fmt.Errorf("t-test needs at least 2 observations per group")
	}

	mean1, var1 := stat.MeanVariance(x1, nil)
	mean2, var2 := stat.MeanVariance(x2, nil)

	df := n1 + n2 - 2
	pooledVar := ((n1-1)*var1 + (n2-1)*var2) / df
	if pooledVar <= 0 {
		return 0, 0, fmt.Errorf("zero pooled variance")
	}

	tStat = (mean1 - mean2) / math.Sqrt(pooledVar*(1/n1+1/n2))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * dist.CDF(-math.Abs(tStat))
	return tStat, pValue, nil
}

// mannWhitneyU is the two-sided Mann-Whitney U test using midranks for
// ties and the tie-corrected normal approximation with continuity
// correction. The reported U is that of the first group.
func mannWhitneyU(x1, x2 []float64) (u, pValue float64, err error) {
	n1 := len(x1)
	n2 := len(x2)
	n := n1 + n2
	if n1 < 1 || n2 < 1 {
		return 0, 0, fmt.Errorf("mann-whitney needs observations in both groups")
	}

	type obs struct {
		v     float64
		first bool
	}
	all := make([]obs, 0, n)
	for _, v := range x1 {
		all = append(all, obs{v, true})
	}
	for _, v := range x2 {
		all = append(all, obs{v, false})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	// Midranks plus the tie-correction term sum(t^3 - t).
	ranks := make([]float64, n)
	tieSum := 0.0
	for i := 0; i < n; {
		j := i
		for j < n && all[j].v == all[i].v {
			j++
		}
		mid := float64(i+j+1) / 2 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[k] = mid
		}
		t := float64(j - i)
		tieSum += t*t*t - t
		i = j
	}

	r1 := 0.0
	for i, o := range all {
		if o.first {
			r1 += ranks[i]
		}
	}
	u = r1 - float64(n1)*float64(n1+1)/2

	mu := float64(n1) * float64(n2) / 2
	sigma2 := float64(n1) * float64(n2) / 12 * (float64(n+1) - tieSum/(float64(n)*float64(n-1)))
	if sigma2 <= 0 {
		return 0, 0, fmt.Errorf("degenerate rank variance (all values tied)")
	}
	sigma := math.Sqrt(sigma2)

	// Continuity correction toward the mean.
	z := (math.Abs(u-mu) - 0.5) / sigma
	if z < 0 {
		z = 0
	}
	pValue = 2 * distuv.UnitNormal.CDF(-z)
	if pValue > 1 {
		pValue = 1
	}
	return u, pValue, nil
}
