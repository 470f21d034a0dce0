package ms

import "sort"

// AdjustPValuesBH applies the Benjamini-Hochberg step-up procedure to
// raw p-values, returning FDR-adjusted p-values in the input order.
// Adjusted values are clipped to 1 and made monotone from the largest
// rank downward.
func AdjustPValuesBH(pValues []float64) []float64 {
	n := len(pValues)
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return pValues[order[a]] < pValues[order[b]] })

	adjusted := make([]float64, n)
	running := 1.0
	for rank := n; rank >= 1; rank-- {
		idx := order[rank-1]
		v := pValues[idx] * float64(n) / float64(rank)
		if v < running {
			running = v
		}
		adjusted[idx] = running
	}
	return adjusted
}

// AdjustPValuesBonferroni applies the Bonferroni correction, clipping
// at 1.
func AdjustPValuesBonferroni(pValues []float64) []float64 {
	n := len(pValues)
	if n == 0 {
		return nil
	}
	adjusted := make([]float64, n)
	for i, p := range pValues {
		v := p * float64(n)
		if v > 1 {
			v = 1
		}
		adjusted[i] = v
	}
	return adjusted
}

// AdjustResults fills the corrected p-values and significance flags on
// a result set in place, at the given threshold.
func AdjustResults(results []StatisticalResult, threshold float64) {
	if len(results) == 0 {
		return
	}
	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = r.PValue
	}
	fdr := AdjustPValuesBH(raw)
	bonf := AdjustPValuesBonferroni(raw)
	for i := range results {
		results[i].PValueFDR = fdr[i]
		results[i].PValueBonferroni = bonf[i]
		results[i].SignificantFDR = fdr[i] < threshold
		results[i].SignificantBonferroni = bonf[i] < threshold
	}
}
