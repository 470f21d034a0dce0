// Command volcano-report renders a volcano plot (log2 fold change vs
// -log10 raw p-value) from a statistics step response, as a standalone
// HTML file. FDR-significant features get their own series so they
// stand out.
//
// Usage:
//
//	volcano-report -in statistics.json -out volcano.html
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/metabolite.report/internal/ms"
)

var (
	input  = flag.String("in", "", "Statistics response JSON (uses the first sample's statisticalResults)")
	output = flag.String("out", "volcano.html", "Output HTML file")
)

// response is the subset of the process envelope this tool needs.
type response struct {
	Data []*ms.Sample `json:"data"`
}

func loadResults(path string) ([]ms.StatisticalResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, s := range resp.Data {
		if len(s.StatisticalResults) > 0 {
			return s.StatisticalResults, nil
		}
	}
	return nil, fmt.Errorf("no statistical results in %s", path)
}

func main() {
	flag.Parse()
	if *input == "" {
		log.Fatal("-in is required")
	}

	results, err := loadResults(*input)
	if err != nil {
		log.Fatalf("load results: %v", err)
	}

	var plain, significant []opts.ScatterData
	for _, r := range results {
		p := r.PValue
		if p <= 0 {
			p = math.SmallestNonzeroFloat64
		}
		point := opts.ScatterData{Value: []interface{}{r.Log2FoldChange, -math.Log10(p), r.FeatureID}}
		if r.SignificantFDR {
			significant = append(significant, point)
		} else {
			plain = append(plain, point)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Volcano Plot", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Differential features",
			Subtitle: fmt.Sprintf("%d features, %d significant (FDR)", len(results), len(significant)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "log2 fold change", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "-log10 p", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("not significant", plain, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	scatter.AddSeries("significant (FDR)", significant, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 7}))

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		log.Fatalf("render chart: %v", err)
	}
	log.Printf("wrote %s (%d features)", *output, len(results))
}
