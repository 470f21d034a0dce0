// Command feature-plot renders the aligned feature map (retention time
// vs m/z) from an alignment step response as a PNG. Point size tracks
// the number of contributing samples so well-supported features are
// visually heavier.
//
// Usage:
//
//	feature-plot -in alignment.json -out features.png
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/metabolite.report/internal/ms"
)

var (
	input  = flag.String("in", "", "Alignment response JSON (reads per-sample alignedPeaks)")
	output = flag.String("out", "features.png", "Output PNG file")
)

// response is the subset of the process envelope this tool needs.
type response struct {
	Data []*ms.Sample `json:"data"`
}

// featurePoint is one consensus feature reassembled from the
// per-sample aligned-peak projections.
type featurePoint struct {
	mz, rt      float64
	sampleCount int
}

func loadFeatures(path string) ([]featurePoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var order []string
	byID := make(map[string]*featurePoint)
	for _, s := range resp.Data {
		for _, pk := range s.AlignedPeaks {
			fp, ok := byID[pk.FeatureID]
			if !ok {
				fp = &featurePoint{mz: pk.MZ, rt: pk.RetentionTime}
				byID[pk.FeatureID] = fp
				order = append(order, pk.FeatureID)
			}
			fp.sampleCount++
		}
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("no aligned peaks in %s", path)
	}

	out := make([]featurePoint, len(order))
	for i, id := range order {
		out[i] = *byID[id]
	}
	return out, nil
}

func main() {
	flag.Parse()
	if *input == "" {
		log.Fatal("-in is required")
	}

	features, err := loadFeatures(*input)
	if err != nil {
		log.Fatalf("load features: %v", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Aligned features (%d)", len(features))
	p.X.Label.Text = "retention time"
	p.Y.Label.Text = "m/z"

	xys := make(plotter.XYs, len(features))
	for i, f := range features {
		xys[i].X = f.rt
		xys[i].Y = f.mz
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		log.Fatalf("build scatter: %v", err)
	}
	sc.GlyphStyle.Radius = vg.Points(2)
	// Scale glyphs by sample support.
	sc.GlyphStyleFunc = func(i int) (st draw.GlyphStyle) {
		st = sc.GlyphStyle
		st.Radius = vg.Points(1 + float64(features[i].sampleCount))
		return st
	}
	p.Add(sc)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, *output); err != nil {
		log.Fatalf("save %s: %v", *output, err)
	}
	log.Printf("wrote %s (%d features)", *output, len(features))
}
