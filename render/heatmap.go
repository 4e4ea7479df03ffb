package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/colorfulnotion/memconfig/gf2"
	"github.com/colorfulnotion/memconfig/memconfig"
)

// MatrixChart draws m as a 0/1 heatmap. Columns are labelled with the
// physical address bit they read, rows with their matrix index.
func MatrixChart(title string, m gf2.Matrix) *charts.HeatMap {
	n := m.Size()
	xs := make([]string, n)
	ys := make([]string, n)
	for j := 0; j < n; j++ {
		xs[j] = strconv.Itoa(n - 1 - j)
	}
	// echarts draws the first category at the bottom
	for i := 0; i < n; i++ {
		ys[i] = fmt.Sprintf("row %d", n-1-i)
	}

	data := make([]opts.HeatMapData, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := 0
			if m.At(i, j) {
				v = 1
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, n - 1 - i, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%dx%d over GF(2)", n, n),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "addr bit"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{"#f5f5f5", "#1f4e79"}},
		}),
	)
	hm.SetXAxis(xs).AddSeries(title, data)
	return hm
}

// MatrixPage holds one heatmap per matrix of cfg.
func MatrixPage(cfg memconfig.MemConfiguration) (*components.Page, error) {
	dram, addr, err := cfg.Matrices()
	if err != nil {
		return nil, err
	}
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("MemConfiguration 0x%08X", cfg.Identifier)
	page.AddCharts(
		MatrixChart("DRAM_MTX", dram),
		MatrixChart("ADDR_MTX", addr),
	)
	return page, nil
}

// Render writes the HTML page for cfg to w.
func Render(w io.Writer, cfg memconfig.MemConfiguration) error {
	page, err := MatrixPage(cfg)
	if err != nil {
		return err
	}
	return page.Render(w)
}
