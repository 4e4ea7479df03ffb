package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorfulnotion/memconfig/gf2"
	"github.com/colorfulnotion/memconfig/memconfig"
	"github.com/colorfulnotion/memconfig/relog"
)

func TestMatrixChartCells(t *testing.T) {
	m, err := gf2.FromRows(3, []uint64{0b100, 0b011, 0b001})
	require.NoError(t, err)

	hm := MatrixChart("toy", m)
	require.Len(t, hm.MultiSeries, 1)
	cells, ok := hm.MultiSeries[0].Data.([]opts.HeatMapData)
	require.True(t, ok)
	require.Len(t, cells, 9)

	ones := 0
	for _, c := range cells {
		v := c.Value.([3]interface{})
		ones += v[2].(int)
	}
	assert.Equal(t, 4, ones)
	// row 0, column 0 is drawn on the top line
	assert.Equal(t, [3]interface{}{0, 2, 1}, cells[0].Value)
}

func TestRender(t *testing.T) {
	in := memconfig.DefaultInput(relog.DefaultBankFunctions())
	res, err := memconfig.Generate(context.Background(), in, memconfig.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res.Config))
	html := buf.String()
	assert.Contains(t, html, "DRAM_MTX")
	assert.Contains(t, html, "ADDR_MTX")
	assert.Contains(t, html, "MemConfiguration 0x00111244")
}

func TestRenderRejectsEmpty(t *testing.T) {
	_, err := MatrixPage(memconfig.MemConfiguration{})
	assert.Error(t, err)
}
