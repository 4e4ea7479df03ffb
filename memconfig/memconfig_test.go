package memconfig

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nsf/jsondiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/colorfulnotion/memconfig/layout"
	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memerrors"
	"github.com/colorfulnotion/memconfig/telemetry"
)

var defaultFuncs = []mapping.BankFunction{
	{16, 20, 23, 24, 27, 30, 33},
	{14, 18, 26, 29, 32},
	{17, 21, 22, 25, 28, 31},
	{15, 19},
	{9, 11, 13},
}

func generateDefault(t *testing.T) *Result {
	t.Helper()
	res, err := Generate(context.Background(), DefaultInput(defaultFuncs), Options{})
	require.NoError(t, err)
	return res
}

func TestPackIdentifier(t *testing.T) {
	f := IdentifierFields{Samsung: 1, Chan: 1, Dimm: 1, Rank: 2, BankGroup: 4, Bank: 4}
	want := uint64(1<<20 | 1<<16 | 1<<12 | 2<<8 | 4<<4 | 4<<0)
	assert.Equal(t, want, PackIdentifier(f))
	assert.Equal(t, uint64(0x111244), PackIdentifier(DefaultIdentifierFields()))
	assert.Empty(t, f.Overflowing())
}

func TestPackIdentifierOverflow(t *testing.T) {
	// 16 banks spill into the BANKGROUP slot
	f := IdentifierFields{Bank: 16}
	assert.Equal(t, uint64(0x10), PackIdentifier(f))
	assert.Equal(t, PackIdentifier(IdentifierFields{BankGroup: 1}), PackIdentifier(f))
	assert.Equal(t, []string{"BANK"}, f.Overflowing())
}

func TestIdentifierBreakdown(t *testing.T) {
	lines := DefaultIdentifierFields().Breakdown()
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "SAMSUNG    = 1 << 20 =    1048576 (0x00100000)"), lines[0])
	assert.True(t, strings.HasPrefix(lines[5], "BANK"))
}

func TestGenerateDefault(t *testing.T) {
	res := generateDefault(t)
	c := res.Config

	assert.Equal(t, uint64(0x111244), c.Identifier)
	assert.Equal(t, []uint64{
		160497664, 604258304, 308412416, 557056, 10752, 536870912, 268435456, 134217728,
		67108864, 33554432, 16777216, 8388608, 4194304, 2097152, 1048576, 524288,
		262144, 4096, 2048, 1024, 512, 256, 128, 64, 32, 16, 8, 4, 2, 1,
	}, c.DramMtx)
	assert.Equal(t, []uint64{
		16777216, 8388608, 4194304, 2097152, 1048576, 524288, 262144, 131072,
		65536, 32768, 16384, 8192, 143851520, 541884416, 67125248, 287318016,
		33556992, 4096, 2048, 1024, 512, 256, 128, 64, 32, 16, 8, 4, 2, 1,
	}, c.AddrMtx)

	assert.Equal(t, 0, c.ScShift)
	assert.Equal(t, uint64(0), c.ScMask)
	assert.Equal(t, 29, c.RkShift)
	assert.Equal(t, uint64(1), c.RkMask)
	assert.Equal(t, 27, c.BgShift)
	assert.Equal(t, uint64(3), c.BgMask)
	assert.Equal(t, 25, c.BkShift)
	assert.Equal(t, uint64(3), c.BkMask)
	assert.Equal(t, 13, c.RowShift)
	assert.Equal(t, uint64(4095), c.RowMask)
	assert.Equal(t, 0, c.ColShift)
	assert.Equal(t, uint64(8191), c.ColMask)

	assert.Equal(t, mapping.Computed, res.Inverse.Outcome)
	assert.Len(t, res.DroppedIndices, 4)
	assert.Empty(t, res.Duplicates)
	assert.Equal(t, 12, res.Layout.RowBits)
}

func TestGenerateCopiesInput(t *testing.T) {
	funcs := mapping.CloneFunctions(defaultFuncs)
	res, err := Generate(context.Background(), DefaultInput(funcs), Options{})
	require.NoError(t, err)
	funcs[0][0] = 1
	assert.Equal(t, 16, res.BankFunctions[0][0])
}

func TestGenerateLayoutError(t *testing.T) {
	funcs := make([]mapping.BankFunction, 18)
	for i := range funcs {
		funcs[i] = mapping.BankFunction{i}
	}
	res, err := Generate(context.Background(), DefaultInput(funcs), Options{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, memerrors.ErrLRowWidthNegative)
	var lerr *layout.LayoutError
	assert.True(t, errors.As(err, &lerr))
}

func TestGenerateInvalidInput(t *testing.T) {
	_, err := Generate(context.Background(), DefaultInput(nil), Options{})
	assert.ErrorIs(t, err, memerrors.ErrBNoFunctions)
}

func TestGenerateSingular(t *testing.T) {
	funcs := mapping.CloneFunctions(defaultFuncs)
	funcs[4] = mapping.BankFunction{15, 19}

	res, err := Generate(context.Background(), DefaultInput(funcs), Options{})
	require.NoError(t, err)
	assert.True(t, res.Inverse.Degraded())
	assert.Equal(t, mapping.SingularFallback, res.Inverse.Outcome)
	assert.ErrorIs(t, res.Inverse.Err, memerrors.ErrMSingularMatrix)
	assert.Equal(t, [][2]int{{3, 4}}, res.Duplicates)
	for i, row := range res.Config.AddrMtx {
		assert.Equal(t, uint64(1)<<uint(29-i), row)
	}

	_, err = Generate(context.Background(), DefaultInput(funcs), Options{Strict: true})
	assert.ErrorIs(t, err, memerrors.ErrMDegradedInverse)
}

func TestGenerateSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	generateDefault(t)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{
		telemetry.SpanLayout,
		telemetry.SpanForwardMatrix,
		telemetry.SpanInverse,
		telemetry.SpanIdentifier,
		telemetry.SpanGenerate,
	}, names)
}

func TestMarshalKeyOrder(t *testing.T) {
	b, err := Marshal(generateDefault(t).Config)
	require.NoError(t, err)
	s := string(b)

	assert.True(t, strings.HasPrefix(s, "{\n  \"MemConfiguration\": {\n    \"IDENTIFIER\": 1118788,"), s[:80])
	keys := []string{"IDENTIFIER", "DRAM_MTX", "ADDR_MTX", "SC_SHIFT", "SC_MASK", "RK_SHIFT", "RK_MASK",
		"BG_SHIFT", "BG_MASK", "BK_SHIFT", "BK_MASK", "ROW_SHIFT", "ROW_MASK", "COL_SHIFT", "COL_MASK"}
	last := -1
	for _, k := range keys {
		idx := strings.Index(s, `"`+k+`"`)
		require.Greater(t, idx, last, k)
		last = idx
	}
}

func TestWriteRead(t *testing.T) {
	res := generateDefault(t)
	path := filepath.Join(t.TempDir(), "out", "mem_config.json")
	require.NoError(t, Write(path, res.Config))

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, res.Config, back)
	assert.Equal(t, res.Plan.Rank, back.Plan().Rank)
	assert.Equal(t, res.Plan.Row, back.Plan().Row)

	dram, addr, err := back.Matrices()
	require.NoError(t, err)
	assert.True(t, dram.Equal(res.Forward))
	assert.True(t, addr.Equal(res.Inverse.Matrix))

	tr, err := back.Translator()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x12345678), tr.Encode(tr.Decode(0x12345678)))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, back))
	_, err = Unmarshal([]byte(`{"MemConfiguration": {}}`))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(DefaultInput(defaultFuncs))
	assert.Equal(t, a, Fingerprint(DefaultInput(mapping.CloneFunctions(defaultFuncs))))

	swapped := mapping.CloneFunctions(defaultFuncs)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.NotEqual(t, a, Fingerprint(DefaultInput(swapped)))

	in := DefaultInput(defaultFuncs)
	in.Identifier.Samsung = 0
	assert.NotEqual(t, a, Fingerprint(in))
}

func TestCompareAndDiff(t *testing.T) {
	res := generateDefault(t)
	a, err := Marshal(res.Config)
	require.NoError(t, err)

	cmp := Compare(a, a)
	assert.True(t, cmp.Equal())
	d, err := Diff(a, a, false)
	require.NoError(t, err)
	assert.Empty(t, d)

	other := res.Config
	other.Identifier = 0x111248
	b, err := Marshal(other)
	require.NoError(t, err)

	cmp = Compare(a, b)
	assert.Equal(t, jsondiff.NoMatch, cmp.Match)
	d, err = Diff(a, b, false)
	require.NoError(t, err)
	assert.Contains(t, d, "IDENTIFIER")
}

func TestStructureTree(t *testing.T) {
	s := StructureTree(generateDefault(t)).String()
	assert.Contains(t, s, "IDENTIFIER=0x00111244")
	assert.Contains(t, s, "bank functions (rows 0-4)")
	assert.Contains(t, s, "row bits (rows 5-16, 12 bits)")
	assert.Contains(t, s, "column bits (rows 17-29, 13 bits)")
	assert.Contains(t, s, "Row  3: 000000000010001000000000000000 =     557056 (sets bits [19 15])")
	assert.Contains(t, s, "Row 29: 000000000000000000000000000001 =          1 (sets bit 0)")
	assert.Contains(t, s, "ADDR_MTX (computed)")
}
