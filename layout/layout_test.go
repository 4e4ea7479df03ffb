package layout

import (
	"errors"
	"testing"

	"github.com/colorfulnotion/memconfig/memerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddressLayout(t *testing.T) {
	l, err := NewAddressLayout(5)
	require.NoError(t, err)
	assert.Equal(t, AddressLayout{Width: 30, ColumnBits: 13, BankFunctions: 5, RowBits: 12}, l)
	assert.Equal(t, 5, l.RowStart())
	assert.Equal(t, 17, l.ColumnStart())

	l, err = NewAddressLayout(17)
	require.NoError(t, err)
	assert.Equal(t, 0, l.RowBits)

	_, err = NewAddressLayout(18)
	require.Error(t, err)
	assert.ErrorIs(t, err, memerrors.ErrLRowWidthNegative)
	var lerr *LayoutError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, 18, lerr.BankFunctions)

	_, err = NewAddressLayoutWidth(0, 0, 0)
	assert.ErrorIs(t, err, memerrors.ErrLWidthInvalid)
}

func TestFieldWidth(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 16: 4}
	for card, want := range cases {
		assert.Equal(t, want, FieldWidth(card), "cardinality %d", card)
	}
}

func TestPlanDefault(t *testing.T) {
	l, err := NewAddressLayout(5)
	require.NoError(t, err)
	p := Plan(l, DefaultCardinalities())

	assert.Equal(t, BitField{Width: 13, Shift: 0, Mask: 8191}, p.Column)
	assert.Equal(t, BitField{Width: 12, Shift: 13, Mask: 4095}, p.Row)
	assert.Equal(t, BitField{Width: 2, Shift: 25, Mask: 3}, p.Bank)
	assert.Equal(t, BitField{Width: 2, Shift: 27, Mask: 3}, p.BankGroup)
	assert.Equal(t, BitField{Width: 1, Shift: 29, Mask: 1}, p.Rank)
	assert.Equal(t, BitField{}, p.SubChannel)
	assert.Equal(t, 30, p.TotalWidth())
}

func TestPlanContiguous(t *testing.T) {
	for nb := 0; nb <= 17; nb++ {
		l, err := NewAddressLayout(nb)
		require.NoError(t, err)
		for _, c := range []Cardinalities{{1, 1, 1}, {2, 4, 4}, {4, 2, 8}, {3, 5, 7}} {
			p := Plan(l, c)
			next := 0
			for _, f := range p.Fields() {
				assert.Equal(t, next, f.Shift, "%s nb=%d %+v", f.Name, nb, c)
				assert.Equal(t, (uint64(1)<<uint(f.Width))-1, f.Mask)
				if f.Name != "row" {
					assert.GreaterOrEqual(t, f.Width, 1)
				}
				next += f.Width
			}
			assert.Equal(t, next, p.TotalWidth())
		}
	}
}

func TestBitFieldExtractPlace(t *testing.T) {
	f := newBitField(2, 25)
	assert.Equal(t, uint64(3)<<25, f.Place(7))
	assert.Equal(t, uint64(2), f.Extract(uint64(2)<<25|0x1ffffff))

	g := FieldFromMask(13, 4095)
	assert.Equal(t, BitField{Width: 12, Shift: 13, Mask: 4095}, g)
}
