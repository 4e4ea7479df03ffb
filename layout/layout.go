// Package layout plans the packed {rank, bankgroup, bank, row, column} bit
// fields of a linear DRAM address.
package layout

import (
	"fmt"
	"math/bits"

	"github.com/colorfulnotion/memconfig/memerrors"
)

const (
	// MatrixWidth is the physical address width covered by the mapping matrices.
	MatrixWidth = 30
	// ColumnBits is the fixed column field width.
	ColumnBits = 13
)

// AddressLayout splits a Width-bit address into bank-select, row and column bits.
type AddressLayout struct {
	Width         int
	ColumnBits    int
	BankFunctions int
	RowBits       int
}

// LayoutError is returned when the bank functions and column bits leave no
// room for row bits.
type LayoutError struct {
	Width         int
	ColumnBits    int
	BankFunctions int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%v (width %d, %d bank functions, %d column bits, row bits %d)",
		memerrors.ErrLRowWidthNegative, e.Width, e.BankFunctions, e.ColumnBits, e.Width-e.BankFunctions-e.ColumnBits)
}

func (e *LayoutError) Unwrap() error { return memerrors.ErrLRowWidthNegative }

// NewAddressLayout returns the 30-bit layout with 13 column bits.
func NewAddressLayout(numBankFunctions int) (AddressLayout, error) {
	return NewAddressLayoutWidth(MatrixWidth, ColumnBits, numBankFunctions)
}

func NewAddressLayoutWidth(width, columnBits, numBankFunctions int) (AddressLayout, error) {
	if width <= 0 || width > 64 {
		return AddressLayout{}, fmt.Errorf("%w: %d", memerrors.ErrLWidthInvalid, width)
	}
	if columnBits < 0 || numBankFunctions < 0 {
		return AddressLayout{}, fmt.Errorf("%w: negative field count", memerrors.ErrLWidthInvalid)
	}
	rowBits := width - numBankFunctions - columnBits
	if rowBits < 0 {
		return AddressLayout{}, &LayoutError{Width: width, ColumnBits: columnBits, BankFunctions: numBankFunctions}
	}
	return AddressLayout{
		Width:         width,
		ColumnBits:    columnBits,
		BankFunctions: numBankFunctions,
		RowBits:       rowBits,
	}, nil
}

// RowStart is the first matrix row holding a row-bit passthrough.
func (l AddressLayout) RowStart() int { return l.BankFunctions }

// ColumnStart is the first matrix row holding a column-bit passthrough.
func (l AddressLayout) ColumnStart() int { return l.BankFunctions + l.RowBits }

func (l AddressLayout) String() string {
	return fmt.Sprintf("%dx%d: bank rows 0-%d, row rows %d-%d (%d bits), column rows %d-%d (%d bits)",
		l.Width, l.Width,
		l.BankFunctions-1,
		l.RowStart(), l.ColumnStart()-1, l.RowBits,
		l.ColumnStart(), l.Width-1, l.ColumnBits)
}

// Cardinalities are the counts of ranks, bank groups and banks per bank group.
type Cardinalities struct {
	Rank      int
	BankGroup int
	Bank      int
}

func DefaultCardinalities() Cardinalities {
	return Cardinalities{Rank: 2, BankGroup: 4, Bank: 4}
}

// FieldWidth is the bit length of cardinality-1. A field never collapses to
// zero width: cardinalities of 1 or less still take one bit.
func FieldWidth(cardinality int) int {
	if cardinality <= 1 {
		return 1
	}
	return bits.Len(uint(cardinality - 1))
}

// BitField is one packed field of the linear address.
type BitField struct {
	Width int
	Shift int
	Mask  uint64
}

func newBitField(width, shift int) BitField {
	return BitField{Width: width, Shift: shift, Mask: (uint64(1) << uint(width)) - 1}
}

// FieldFromMask rebuilds a BitField from an emitted shift/mask pair.
func FieldFromMask(shift int, mask uint64) BitField {
	return BitField{Width: bits.Len64(mask), Shift: shift, Mask: mask}
}

// Extract returns the field value held in v.
func (f BitField) Extract(v uint64) uint64 {
	return (v >> uint(f.Shift)) & f.Mask
}

// Place positions x in the field. Bits of x beyond the mask are dropped.
func (f BitField) Place(x uint64) uint64 {
	return (x & f.Mask) << uint(f.Shift)
}

// FieldPlan is the shift/mask assignment for every field. Sub-channel bits
// are not used by this target and stay at zero.
type FieldPlan struct {
	SubChannel BitField
	Rank       BitField
	BankGroup  BitField
	Bank       BitField
	Row        BitField
	Column     BitField
}

// Plan assigns shifts low to high: column, row, bank, bankgroup, rank. Each
// shift is the sum of the widths below it.
func Plan(l AddressLayout, c Cardinalities) FieldPlan {
	column := newBitField(l.ColumnBits, 0)
	row := newBitField(l.RowBits, column.Shift+column.Width)
	bank := newBitField(FieldWidth(c.Bank), row.Shift+row.Width)
	bankGroup := newBitField(FieldWidth(c.BankGroup), bank.Shift+bank.Width)
	rank := newBitField(FieldWidth(c.Rank), bankGroup.Shift+bankGroup.Width)
	return FieldPlan{
		Rank:      rank,
		BankGroup: bankGroup,
		Bank:      bank,
		Row:       row,
		Column:    column,
	}
}

// Fields lists the planned fields in shift order with their names.
func (p FieldPlan) Fields() []NamedField {
	return []NamedField{
		{"column", p.Column},
		{"row", p.Row},
		{"bank", p.Bank},
		{"bankgroup", p.BankGroup},
		{"rank", p.Rank},
	}
}

type NamedField struct {
	Name string
	BitField
}

// TotalWidth is the number of linear address bits the plan covers.
func (p FieldPlan) TotalWidth() int {
	return p.Rank.Shift + p.Rank.Width
}
