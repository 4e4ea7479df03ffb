// Package mapping builds the forward DRAM mapping matrix from bank-select
// functions, resolves its GF(2) inverse and translates addresses with both.
package mapping

import (
	"fmt"

	"github.com/colorfulnotion/memconfig/gf2"
	"github.com/colorfulnotion/memconfig/layout"
	"github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/memerrors"
	"golang.org/x/exp/slices"
)

// BankFunction lists the physical address bits XORed into one bank-select
// bit, bit 0 being the least significant.
type BankFunction []int

func (f BankFunction) String() string {
	return fmt.Sprint([]int(f))
}

// Validate rejects inputs that cannot describe a bank mapping. Bit indices at
// or beyond the matrix width are accepted here; BuildForwardMatrix drops them.
func Validate(funcs []BankFunction) error {
	if len(funcs) == 0 {
		return memerrors.ErrBNoFunctions
	}
	for k, f := range funcs {
		if len(f) == 0 {
			return fmt.Errorf("bank function %d: %w", k, memerrors.ErrBEmptyFunction)
		}
		for _, b := range f {
			if b < 0 {
				return fmt.Errorf("bank function %d index %d: %w", k, b, memerrors.ErrBNegativeIndex)
			}
		}
	}
	return nil
}

// CloneFunctions deep-copies funcs.
func CloneFunctions(funcs []BankFunction) []BankFunction {
	out := make([]BankFunction, len(funcs))
	for i, f := range funcs {
		out[i] = slices.Clone(f)
	}
	return out
}

// DroppedIndex is a bank-function bit index outside the matrix.
type DroppedIndex struct {
	Function int
	Bit      int
}

// DroppedIndices reports the indices BuildForwardMatrix ignores because they
// are not below l.Width.
func DroppedIndices(funcs []BankFunction, l layout.AddressLayout) []DroppedIndex {
	var out []DroppedIndex
	for k, f := range funcs {
		for _, b := range f {
			if b >= l.Width {
				out = append(out, DroppedIndex{Function: k, Bit: b})
			}
		}
	}
	return out
}

// DuplicateFunctions returns index pairs of functions selecting the same set
// of in-range bits. Any such pair makes the forward matrix singular.
func DuplicateFunctions(funcs []BankFunction, l layout.AddressLayout) [][2]int {
	norm := make([][]int, len(funcs))
	for k, f := range funcs {
		var in []int
		for _, b := range f {
			if b < l.Width {
				in = append(in, b)
			}
		}
		slices.Sort(in)
		norm[k] = slices.Compact(in)
	}
	var dups [][2]int
	for i := 0; i < len(norm); i++ {
		for j := i + 1; j < len(norm); j++ {
			if slices.Equal(norm[i], norm[j]) {
				dups = append(dups, [2]int{i, j})
			}
		}
	}
	return dups
}

// BuildForwardMatrix returns DRAM_MTX. Row k < l.BankFunctions has a 1 in
// column Width-1-b for every bit b of function k; matrix columns are
// physical bits MSB-left. The next RowBits rows pass physical bits
// Width-1 downwards through as row bits, and the last ColumnBits rows pass
// the low physical bits through as column bits, filled from the last row
// backwards. The caller must pass funcs in bank-select bit order.
func BuildForwardMatrix(funcs []BankFunction, l layout.AddressLayout) gf2.Matrix {
	n := l.Width
	m := gf2.NewMatrix(n)

	for k, f := range funcs {
		if k >= l.BankFunctions {
			break
		}
		for _, b := range f {
			if b < 0 || b >= n {
				continue
			}
			m.Set(k, n-1-b, true)
		}
	}

	for i := 0; i < l.RowBits; i++ {
		m.Set(l.BankFunctions+i, i, true)
	}

	for i := 0; i < l.ColumnBits; i++ {
		m.Set(n-1-i, n-1-i, true)
	}

	log.Debug(log.MatrixModule, "forward matrix built", "layout", l.String())
	return m
}
