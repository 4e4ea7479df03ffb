// Package gf2 implements square bit matrices over GF(2), where addition is
// XOR and multiplication is AND.
package gf2

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/memconfig/memerrors"
)

// MaxSize is the widest matrix whose rows still fit a uint64.
const MaxSize = 64

// Matrix is an n x n matrix of bits. Column 0 is the most significant bit of
// a row when the row is read as an integer.
type Matrix struct {
	n    int
	rows [][]bool
}

func checkSize(n int) {
	if n <= 0 || n > MaxSize {
		panic(fmt.Sprintf("gf2: invalid matrix size %d", n))
	}
}

// NewMatrix returns the n x n zero matrix.
func NewMatrix(n int) Matrix {
	checkSize(n)
	rows := make([][]bool, n)
	for i := range rows {
		rows[i] = make([]bool, n)
	}
	return Matrix{n: n, rows: rows}
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.rows[i][i] = true
	}
	return m
}

// FromRows builds a matrix from n-bit row values, most significant bit first.
func FromRows(n int, rows []uint64) (Matrix, error) {
	checkSize(n)
	if len(rows) != n {
		return Matrix{}, fmt.Errorf("%w: %d rows for a %dx%d matrix", memerrors.ErrMDimensionMismatch, len(rows), n, n)
	}
	m := NewMatrix(n)
	for i, v := range rows {
		if n < 64 && v>>uint(n) != 0 {
			return Matrix{}, fmt.Errorf("%w: row %d value %d exceeds %d bits", memerrors.ErrMDimensionMismatch, i, v, n)
		}
		for j := 0; j < n; j++ {
			m.rows[i][j] = (v>>uint(n-1-j))&1 == 1
		}
	}
	return m, nil
}

// Size returns n.
func (m Matrix) Size() int {
	return m.n
}

func (m Matrix) At(i, j int) bool {
	return m.rows[i][j]
}

func (m Matrix) Set(i, j int, v bool) {
	m.rows[i][j] = v
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	c := NewMatrix(m.n)
	for i := range m.rows {
		copy(c.rows[i], m.rows[i])
	}
	return c
}

func (m Matrix) Equal(o Matrix) bool {
	if m.n != o.n {
		return false
	}
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.rows[i][j] != o.rows[i][j] {
				return false
			}
		}
	}
	return true
}

func (m Matrix) Transpose() Matrix {
	t := NewMatrix(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			t.rows[j][i] = m.rows[i][j]
		}
	}
	return t
}

// Mul returns m x o mod 2.
func (m Matrix) Mul(o Matrix) (Matrix, error) {
	if m.n != o.n {
		return Matrix{}, fmt.Errorf("%w: %d x %d", memerrors.ErrMDimensionMismatch, m.n, o.n)
	}
	out := NewMatrix(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			sum := false
			for k := 0; k < m.n; k++ {
				if m.rows[i][k] && o.rows[k][j] {
					sum = !sum
				}
			}
			out.rows[i][j] = sum
		}
	}
	return out, nil
}

func (m Matrix) IsIdentity() bool {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.rows[i][j] != (i == j) {
				return false
			}
		}
	}
	return true
}

// RowString renders row i MSB first, column 0 leftmost.
func (m Matrix) RowString(i int) string {
	var sb strings.Builder
	sb.Grow(m.n)
	for _, b := range m.rows[i] {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// RowUint interprets row i as an unsigned n-bit integer, column 0 being the
// most significant bit.
func (m Matrix) RowUint(i int) uint64 {
	var v uint64
	for _, b := range m.rows[i] {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

func (m Matrix) Rows() []uint64 {
	out := make([]uint64, m.n)
	for i := range out {
		out[i] = m.RowUint(i)
	}
	return out
}

func (m Matrix) Strings() []string {
	out := make([]string, m.n)
	for i := range out {
		out[i] = m.RowString(i)
	}
	return out
}

// SetBits lists the physical bit positions (n-1-column) set in row i, in
// column order.
func (m Matrix) SetBits(i int) []int {
	var bits []int
	for j, b := range m.rows[i] {
		if b {
			bits = append(bits, m.n-1-j)
		}
	}
	return bits
}

func (m Matrix) String() string {
	return strings.Join(m.Strings(), "\n")
}
