package gf2

import (
	"fmt"

	"github.com/colorfulnotion/memconfig/memerrors"
)

// SingularError reports that no pivot exists for Column, so the matrix has no
// inverse over GF(2).
type SingularError struct {
	Size   int
	Column int
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("%v (size %d, no pivot in column %d)", memerrors.ErrMSingularMatrix, e.Size, e.Column)
}

func (e *SingularError) Unwrap() error { return memerrors.ErrMSingularMatrix }

// InconsistencyError reports that elimination completed but A x A^-1 is not
// the identity. It points at a bug in the elimination, not at bad input.
type InconsistencyError struct {
	Size int
	// Row and Column locate the first entry of the product that differs from I.
	Row, Column int
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%v (size %d, product differs at [%d][%d])", memerrors.ErrMInternalConsistency, e.Size, e.Row, e.Column)
}

func (e *InconsistencyError) Unwrap() error { return memerrors.ErrMInternalConsistency }

// Invert computes the inverse of a by Gauss-Jordan elimination on the
// augmented matrix [a | I]. The result is checked against a x a^-1 = I
// before it is returned.
func Invert(a Matrix) (Matrix, error) {
	inv, err := eliminate(a)
	if err != nil {
		return Matrix{}, err
	}
	if err := verifyInverse(a, inv); err != nil {
		return Matrix{}, err
	}
	return inv, nil
}

func eliminate(a Matrix) (Matrix, error) {
	n := a.n
	aug := make([][]bool, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]bool, 2*n)
		copy(aug[i], a.rows[i])
		aug[i][n+i] = true
	}

	for i := 0; i < n; i++ {
		pivot := i
		for pivot < n && !aug[pivot][i] {
			pivot++
		}
		if pivot == n {
			return Matrix{}, &SingularError{Size: n, Column: i}
		}
		if pivot != i {
			aug[i], aug[pivot] = aug[pivot], aug[i]
		}
		// no scaling step over GF(2): one XOR pass clears column i above and below
		for r := 0; r < n; r++ {
			if r != i && aug[r][i] {
				for c := i; c < 2*n; c++ {
					aug[r][c] = aug[r][c] != aug[i][c]
				}
			}
		}
	}

	inv := NewMatrix(n)
	for i := 0; i < n; i++ {
		copy(inv.rows[i], aug[i][n:])
	}
	return inv, nil
}

func verifyInverse(a, inv Matrix) error {
	prod, err := a.Mul(inv)
	if err != nil {
		return err
	}
	for i := 0; i < prod.n; i++ {
		for j := 0; j < prod.n; j++ {
			if prod.rows[i][j] != (i == j) {
				return &InconsistencyError{Size: prod.n, Row: i, Column: j}
			}
		}
	}
	return nil
}
