package mapping

import (
	"errors"

	"github.com/colorfulnotion/memconfig/gf2"
	"github.com/colorfulnotion/memconfig/log"
)

// Outcome says where an address matrix came from.
type Outcome int

const (
	// Computed is a verified GF(2) inverse.
	Computed Outcome = iota
	// SingularFallback is the identity substituted for a singular forward matrix.
	SingularFallback
	// InconsistentFallback is the identity substituted for an inverse that
	// failed the round-trip check.
	InconsistentFallback
)

func (o Outcome) String() string {
	switch o {
	case Computed:
		return "computed"
	case SingularFallback:
		return "singular-fallback"
	case InconsistentFallback:
		return "inconsistent-fallback"
	default:
		return "unknown"
	}
}

// Inverse is ADDR_MTX together with how it was obtained. Err holds the
// *gf2.SingularError or *gf2.InconsistencyError behind a fallback.
type Inverse struct {
	Matrix  gf2.Matrix
	Outcome Outcome
	Err     error
}

// Degraded reports whether Matrix is a fallback identity instead of a real inverse.
func (inv Inverse) Degraded() bool {
	return inv.Outcome != Computed
}

var invert = gf2.Invert

// ResolveInverse inverts forward over GF(2). Failures never propagate as a
// bad matrix: the identity is substituted and the outcome records why.
func ResolveInverse(forward gf2.Matrix) Inverse {
	m, err := invert(forward)
	if err == nil {
		log.Debug(log.MatrixModule, "GF(2) inverse verified", "size", forward.Size())
		return Inverse{Matrix: m, Outcome: Computed}
	}

	outcome := SingularFallback
	var ierr *gf2.InconsistencyError
	if errors.As(err, &ierr) {
		outcome = InconsistentFallback
		log.Error(log.MatrixModule, "GF(2) inverse failed verification", "err", err)
	} else {
		log.Warn(log.MatrixModule, "forward matrix is not invertible", "err", err)
	}
	return Inverse{Matrix: gf2.Identity(forward.Size()), Outcome: outcome, Err: err}
}
