package mapping

import (
	"fmt"
	"math/bits"

	"github.com/colorfulnotion/memconfig/layout"
	"github.com/colorfulnotion/memconfig/memerrors"
)

// DRAMAddr is a decoded DRAM location.
type DRAMAddr struct {
	Rank      uint64
	BankGroup uint64
	Bank      uint64
	Row       uint64
	Column    uint64
}

func (a DRAMAddr) String() string {
	return fmt.Sprintf("rank=%d bankgroup=%d bank=%d row=%d col=%d", a.Rank, a.BankGroup, a.Bank, a.Row, a.Column)
}

// Translator converts between physical addresses and DRAM locations with an
// emitted DRAM_MTX / ADDR_MTX pair. Physical bits at or above the matrix
// width are outside the mapping and are ignored.
type Translator struct {
	width int
	dram  []uint64
	addr  []uint64
	plan  layout.FieldPlan
}

func NewTranslator(dram, addr []uint64, plan layout.FieldPlan) (*Translator, error) {
	if len(dram) == 0 || len(dram) != len(addr) || len(dram) > 64 {
		return nil, fmt.Errorf("%w: DRAM_MTX has %d rows, ADDR_MTX %d", memerrors.ErrMDimensionMismatch, len(dram), len(addr))
	}
	return &Translator{
		width: len(dram),
		dram:  append([]uint64(nil), dram...),
		addr:  append([]uint64(nil), addr...),
		plan:  plan,
	}, nil
}

// Width is the number of physical address bits the translator maps.
func (t *Translator) Width() int { return t.width }

func (t *Translator) widthMask() uint64 {
	if t.width == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(t.width)) - 1
}

// apply multiplies v by a matrix given as MSB-first row masks.
func apply(rows []uint64, v uint64) uint64 {
	var res uint64
	for _, r := range rows {
		res <<= 1
		res |= uint64(bits.OnesCount64(v&r) & 1)
	}
	return res
}

// Decode maps a physical address to its DRAM location.
func (t *Translator) Decode(phys uint64) DRAMAddr {
	lin := apply(t.dram, phys&t.widthMask())
	return DRAMAddr{
		Rank:      t.plan.Rank.Extract(lin),
		BankGroup: t.plan.BankGroup.Extract(lin),
		Bank:      t.plan.Bank.Extract(lin),
		Row:       t.plan.Row.Extract(lin),
		Column:    t.plan.Column.Extract(lin),
	}
}

// Linearize packs a into the linear address layout of the plan.
func (t *Translator) Linearize(a DRAMAddr) uint64 {
	return t.plan.Rank.Place(a.Rank) |
		t.plan.BankGroup.Place(a.BankGroup) |
		t.plan.Bank.Place(a.Bank) |
		t.plan.Row.Place(a.Row) |
		t.plan.Column.Place(a.Column)
}

// Encode maps a DRAM location back to the physical address within the
// matrix width.
func (t *Translator) Encode(a DRAMAddr) uint64 {
	return apply(t.addr, t.Linearize(a)&t.widthMask())
}

// SameBank reports whether two physical addresses select the same
// rank/bankgroup/bank, the property bank-conflict timing relies on.
func (t *Translator) SameBank(p, q uint64) bool {
	a, b := t.Decode(p), t.Decode(q)
	return a.Rank == b.Rank && a.BankGroup == b.BankGroup && a.Bank == b.Bank
}
