package memconfig

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/colorfulnotion/memconfig/gf2"
)

// StructureTree renders both matrices grouped by role: bank-select rows, row
// passthrough rows and column passthrough rows, each with the physical bits
// it reads.
func StructureTree(res *Result) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("MemConfiguration IDENTIFIER=0x%08X", res.Config.Identifier))

	fields := tree.AddBranch("Fields")
	for _, f := range res.Plan.Fields() {
		fields.AddNode(fmt.Sprintf("%-9s shift=%2d width=%2d mask=%d", f.Name, f.Shift, f.Width, f.Mask))
	}

	dram := tree.AddBranch(fmt.Sprintf("DRAM_MTX %dx%d", res.Layout.Width, res.Layout.Width))
	l := res.Layout
	addRows(dram.AddBranch(fmt.Sprintf("bank functions (rows 0-%d)", l.BankFunctions-1)), res.Forward, 0, l.BankFunctions)
	if l.RowBits > 0 {
		addRows(dram.AddBranch(fmt.Sprintf("row bits (rows %d-%d, %d bits)", l.RowStart(), l.ColumnStart()-1, l.RowBits)), res.Forward, l.RowStart(), l.ColumnStart())
	}
	if l.ColumnBits > 0 {
		addRows(dram.AddBranch(fmt.Sprintf("column bits (rows %d-%d, %d bits)", l.ColumnStart(), l.Width-1, l.ColumnBits)), res.Forward, l.ColumnStart(), l.Width)
	}

	addr := tree.AddBranch(fmt.Sprintf("ADDR_MTX (%s)", res.Inverse.Outcome))
	addRows(addr, res.Inverse.Matrix, 0, res.Inverse.Matrix.Size())
	return tree
}

func addRows(branch treeprint.Tree, m gf2.Matrix, from, to int) {
	for i := from; i < to; i++ {
		branch.AddNode(rowLine(m, i))
	}
}

func rowLine(m gf2.Matrix, i int) string {
	bits := m.SetBits(i)
	desc := fmt.Sprintf("sets bits %v", bits)
	if len(bits) == 1 {
		desc = fmt.Sprintf("sets bit %d", bits[0])
	}
	return fmt.Sprintf("Row %2d: %s = %10d (%s)", i, m.RowString(i), m.RowUint(i), desc)
}
