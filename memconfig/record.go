package memconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/colorfulnotion/memconfig/gf2"
	"github.com/colorfulnotion/memconfig/layout"
	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memerrors"
)

// MemConfiguration is the record consumed by the simulator. Field order is
// the JSON key order.
type MemConfiguration struct {
	Identifier uint64   `json:"IDENTIFIER"`
	DramMtx    []uint64 `json:"DRAM_MTX"`
	AddrMtx    []uint64 `json:"ADDR_MTX"`
	ScShift    int      `json:"SC_SHIFT"`
	ScMask     uint64   `json:"SC_MASK"`
	RkShift    int      `json:"RK_SHIFT"`
	RkMask     uint64   `json:"RK_MASK"`
	BgShift    int      `json:"BG_SHIFT"`
	BgMask     uint64   `json:"BG_MASK"`
	BkShift    int      `json:"BK_SHIFT"`
	BkMask     uint64   `json:"BK_MASK"`
	RowShift   int      `json:"ROW_SHIFT"`
	RowMask    uint64   `json:"ROW_MASK"`
	ColShift   int      `json:"COL_SHIFT"`
	ColMask    uint64   `json:"COL_MASK"`
}

type envelope struct {
	MemConfiguration MemConfiguration `json:"MemConfiguration"`
}

// NewMemConfiguration assembles the record from its derived parts.
func NewMemConfiguration(id uint64, plan layout.FieldPlan, dram, addr gf2.Matrix) MemConfiguration {
	return MemConfiguration{
		Identifier: id,
		DramMtx:    dram.Rows(),
		AddrMtx:    addr.Rows(),
		ScShift:    plan.SubChannel.Shift,
		ScMask:     plan.SubChannel.Mask,
		RkShift:    plan.Rank.Shift,
		RkMask:     plan.Rank.Mask,
		BgShift:    plan.BankGroup.Shift,
		BgMask:     plan.BankGroup.Mask,
		BkShift:    plan.Bank.Shift,
		BkMask:     plan.Bank.Mask,
		RowShift:   plan.Row.Shift,
		RowMask:    plan.Row.Mask,
		ColShift:   plan.Column.Shift,
		ColMask:    plan.Column.Mask,
	}
}

// Plan rebuilds the field plan from the emitted shift/mask pairs.
func (c MemConfiguration) Plan() layout.FieldPlan {
	return layout.FieldPlan{
		SubChannel: layout.FieldFromMask(c.ScShift, c.ScMask),
		Rank:       layout.FieldFromMask(c.RkShift, c.RkMask),
		BankGroup:  layout.FieldFromMask(c.BgShift, c.BgMask),
		Bank:       layout.FieldFromMask(c.BkShift, c.BkMask),
		Row:        layout.FieldFromMask(c.RowShift, c.RowMask),
		Column:     layout.FieldFromMask(c.ColShift, c.ColMask),
	}
}

// Translator returns an address translator over the record's matrices.
func (c MemConfiguration) Translator() (*mapping.Translator, error) {
	return mapping.NewTranslator(c.DramMtx, c.AddrMtx, c.Plan())
}

// Matrices decodes DRAM_MTX and ADDR_MTX.
func (c MemConfiguration) Matrices() (dram, addr gf2.Matrix, err error) {
	n := len(c.DramMtx)
	if n == 0 || n > gf2.MaxSize || len(c.AddrMtx) != n {
		err = fmt.Errorf("%w: DRAM_MTX has %d rows, ADDR_MTX has %d", memerrors.ErrMDimensionMismatch, n, len(c.AddrMtx))
		return
	}
	if dram, err = gf2.FromRows(len(c.DramMtx), c.DramMtx); err != nil {
		return
	}
	addr, err = gf2.FromRows(len(c.AddrMtx), c.AddrMtx)
	return
}

// Encode writes {"MemConfiguration": {...}} with two-space indentation.
func Encode(w io.Writer, c MemConfiguration) error {
	b, err := Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func Marshal(c MemConfiguration) ([]byte, error) {
	return json.MarshalIndent(envelope{MemConfiguration: c}, "", "  ")
}

func Unmarshal(data []byte) (MemConfiguration, error) {
	var e envelope
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return MemConfiguration{}, err
	}
	if len(e.MemConfiguration.DramMtx) == 0 {
		return MemConfiguration{}, fmt.Errorf("no MemConfiguration.DRAM_MTX")
	}
	return e.MemConfiguration, nil
}

// Write stores c at path, creating parent directories.
func Write(path string, c MemConfiguration) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func Read(path string) (MemConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MemConfiguration{}, err
	}
	c, err := Unmarshal(data)
	if err != nil {
		return MemConfiguration{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
