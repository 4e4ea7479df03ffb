package memconfig

import (
	"fmt"

	"github.com/colorfulnotion/memconfig/config"
)

// Identifier field shifts, one 4-bit slot per field.
const (
	ShiftSamsung   = 4 * 5
	ShiftChan      = 4 * 4
	ShiftDimm      = 4 * 3
	ShiftRank      = 4 * 2
	ShiftBankGroup = 4 * 1
	ShiftBank      = 4 * 0
)

// IdentifierFields are the configuration values packed into IDENTIFIER.
type IdentifierFields struct {
	Samsung   uint64
	Chan      uint64
	Dimm      uint64
	Rank      uint64
	BankGroup uint64
	Bank      uint64
}

// DefaultIdentifierFields matches config.Defaults.
func DefaultIdentifierFields() IdentifierFields {
	return IdentifierFields{Samsung: 1, Chan: 1, Dimm: 1, Rank: 2, BankGroup: 4, Bank: 4}
}

// IdentifierFieldsFrom reads the six values from c.
func IdentifierFieldsFrom(c *config.Config) IdentifierFields {
	return IdentifierFields{
		Samsung:   uint64(c.Int(config.KeySamsung)),
		Chan:      uint64(c.Int(config.KeyChan)),
		Dimm:      uint64(c.Int(config.KeyDimm)),
		Rank:      uint64(c.Int(config.KeyRank)),
		BankGroup: uint64(c.Int(config.KeyBankGroup)),
		Bank:      uint64(c.Int(config.KeyBank)),
	}
}

type identifierSlot struct {
	Name  string
	Shift uint
	Value uint64
}

func (f IdentifierFields) slots() []identifierSlot {
	return []identifierSlot{
		{"SAMSUNG", ShiftSamsung, f.Samsung},
		{"CHAN", ShiftChan, f.Chan},
		{"DIMM", ShiftDimm, f.Dimm},
		{"RANK", ShiftRank, f.Rank},
		{"BANKGROUP", ShiftBankGroup, f.BankGroup},
		{"BANK", ShiftBank, f.Bank},
	}
}

// PackIdentifier ORs every field in at its shift. Values are not masked: a
// value wider than 4 bits spills into the next slot up.
func PackIdentifier(f IdentifierFields) uint64 {
	var id uint64
	for _, s := range f.slots() {
		id |= s.Value << s.Shift
	}
	return id
}

// Overflowing lists the fields whose value does not fit their 4-bit slot.
func (f IdentifierFields) Overflowing() []string {
	var out []string
	for _, s := range f.slots() {
		if s.Value > 0xF {
			out = append(out, s.Name)
		}
	}
	return out
}

// Breakdown renders one line per field, as "NAME = v << s = packed (0x...)".
func (f IdentifierFields) Breakdown() []string {
	lines := make([]string, 0, 6)
	for _, s := range f.slots() {
		packed := s.Value << s.Shift
		lines = append(lines, fmt.Sprintf("%-10s = %d << %2d = %10d (0x%08X)", s.Name, s.Value, s.Shift, packed, packed))
	}
	return lines
}
