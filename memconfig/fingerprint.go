package memconfig

import (
	"github.com/colorfulnotion/memconfig/common"
)

// Fingerprint identifies a generation input: the bank functions in order
// and every value that shapes the record. Equal inputs always produce the
// same configuration, so the fingerprint keys the archive.
func Fingerprint(in Input) common.Hash {
	var buf []byte
	put := func(v uint64) { buf = append(buf, common.Uint64ToBytes(v)...) }

	put(uint64(len(in.BankFunctions)))
	for _, f := range in.BankFunctions {
		put(uint64(len(f)))
		for _, b := range f {
			put(uint64(b))
		}
	}
	put(uint64(in.Cardinalities.Rank))
	put(uint64(in.Cardinalities.BankGroup))
	put(uint64(in.Cardinalities.Bank))
	for _, s := range in.Identifier.slots() {
		put(s.Value)
	}
	return common.Blake2Hash(buf)
}
