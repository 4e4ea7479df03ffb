package common

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hash is a BLAKE2b-256 digest.
type Hash [32]byte

func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String_short returns the first 8 hex digits.
func (h Hash) String_short() string {
	return h.Hex()[:8]
}

// ParseHash accepts a full hex digest with or without a 0x prefix.
func ParseHash(s string) (Hash, bool) {
	var h Hash
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

func Blake2Hash(data []byte) Hash {
	return Hash(blake2b.Sum256(data))
}

func Uint64ToBytes(val uint64) []byte {
	bytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(bytes, val)
	return bytes
}
