package relog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `[+] mapping: 0x7f0000000000, mapping_size: 0x40000000
[+] Row conflicts threshold: 340
=== BANK bits ===
9, 11, 13, 14, 15, 16, 17
=== The 5 bank function ===
( 16, 20, 23, 24, 27, 30, 33 )
( 14, 18, 26, 29, 32 )
( 17, 21, 22, 25, 28, 31 )
( 15, 19 )
( 9, 11, 13 )
[+] done!
( 1, 2 )
`

func TestParse(t *testing.T) {
	funcs, err := Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)
	assert.Equal(t, DefaultBankFunctions(), funcs)
}

func TestParseAnnouncedCount(t *testing.T) {
	funcs, err := Parse(strings.NewReader("=== The 2 bank function ===\n(6,13)\n( 7, 14 )\n( 8 )\n"))
	require.NoError(t, err)
	assert.Equal(t, []mapping.BankFunction{{6, 13}, {7, 14}}, funcs)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("=== BANK bits ===\n9, 11\n"))
	assert.ErrorIs(t, err, memerrors.ErrRNoBankSection)

	_, err = Parse(strings.NewReader("=== The 3 bank function ===\n( 1, 2 )\n"))
	assert.ErrorIs(t, err, memerrors.ErrRShortSection)
}

func TestLoadFallback(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "RE.log")

	_, _, err := Load(missing, false)
	assert.Error(t, err)

	funcs, src, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, src)
	assert.Equal(t, DefaultBankFunctions(), funcs)

	require.NoError(t, os.WriteFile(missing, []byte(sampleLog), 0o644))
	funcs, src, err = Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, SourceLog, src)
	assert.Len(t, funcs, 5)
}
