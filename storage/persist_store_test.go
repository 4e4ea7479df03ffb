package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorfulnotion/memconfig/memconfig"
	"github.com/colorfulnotion/memconfig/memerrors"
	"github.com/colorfulnotion/memconfig/relog"
)

func TestPersistenceStore_BasicOperations(t *testing.T) {
	ps, err := NewMemoryPersistenceStore()
	require.NoError(t, err)
	defer ps.Close()

	key := []byte("test-key")
	require.NoError(t, ps.Put(key, []byte("test-value")))

	got, found, err := ps.Get(key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "test-value", string(got))

	_, found, err = ps.Get([]byte("non-existent"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ps.Put(key, []byte("replaced")))
	got, _, err = ps.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))
}

func TestPersistenceStore_GetWithPrefix(t *testing.T) {
	ps, err := NewMemoryPersistenceStore()
	require.NoError(t, err)
	defer ps.Close()

	require.NoError(t, ps.Put([]byte("cfg/b"), []byte("2")))
	require.NoError(t, ps.Put([]byte("cfg/a"), []byte("1")))
	require.NoError(t, ps.Put([]byte("other"), []byte("3")))

	kvs, err := ps.GetWithPrefix([]byte("cfg/"))
	require.NoError(t, err)
	require.Len(t, kvs, 2)
	assert.Equal(t, "cfg/a", string(kvs[0][0]))
	assert.Equal(t, "2", string(kvs[1][1]))
}

func newRecord(t *testing.T) Record {
	t.Helper()
	in := memconfig.DefaultInput(relog.DefaultBankFunctions())
	res, err := memconfig.Generate(context.Background(), in, memconfig.Options{})
	require.NoError(t, err)
	return Record{
		Fingerprint:   memconfig.Fingerprint(in),
		CreatedAt:     time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Commit:        "unknown",
		BankFunctions: res.BankFunctions,
		Source:        relog.SourceDefault.String(),
		Inverse:       res.Inverse.Outcome.String(),
		Config:        res.Config,
	}
}

func TestArchive(t *testing.T) {
	a, err := OpenArchive("")
	require.NoError(t, err)
	defer a.Close()

	r := newRecord(t)
	require.NoError(t, a.Put(r))

	got, err := a.Get(r.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	got, err = a.Lookup(r.Fingerprint.String_short())
	require.NoError(t, err)
	assert.Equal(t, r.Config, got.Config)

	got, err = a.Lookup("0X" + strings.ToUpper(r.Fingerprint.Hex()[:6]))
	require.NoError(t, err)
	assert.Equal(t, r.Fingerprint, got.Fingerprint)

	got, err = a.Lookup("0x" + r.Fingerprint.Hex())
	require.NoError(t, err)
	assert.Equal(t, r.Fingerprint, got.Fingerprint)

	_, err = a.Lookup("0x")
	assert.ErrorIs(t, err, memerrors.ErrSNotArchived)

	all, err := a.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = a.Lookup("ffffffff")
	if r.Fingerprint.String_short() != "ffffffff" {
		assert.ErrorIs(t, err, memerrors.ErrSNotArchived)
	}
}

func TestArchiveOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	a, err := OpenArchive(dir)
	require.NoError(t, err)
	r := newRecord(t)
	require.NoError(t, a.Put(r))
	require.NoError(t, a.Close())

	a, err = OpenArchive(dir)
	require.NoError(t, err)
	defer a.Close()
	got, err := a.Get(r.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, r.Fingerprint, got.Fingerprint)
}
