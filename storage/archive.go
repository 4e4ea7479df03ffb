package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/colorfulnotion/memconfig/common"
	"github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memconfig"
	"github.com/colorfulnotion/memconfig/memerrors"
)

var recordPrefix = []byte("cfg/")

// Record is one archived generation run.
type Record struct {
	Fingerprint   common.Hash                `json:"fingerprint"`
	CreatedAt     time.Time                  `json:"created_at"`
	Commit        string                     `json:"commit"`
	BankFunctions []mapping.BankFunction     `json:"bank_functions"`
	Source        string                     `json:"source"`
	Inverse       string                     `json:"inverse"`
	Config        memconfig.MemConfiguration `json:"config"`
}

// Archive keeps generated configurations keyed by input fingerprint.
type Archive struct {
	store *PersistenceStore
}

// OpenArchive opens the archive at path; an empty path is in-memory.
func OpenArchive(path string) (*Archive, error) {
	ps, err := NewPersistenceStore(path)
	if err != nil {
		return nil, err
	}
	return &Archive{store: ps}, nil
}

func (a *Archive) Close() error {
	return a.store.Close()
}

// Put stores r, replacing an earlier record with the same fingerprint.
func (a *Archive) Put(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := a.store.Put(hashKey(recordPrefix, r.Fingerprint), data); err != nil {
		return fmt.Errorf("archive %s: %w", r.Fingerprint.String_short(), err)
	}
	log.Debug(log.ArchiveModule, "record stored", "fingerprint", r.Fingerprint.Hex())
	return nil
}

func (a *Archive) Get(fp common.Hash) (Record, error) {
	data, found, err := a.store.Get(hashKey(recordPrefix, fp))
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, fmt.Errorf("%s: %w", fp.Hex(), memerrors.ErrSNotArchived)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("archive %s: %w", fp.String_short(), err)
	}
	return r, nil
}

// List returns every record ordered by fingerprint.
func (a *Archive) List() ([]Record, error) {
	kvs, err := a.store.GetWithPrefix(recordPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(kvs))
	for _, kv := range kvs {
		var r Record
		if err := json.Unmarshal(kv[1], &r); err != nil {
			return nil, fmt.Errorf("archive key %x: %w", kv[0], err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Lookup resolves a full or abbreviated hex fingerprint, with or without 0x.
func (a *Archive) Lookup(prefix string) (Record, error) {
	if fp, ok := common.ParseHash(prefix); ok {
		return a.Get(fp)
	}
	hexPrefix := strings.ToLower(prefix)
	if len(hexPrefix) >= 2 && hexPrefix[:2] == "0x" {
		hexPrefix = hexPrefix[2:]
	}
	all, err := a.List()
	if err != nil {
		return Record{}, err
	}
	var hit []Record
	for _, r := range all {
		if hexPrefix != "" && strings.HasPrefix(r.Fingerprint.Hex(), hexPrefix) {
			hit = append(hit, r)
		}
	}
	switch len(hit) {
	case 0:
		return Record{}, fmt.Errorf("%s: %w", prefix, memerrors.ErrSNotArchived)
	case 1:
		return hit[0], nil
	default:
		return Record{}, fmt.Errorf("fingerprint prefix %s is ambiguous (%d records)", prefix, len(hit))
	}
}
