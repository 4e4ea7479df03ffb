// Package config reads the generator's config.json: the RE.log location and
// the channel/DIMM/rank/bankgroup/bank/vendor values.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/colorfulnotion/memconfig/layout"
	"github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/memerrors"
	"golang.org/x/exp/slices"
)

const (
	KeyReverse   = "reverse"
	KeyChan      = "CHAN"
	KeyDimm      = "DIMM"
	KeyRank      = "RANK"
	KeyBankGroup = "BANKGROUP"
	KeyBank      = "BANK"
	KeySamsung   = "SAMSUNG"

	DefaultReversePath = "../reverse/output/RE.log"
)

var defaultValues = map[string]int{
	KeyChan:      1,
	KeyDimm:      1,
	KeyRank:      2,
	KeyBankGroup: 4,
	KeyBank:      4,
	KeySamsung:   1,
}

// Origin tells whether a value was read from the file or defaulted.
type Origin int

const (
	OriginDefault Origin = iota
	OriginFile
)

func (o Origin) String() string {
	if o == OriginFile {
		return "file"
	}
	return "default"
}

type Value struct {
	Int    int
	Origin Origin
}

// Config is an immutable view of config.json.
type Config struct {
	Path    string
	Reverse string
	// ReverseOrigin is OriginDefault when the file has no "reverse" key.
	ReverseOrigin Origin
	values        map[string]Value
}

// Defaults is the configuration used when no config.json is available.
func Defaults() *Config {
	c := &Config{Reverse: DefaultReversePath, values: make(map[string]Value, len(defaultValues))}
	for k, v := range defaultValues {
		c.values[k] = Value{Int: v, Origin: OriginDefault}
	}
	return c
}

// Load reads path. A missing file is memerrors.ErrCNotFound so the caller
// decides whether Defaults is acceptable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, memerrors.ErrCNotFound)
		}
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	log.Info(log.ConfigModule, "Configuration loaded", "path", path, "defaulted", c.Defaulted())
	return c, nil
}

// Parse decodes config.json content. Unknown keys are ignored.
func Parse(data []byte) (*Config, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", memerrors.ErrCInvalid, err)
	}

	c := Defaults()
	if r, ok := raw[KeyReverse]; ok {
		if err := json.Unmarshal(r, &c.Reverse); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", memerrors.ErrCInvalid, KeyReverse, err)
		}
		c.ReverseOrigin = OriginFile
	}
	for k := range defaultValues {
		r, ok := raw[k]
		if !ok {
			continue
		}
		var v int
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", memerrors.ErrCInvalid, k, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %q = %d", memerrors.ErrCNegative, k, v)
		}
		c.values[k] = Value{Int: v, Origin: OriginFile}
	}
	return c, nil
}

// Get returns the value for key; unknown keys yield a zero Value.
func (c *Config) Get(key string) Value {
	return c.values[key]
}

func (c *Config) Int(key string) int {
	return c.values[key].Int
}

// Defaulted lists, sorted, the keys that fell back to their default.
func (c *Config) Defaulted() []string {
	var out []string
	for k, v := range c.values {
		if v.Origin == OriginDefault {
			out = append(out, k)
		}
	}
	if c.ReverseOrigin == OriginDefault {
		out = append(out, KeyReverse)
	}
	slices.Sort(out)
	return out
}

func (c *Config) Cardinalities() layout.Cardinalities {
	return layout.Cardinalities{
		Rank:      c.Int(KeyRank),
		BankGroup: c.Int(KeyBankGroup),
		Bank:      c.Int(KeyBank),
	}
}

// WithReverse returns a copy of c reading bank functions from path.
func (c *Config) WithReverse(path string) *Config {
	cp := *c
	cp.values = make(map[string]Value, len(c.values))
	for k, v := range c.values {
		cp.values[k] = v
	}
	cp.Reverse = path
	cp.ReverseOrigin = OriginFile
	return &cp
}
