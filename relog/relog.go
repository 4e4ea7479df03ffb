// Package relog extracts bank functions from the reverse-engineering tool's
// RE.log output.
package relog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memerrors"
)

var (
	headerRe = regexp.MustCompile(`=== The (\d+) bank function ===`)
	tupleRe  = regexp.MustCompile(`\(\s*([\d,\s]+)\s*\)`)
)

// Source tells which bank functions a run used.
type Source int

const (
	SourceLog Source = iota
	SourceDefault
)

func (s Source) String() string {
	if s == SourceLog {
		return "log"
	}
	return "default"
}

// DefaultBankFunctions are the five functions of the reference DDR4 part,
// used when no RE.log is available.
func DefaultBankFunctions() []mapping.BankFunction {
	return []mapping.BankFunction{
		{16, 20, 23, 24, 27, 30, 33},
		{14, 18, 26, 29, 32},
		{17, 21, 22, 25, 28, 31},
		{15, 19},
		{9, 11, 13},
	}
}

// Parse reads the first "=== The N bank function ===" section and returns
// the N "( a, b, ... )" tuples that follow it, in order.
func Parse(r io.Reader) ([]mapping.BankFunction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	loc := headerRe.FindSubmatchIndex(data)
	if loc == nil {
		return nil, memerrors.ErrRNoBankSection
	}
	announced, err := strconv.Atoi(string(data[loc[2]:loc[3]]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memerrors.ErrRNoBankSection, err)
	}

	section := data[loc[1]:]
	matches := tupleRe.FindAllSubmatch(section, announced)
	if len(matches) < announced {
		return nil, fmt.Errorf("%w: announced %d, found %d", memerrors.ErrRShortSection, announced, len(matches))
	}

	funcs := make([]mapping.BankFunction, 0, announced)
	for _, m := range matches {
		f, err := parseTuple(m[1])
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, f)
	}
	return funcs, nil
}

func parseTuple(b []byte) (mapping.BankFunction, error) {
	var f mapping.BankFunction
	for _, field := range bytes.Split(b, []byte(",")) {
		s := strings.TrimSpace(string(field))
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("bank function %q: %w", b, err)
		}
		f = append(f, v)
	}
	return f, nil
}

func ParseFile(path string) ([]mapping.BankFunction, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	funcs, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, f := range funcs {
		log.Debug(log.RELogModule, "bank function", "index", i, "bits", f.String())
	}
	log.Info(log.RELogModule, "Bank functions parsed", "path", path, "count", len(funcs))
	return funcs, nil
}

// Load parses path, falling back to DefaultBankFunctions only when
// allowDefault is set. The returned Source says which one was used.
func Load(path string, allowDefault bool) ([]mapping.BankFunction, Source, error) {
	funcs, err := ParseFile(path)
	if err == nil {
		return funcs, SourceLog, nil
	}
	if !allowDefault {
		return nil, SourceLog, err
	}
	log.Warn(log.RELogModule, "Using default bank functions", "path", path, "err", err)
	return DefaultBankFunctions(), SourceDefault, nil
}
