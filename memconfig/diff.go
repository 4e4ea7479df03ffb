package memconfig

import (
	"encoding/json"

	"github.com/nsf/jsondiff"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Comparison classifies how two emitted configurations relate.
type Comparison struct {
	Match jsondiff.Difference
	// Summary is the compact annotated rendering from jsondiff.
	Summary string
}

func (c Comparison) Equal() bool {
	return c.Match == jsondiff.FullMatch
}

// Compare classifies b against a. SupersetMatch means b carries every key of
// a plus extra ones.
func Compare(a, b []byte) Comparison {
	opts := jsondiff.DefaultConsoleOptions()
	d, s := jsondiff.Compare(a, b, &opts)
	return Comparison{Match: d, Summary: s}
}

// Diff renders the ASCII delta between two configurations, or "" when they
// are equal.
func Diff(a, b []byte, coloring bool) (string, error) {
	delta, err := gojsondiff.New().Compare(a, b)
	if err != nil {
		return "", err
	}
	if !delta.Modified() {
		return "", nil
	}

	var left map[string]interface{}
	if err := json.Unmarshal(a, &left); err != nil {
		return "", err
	}
	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       coloring,
	})
	return f.Format(delta)
}
