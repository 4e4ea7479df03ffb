// Package console is an interactive JavaScript shell over one emitted
// MemConfiguration.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dop251/goja"

	"github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memconfig"
)

const DefaultHistoryFile = "/tmp/memconfig_console_history.txt"

// Console evaluates expressions with decode, encode, linear, sameBank, hex
// and the cfg object bound.
type Console struct {
	vm  *goja.Runtime
	tr  *mapping.Translator
	out io.Writer
}

// New binds cfg into a fresh runtime. Output of print() goes to out.
func New(cfg memconfig.MemConfiguration, out io.Writer) (*Console, error) {
	tr, err := cfg.Translator()
	if err != nil {
		return nil, err
	}
	c := &Console{vm: goja.New(), tr: tr, out: out}

	raw, err := memconfig.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	c.vm.Set("cfg", obj["MemConfiguration"])
	c.vm.Set("decode", c.decode)
	c.vm.Set("encode", c.encode)
	c.vm.Set("linear", c.linear)
	c.vm.Set("sameBank", c.sameBank)
	c.vm.Set("hex", func(v goja.Value) string {
		return fmt.Sprintf("0x%x", c.address(v))
	})
	c.vm.Set("print", func(args ...goja.Value) {
		for _, arg := range args {
			fmt.Fprintln(c.out, arg.Export())
		}
	})
	return c, nil
}

// address accepts a number or a decimal/0x string.
func (c *Console) address(v goja.Value) uint64 {
	if s, ok := v.Export().(string); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
		if err != nil {
			panic(c.vm.NewTypeError("bad address %q", s))
		}
		return n
	}
	n := v.ToInteger()
	if n < 0 {
		panic(c.vm.NewTypeError("negative address %d", n))
	}
	return uint64(n)
}

func (c *Console) decode(v goja.Value) map[string]interface{} {
	a := c.tr.Decode(c.address(v))
	return map[string]interface{}{
		"rank":      int64(a.Rank),
		"bankgroup": int64(a.BankGroup),
		"bank":      int64(a.Bank),
		"row":       int64(a.Row),
		"col":       int64(a.Column),
	}
}

func (c *Console) encode(rank, bg, bank, row, col int64) int64 {
	return int64(c.tr.Encode(mapping.DRAMAddr{
		Rank:      uint64(rank),
		BankGroup: uint64(bg),
		Bank:      uint64(bank),
		Row:       uint64(row),
		Column:    uint64(col),
	}))
}

func (c *Console) linear(rank, bg, bank, row, col int64) int64 {
	return int64(c.tr.Linearize(mapping.DRAMAddr{
		Rank:      uint64(rank),
		BankGroup: uint64(bg),
		Bank:      uint64(bank),
		Row:       uint64(row),
		Column:    uint64(col),
	}))
}

func (c *Console) sameBank(p, q goja.Value) bool {
	return c.tr.SameBank(c.address(p), c.address(q))
}

// Eval runs one line. Objects are rendered as JSON.
func (c *Console) Eval(line string) (string, error) {
	v, err := c.vm.RunString(line)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "undefined", nil
	}
	switch x := v.Export().(type) {
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(x)
		if err != nil {
			return v.String(), nil
		}
		return string(b), nil
	}
	return v.String(), nil
}

// Run reads lines until EOF, interrupt or "exit".
func (c *Console) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "memconfig> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintf(c.out, "Translator over %d address bits. decode(a), encode(rk,bg,bk,row,col), linear(...), sameBank(p,q), hex(n), cfg\n", c.tr.Width())
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			break
		}
		out, err := c.Eval(line)
		if err != nil {
			log.Debug(log.ConsoleModule, "eval failed", "line", line, "err", err)
			fmt.Fprintln(c.out, "error:", err)
			continue
		}
		fmt.Fprintln(c.out, out)
	}
	return nil
}
