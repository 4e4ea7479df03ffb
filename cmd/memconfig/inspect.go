package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/colorfulnotion/memconfig/common"
	"github.com/colorfulnotion/memconfig/console"
	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memconfig"
	"github.com/colorfulnotion/memconfig/render"
)

const defaultMemConfig = "output/mem_config.json"

func newTranslateCmd() *cobra.Command {
	var memPath, encode string
	cmd := &cobra.Command{
		Use:   "translate [addr...]",
		Short: "Decode physical addresses, or encode a DRAM location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := memconfig.Read(memPath)
			if err != nil {
				return err
			}
			tr, err := cfg.Translator()
			if err != nil {
				return err
			}
			return runTranslate(tr, encode, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&memPath, "mem", defaultMemConfig, "mem_config.json to translate with")
	cmd.Flags().StringVar(&encode, "encode", "", "rank,bankgroup,bank,row,col to encode")
	return cmd
}

func runTranslate(tr *mapping.Translator, encode string, args []string, w io.Writer) error {
	if encode != "" {
		a, err := parseDRAMAddr(encode)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s -> 0x%x\n", a, tr.Encode(a))
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("no address given")
	}
	for _, s := range args {
		p, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("address %q: %w", s, err)
		}
		fmt.Fprintf(w, "0x%x -> %s\n", p, tr.Decode(p))
	}
	return nil
}

func parseDRAMAddr(s string) (mapping.DRAMAddr, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return mapping.DRAMAddr{}, fmt.Errorf("want rank,bankgroup,bank,row,col, got %q", s)
	}
	var v [5]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 0, 64)
		if err != nil {
			return mapping.DRAMAddr{}, fmt.Errorf("field %d of %q: %w", i, s, err)
		}
		v[i] = n
	}
	return mapping.DRAMAddr{Rank: v[0], BankGroup: v[1], Bank: v[2], Row: v[3], Column: v[4]}, nil
}

func newConsoleCmd() *cobra.Command {
	var memPath, history string
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive JavaScript console over a configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := memconfig.Read(memPath)
			if err != nil {
				return err
			}
			c, err := console.New(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return c.Run(history)
		},
	}
	cmd.Flags().StringVar(&memPath, "mem", defaultMemConfig, "mem_config.json to load")
	cmd.Flags().StringVar(&history, "history", console.DefaultHistoryFile, "Readline history file")
	return cmd
}

func newDiffCmd() *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "diff <a.json> <b.json>",
		Short: "Compare two emitted configurations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			b, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			return runDiff(a, b, !noColor, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func runDiff(a, b []byte, color bool, w io.Writer) error {
	cmp := memconfig.Compare(a, b)
	if cmp.Equal() {
		fmt.Fprintln(w, common.Colorize(color, common.ColorGreen, "identical"))
		return nil
	}
	fmt.Fprintln(w, common.Colorize(color, common.ColorYellow, cmp.Match.String()))
	d, err := memconfig.Diff(a, b, color)
	if err != nil {
		return err
	}
	fmt.Fprint(w, d)
	return nil
}

func newRenderCmd() *cobra.Command {
	var memPath, outPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write DRAM_MTX and ADDR_MTX heatmaps as HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := memconfig.Read(memPath)
			if err != nil {
				return err
			}
			if err := renderFile(outPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&memPath, "mem", defaultMemConfig, "mem_config.json to render")
	cmd.Flags().StringVarP(&outPath, "out", "o", "matrices.html", "HTML output path")
	return cmd
}

func renderFile(path string, cfg memconfig.MemConfiguration) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Render(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
