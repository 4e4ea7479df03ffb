package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/colorfulnotion/memconfig/common"
	"github.com/colorfulnotion/memconfig/config"
	log "github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/memconfig"
	"github.com/colorfulnotion/memconfig/memerrors"
	"github.com/colorfulnotion/memconfig/relog"
	"github.com/colorfulnotion/memconfig/storage"
)

type generateOptions struct {
	configPath    string
	outPath       string
	reversePath   string
	strict        bool
	allowDefaults bool
	archiveDir    string
	tree          bool
}

func newGenerateCmd() *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build mem_config.json from config.json and RE.log",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runGenerate(cmd.Context(), o, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&o.configPath, "config", "config.json", "Generator config file")
	cmd.Flags().StringVarP(&o.outPath, "out", "o", "output/mem_config.json", "Output path")
	cmd.Flags().StringVar(&o.reversePath, "reverse", "", "RE.log path (overrides the config's \"reverse\")")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Fail instead of emitting an identity ADDR_MTX")
	cmd.Flags().BoolVar(&o.allowDefaults, "allow-defaults", false, "Use built-in defaults when config.json or RE.log is missing")
	cmd.Flags().StringVar(&o.archiveDir, "archive", "", "LevelDB directory to archive the run in")
	cmd.Flags().BoolVar(&o.tree, "tree", false, "Print the matrix structure tree")
	return cmd
}

func loadConfig(path string, allowDefaults bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !allowDefaults || !errors.Is(err, memerrors.ErrCNotFound) {
		return nil, err
	}
	log.Warn(log.ConfigModule, "Using default configuration", "path", path)
	return config.Defaults(), nil
}

func runGenerate(ctx context.Context, o generateOptions, w io.Writer) (*memconfig.Result, error) {
	cfg, err := loadConfig(o.configPath, o.allowDefaults)
	if err != nil {
		return nil, err
	}
	if o.reversePath != "" {
		cfg = cfg.WithReverse(o.reversePath)
	}

	funcs, src, err := relog.Load(cfg.Reverse, o.allowDefaults)
	if err != nil {
		return nil, err
	}

	in := memconfig.Input{
		BankFunctions: funcs,
		Cardinalities: cfg.Cardinalities(),
		Identifier:    memconfig.IdentifierFieldsFrom(cfg),
	}
	res, err := memconfig.Generate(ctx, in, memconfig.Options{Strict: o.strict})
	if err != nil {
		return nil, err
	}
	if err := memconfig.Write(o.outPath, res.Config); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "Wrote %s (IDENTIFIER 0x%08X, bank functions from %s, ADDR_MTX %s)\n",
		o.outPath, res.Config.Identifier, src, res.Inverse.Outcome)
	if d := cfg.Defaulted(); len(d) > 0 {
		fmt.Fprintf(w, "Defaulted config keys: %v\n", d)
	}
	for _, dr := range res.DroppedIndices {
		fmt.Fprintf(w, "Ignored bit %d of bank function %d (outside %d-bit matrix)\n", dr.Bit, dr.Function, res.Layout.Width)
	}
	if o.tree {
		fmt.Fprintln(w, memconfig.StructureTree(res).String())
	}

	if o.archiveDir != "" {
		fp, err := archiveRun(o.archiveDir, in, src, res)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "Archived as %s\n", fp.String_short())
	}
	return res, nil
}

func archiveRun(dir string, in memconfig.Input, src relog.Source, res *memconfig.Result) (common.Hash, error) {
	a, err := storage.OpenArchive(dir)
	if err != nil {
		return common.Hash{}, err
	}
	defer a.Close()

	r := storage.Record{
		Fingerprint:   memconfig.Fingerprint(in),
		CreatedAt:     time.Now().UTC(),
		Commit:        common.GetCommitHash(),
		BankFunctions: res.BankFunctions,
		Source:        src.String(),
		Inverse:       res.Inverse.Outcome.String(),
		Config:        res.Config,
	}
	return r.Fingerprint, a.Put(r)
}
