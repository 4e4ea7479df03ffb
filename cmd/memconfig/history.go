package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/colorfulnotion/memconfig/memconfig"
	"github.com/colorfulnotion/memconfig/storage"
)

func newHistoryCmd() *cobra.Command {
	var archiveDir string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect archived generation runs",
	}
	cmd.PersistentFlags().StringVar(&archiveDir, "archive", "memconfig-archive", "LevelDB archive directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := storage.OpenArchive(archiveDir)
			if err != nil {
				return err
			}
			defer a.Close()
			return listRecords(a, cmd.OutOrStdout())
		},
	}
	showCmd := &cobra.Command{
		Use:   "show <fingerprint>",
		Short: "Print one archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := storage.OpenArchive(archiveDir)
			if err != nil {
				return err
			}
			defer a.Close()
			return showRecord(a, args[0], cmd.OutOrStdout())
		},
	}
	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func listRecords(a *storage.Archive, w io.Writer) error {
	records, err := a.List()
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  IDENTIFIER=0x%08X  functions=%d (%s)  inverse=%s  commit=%s\n",
			r.Fingerprint.String_short(), r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Config.Identifier, len(r.BankFunctions), r.Source, r.Inverse, r.Commit)
	}
	return nil
}

func showRecord(a *storage.Archive, fp string, w io.Writer) error {
	r, err := a.Lookup(fp)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "fingerprint %s\ncreated     %s\ncommit      %s\ninverse     %s\n",
		r.Fingerprint.Hex(), r.CreatedAt.Format("2006-01-02 15:04:05"), r.Commit, r.Inverse)
	for i, f := range r.BankFunctions {
		fmt.Fprintf(w, "function %d  %s\n", i, f)
	}
	return memconfig.Encode(w, r.Config)
}
