// memconfig derives the DRAM address-mapping configuration (DRAM_MTX,
// ADDR_MTX and field shifts/masks) from reverse-engineered bank functions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/colorfulnotion/memconfig/common"
	log "github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/memerrors"
	"github.com/colorfulnotion/memconfig/telemetry"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine prefixes err with its memerrors code and description when it
// wraps one.
func errorLine(err error) string {
	s := memerrors.Sentinel(err)
	if s == nil {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Error [%s] %s\n  %v", memerrors.GetErrorCodeWithName(s), memerrors.GetErrorDesc(s), err)
}

func newRootCmd() *cobra.Command {
	var (
		logLevel     string
		logFormat    string
		debug        string
		otlpEndpoint string
		shutdown     func(context.Context) error
	)

	rootCmd := &cobra.Command{
		Use:           "memconfig",
		Short:         "Generate DRAM address-mapping configurations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch logFormat {
			case "text":
				log.InitLogger(logLevel)
			case "json":
				log.InitJSONLogger(logLevel)
			default:
				return fmt.Errorf("unknown log format %q", logFormat)
			}
			if debug != "" {
				log.EnableModules(debug)
			}
			var err error
			shutdown, err = telemetry.Init(cmd.Context(), otlpEndpoint, Version)
			if err != nil {
				return fmt.Errorf("telemetry: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(context.Background())
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&debug, "debug", "", "Debug modules to enable (e.g. matrix,layout or all)")
	rootCmd.PersistentFlags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP collector for traces (host:port)")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newTranslateCmd(),
		newConsoleCmd(),
		newDiffCmd(),
		newRenderCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "memconfig %s (commit %s, built %s)\n", Version, common.GetCommitHash(), BuildTime)
		},
	}
}
