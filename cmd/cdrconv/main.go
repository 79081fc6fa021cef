package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "cdrconv",
		Short:         "Convert GPRS S-CDR files to delimited rows",
		Long:          "cdrconv decodes GPRS S-CDR TLV files into |-delimited rows and writes them to the configured sinks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (defaults to CDR_CONFIG or configs/example.yaml)")
	rootCmd.AddCommand(newConvertCmd(), newInspectCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("error:", err)
		os.Exit(1)
	}
}
