package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/app"
	cfgpkg "github.com/taoyao-code/cdr-converter/internal/config"
	"github.com/taoyao-code/cdr-converter/internal/converter"
	"github.com/taoyao-code/cdr-converter/internal/logging"
	"github.com/taoyao-code/cdr-converter/internal/scanner"
)

func newConvertCmd() *cobra.Command {
	var inputDir string
	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert the given files, or one pass over the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			if inputDir != "" {
				cfg.Scanner.InputDir = inputDir
			}
			log, err := logging.InitLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			_, appm := app.NewMetrics()
			p, err := app.BuildPipeline(cmd.Context(), cfg, log, appm)
			if err != nil {
				return err
			}
			defer p.Close()

			var sum scanner.Summary
			if len(args) == 0 {
				sum, err = p.Scanner.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				for _, path := range args {
					run, err := p.Converter.ConvertFile(cmd.Context(), path)
					sum.Files++
					switch run.Status {
					case converter.StatusOK:
						sum.OK++
					case converter.StatusPartial:
						sum.Partial++
					case converter.StatusSkipped:
						sum.Skipped++
					default:
						sum.Failed++
					}
					if err != nil {
						log.Error("conversion failed", zap.String("file", path), zap.Error(err))
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "files=%d ok=%d partial=%d skipped=%d failed=%d\n",
				sum.Files, sum.OK, sum.Partial, sum.Skipped, sum.Failed)
			if sum.Failed > 0 {
				return fmt.Errorf("%d file(s) failed", sum.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputDir, "input", "", "override scanner.inputDir")
	return cmd
}
