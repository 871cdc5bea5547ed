package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscout/emailscout/internal/model"
	"github.com/leadscout/emailscout/internal/pipeline"
	"github.com/leadscout/emailscout/internal/validate"
	"github.com/leadscout/emailscout/internal/workbook"
)

var (
	deriveInput     string
	deriveSheet     string
	deriveSkipRows  int
	deriveSuffix    string
	deriveSeparator string
	deriveOutSheet  string
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive and validate emails from an existing workbook of titles",
	Long:  "Reads (title, link) rows from an xlsx sheet, runs the parse/synthesize/classify pipeline offline, and prints the result rows. No search API calls are made.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		records, err := workbook.ReadRecords(deriveInput, workbook.ReadOptions{
			SheetName: deriveSheet,
			SkipRows:  deriveSkipRows,
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			zap.L().Info("no records found in workbook")
			return nil
		}

		conv := model.NamingConvention{
			Separator:    deriveSeparator,
			DomainSuffix: deriveSuffix,
		}
		if conv.Separator == "" {
			conv.Separator = cfg.Convention.Separator
		}

		deriver := pipeline.NewDeriver(
			validate.NewClassifier(validate.NewNetResolver(), time.Duration(cfg.Validate.MXTimeoutSecs)*time.Second),
			pipeline.WithConcurrency(cfg.Validate.Concurrency),
		)

		result, err := deriver.Run(ctx, records, conv)
		if err != nil {
			return eris.Wrap(err, "derive")
		}

		zap.L().Info("derivation complete",
			zap.Int("records", len(records)),
			zap.Int("rows", len(result.Rows)),
			zap.Int("skipped", result.Skipped),
			zap.Int("deduped", result.Deduped),
		)

		if deriveOutSheet != "" {
			if err := workbook.WriteResults(cfg.Workbook.Path, deriveOutSheet, result.Rows); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Rows)
	},
}

func init() {
	deriveCmd.Flags().StringVar(&deriveInput, "input", "", "input xlsx with Title/Link columns (required)")
	deriveCmd.Flags().StringVar(&deriveSheet, "sheet", "", "input sheet name (default: first sheet)")
	deriveCmd.Flags().IntVar(&deriveSkipRows, "skip-rows", 1, "header rows to skip")
	deriveCmd.Flags().StringVar(&deriveSuffix, "suffix", "", `email domain suffix, e.g. "@acme.com" (required)`)
	deriveCmd.Flags().StringVar(&deriveSeparator, "separator", "", `first-last separator ("." or "_")`)
	deriveCmd.Flags().StringVar(&deriveOutSheet, "out-sheet", "", "if set, also write results to this sheet of the configured workbook")
	_ = deriveCmd.MarkFlagRequired("input")
	_ = deriveCmd.MarkFlagRequired("suffix")
	rootCmd.AddCommand(deriveCmd)
}
