package main

import (
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/extract"
	"github.com/odens-ab/pricing-cli/internal/pdf"
)

var extractInput string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract historical quotes from PDF offer documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths, err := filepath.Glob(filepath.Join(extractInput, "*.pdf"))
		if err != nil {
			return eris.Wrap(err, "glob pdf input")
		}
		if len(paths) == 0 {
			return eris.Errorf("no PDF files found in %s", extractInput)
		}
		sort.Strings(paths)

		batch := extract.NewBatch(
			pdf.NewPdfToText(cfg.Extract.PdfToTextPath),
			extract.NewParser(cfg.Tenant),
			cfg.Extract.MaxConcurrent,
		)
		result, err := batch.Run(ctx, paths)
		if err != nil {
			return eris.Wrap(err, "extract batch")
		}

		st := artifactStore()
		if err := st.SaveQuotes(cfg.Tenant, artifacts.ExtractedFile, result.Quotes); err != nil {
			return err
		}

		zap.L().Info("extraction complete",
			zap.String("tenant", cfg.Tenant),
			zap.Int("quotes", len(result.Quotes)),
			zap.Int("dropped_lines", result.Dropped),
			zap.Int("skipped_documents", result.Skipped),
			zap.String("output", st.DataPath(cfg.Tenant, artifacts.ExtractedFile)),
		)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "", "directory of PDF offer documents (required)")
	_ = extractCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(extractCmd)
}
