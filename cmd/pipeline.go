package main

import (
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/augment"
	"github.com/odens-ab/pricing-cli/internal/extract"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/model"
	"github.com/odens-ab/pricing-cli/internal/pdf"
	"github.com/odens-ab/pricing-cli/internal/train"
)

var pipelineInput string

// pipelineCmd chains extract, augment, features and train into one run.
// The extract stage is skipped when no --input directory is given.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full quote pipeline: extract, augment, encode, train",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st := artifactStore()

		var quotes []model.Quote

		if pipelineInput != "" {
			paths, err := filepath.Glob(filepath.Join(pipelineInput, "*.pdf"))
			if err != nil {
				return eris.Wrap(err, "glob pdf input")
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
			if err := st.SaveQuotes(cfg.Tenant, artifacts.ExtractedFile, result.Quotes); err != nil {
				return err
			}
			quotes = append(quotes, result.Quotes...)
		}

		basePrices := augment.DefaultBasePrices
		if cfg.Augment.BasePricesXLSX != "" {
			loaded, err := augment.LoadBasePricesXLSX(cfg.Augment.BasePricesXLSX)
			if err != nil {
				return err
			}
			basePrices = loaded
		}
		g, err := augment.NewGenerator(cfg.Tenant, basePrices, nil)
		if err != nil {
			return err
		}
		synthetic := g.Run(cfg.Augment.Count)
		if err := st.SaveQuotes(cfg.Tenant, artifacts.AugmentedFile, synthetic); err != nil {
			return err
		}
		quotes = append(quotes, synthetic...)

		rows, dropped := feature.RowsFromQuotes(quotes)
		if len(rows) == 0 {
			return eris.New("no encodable quotes")
		}
		m := feature.Fit(rows)
		if err := feature.SaveMatrixCSV(st.DataPath(cfg.Tenant, artifacts.FeaturesFile), m); err != nil {
			return err
		}

		tr := train.New(cfg.Train, nil, cfg.Tenant)
		result, err := tr.Train(ctx, m)
		if err != nil {
			return err
		}
		if err := st.SaveModel(cfg.Tenant, result.Model, result.Metadata); err != nil {
			return err
		}

		zap.L().Info("pipeline complete",
			zap.String("tenant", cfg.Tenant),
			zap.Int("quotes", len(quotes)),
			zap.Int("dropped", dropped),
			zap.Float64("rmse", result.Metadata.Metrics.RMSE),
			zap.Float64("r2", result.Metadata.Metrics.R2),
		)
		return nil
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineInput, "input", "", "directory of PDF offer documents (optional)")
	rootCmd.AddCommand(pipelineCmd)
}
