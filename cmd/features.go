package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/model"
)

var featuresSource string

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Encode quotes into a fixed-width training matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := artifactStore()

		var quotes []model.Quote
		load := func(file string) error {
			batch, err := st.LoadQuotes(cfg.Tenant, file)
			if err != nil {
				return err
			}
			quotes = append(quotes, batch...)
			return nil
		}

		switch featuresSource {
		case "extracted":
			if err := load(artifacts.ExtractedFile); err != nil {
				return err
			}
		case "augmented":
			if err := load(artifacts.AugmentedFile); err != nil {
				return err
			}
		case "both":
			if err := load(artifacts.ExtractedFile); err != nil {
				return err
			}
			if err := load(artifacts.AugmentedFile); err != nil {
				return err
			}
		default:
			return eris.Errorf("unknown source %q (want extracted, augmented or both)", featuresSource)
		}

		rows, dropped := feature.RowsFromQuotes(quotes)
		if len(rows) == 0 {
			return eris.New("no encodable quotes")
		}
		m := feature.Fit(rows)

		out := st.DataPath(cfg.Tenant, artifacts.FeaturesFile)
		if err := feature.SaveMatrixCSV(out, m); err != nil {
			return err
		}

		zap.L().Info("feature encoding complete",
			zap.String("tenant", cfg.Tenant),
			zap.Int("rows", len(m.Rows)),
			zap.Int("columns", len(m.Columns)),
			zap.Int("dropped", dropped),
			zap.String("output", out),
		)
		return nil
	},
}

func init() {
	featuresCmd.Flags().StringVar(&featuresSource, "source", "augmented", "quote source: extracted, augmented or both")
	rootCmd.AddCommand(featuresCmd)
}
