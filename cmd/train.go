package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/train"
)

var trainTrials int

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a price model with random hyperparameter search",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st := artifactStore()

		m, err := feature.LoadMatrixCSV(st.DataPath(cfg.Tenant, artifacts.FeaturesFile))
		if err != nil {
			return err
		}

		trainCfg := cfg.Train
		if trainTrials > 0 {
			trainCfg.Trials = trainTrials
		}

		tr := train.New(trainCfg, nil, cfg.Tenant)
		result, err := tr.Train(ctx, m)
		if err != nil {
			return err
		}

		if err := st.SaveModel(cfg.Tenant, result.Model, result.Metadata); err != nil {
			return err
		}

		zap.L().Info("training complete",
			zap.String("tenant", cfg.Tenant),
			zap.Int("rows", len(m.Rows)),
			zap.Float64("rmse", result.Metadata.Metrics.RMSE),
			zap.Float64("r2", result.Metadata.Metrics.R2),
			zap.Float64("mape", result.Metadata.Metrics.MAPE),
			zap.String("output", st.ModelPath(cfg.Tenant, artifacts.ModelFile)),
		)
		return nil
	},
}

func init() {
	trainCmd.Flags().IntVar(&trainTrials, "trials", 0, "hyperparameter search trials (default from config)")
	rootCmd.AddCommand(trainCmd)
}
