package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/augment"
)

var augmentCount int

var augmentCmd = &cobra.Command{
	Use:   "augment",
	Short: "Generate synthetic quotes from the base-price catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		basePrices := augment.DefaultBasePrices
		if cfg.Augment.BasePricesXLSX != "" {
			loaded, err := augment.LoadBasePricesXLSX(cfg.Augment.BasePricesXLSX)
			if err != nil {
				return err
			}
			basePrices = loaded
		}

		count := augmentCount
		if count == 0 {
			count = cfg.Augment.Count
		}

		g, err := augment.NewGenerator(cfg.Tenant, basePrices, nil)
		if err != nil {
			return err
		}
		quotes := g.Run(count)

		st := artifactStore()
		if err := st.SaveQuotes(cfg.Tenant, artifacts.AugmentedFile, quotes); err != nil {
			return err
		}

		zap.L().Info("augmentation complete",
			zap.String("tenant", cfg.Tenant),
			zap.Int("quotes", len(quotes)),
			zap.Int("profiles", len(basePrices)),
			zap.String("output", st.DataPath(cfg.Tenant, artifacts.AugmentedFile)),
		)
		return nil
	},
}

func init() {
	augmentCmd.Flags().IntVar(&augmentCount, "count", 0, "number of synthetic quotes (default from config)")
	rootCmd.AddCommand(augmentCmd)
}
