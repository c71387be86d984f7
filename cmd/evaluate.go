package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/odens-ab/pricing-cli/internal/evaluate"
	"github.com/odens-ab/pricing-cli/internal/model"
)

var evaluateInput string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the trained model against a held-out quote set",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := artifactStore()

		r, md, err := st.LoadModel(cfg.Tenant)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(evaluateInput)
		if err != nil {
			return eris.Wrap(err, "read evaluation quotes")
		}
		var quotes []model.Quote
		if err := json.Unmarshal(data, &quotes); err != nil {
			return eris.Wrap(err, "parse evaluation quotes")
		}

		report, err := evaluate.Run(r, md, quotes)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateInput, "input", "", "JSON file of labeled quotes (required)")
	_ = evaluateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(evaluateCmd)
}
