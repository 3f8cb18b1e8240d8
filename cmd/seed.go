package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itihaas-labs/timeline-server/internal/seed"
	"github.com/itihaas-labs/timeline-server/internal/validate"
)

var (
	seedGenerate int
	seedRandSeed int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo periods and events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		rules := validate.Rules{ModernEraYear: cfg.Domain.ModernEraYear}

		n, err := seed.Apply(ctx, st, rules)
		if err != nil {
			return err
		}
		zap.L().Info("fixture loaded", zap.Int("events", n))

		if seedGenerate > 0 {
			g, err := seed.GenerateInto(ctx, st, rules, seedGenerate, seedRandSeed)
			if err != nil {
				return err
			}
			zap.L().Info("generated events", zap.Int("events", g))
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedGenerate, "generate", 0, "additionally generate N synthetic events")
	seedCmd.Flags().Int64Var(&seedRandSeed, "rand-seed", 42, "random seed for the generator")
	rootCmd.AddCommand(seedCmd)
}
