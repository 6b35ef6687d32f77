package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shardcost/internal/render"
)

func newCompareCmd(catalogPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <collection>",
		Short: "Compare candidate sharding keys for a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*catalogPath)
			if err != nil {
				return err
			}
			defer a.close()

			entry, err := a.cat.Collection(args[0])
			if err != nil {
				return err
			}
			distributions, err := a.analyzer.CompareStrategies(entry.Base, entry.CandidateKeys)
			if err != nil {
				return err
			}
			recommended, err := a.analyzer.Recommend(entry.Base, entry.CandidateKeys)
			if err != nil {
				return err
			}
			render.Compare(cmd.OutOrStdout(), entry.Base.Name(), distributions, recommended)
			return nil
		},
	}
}
