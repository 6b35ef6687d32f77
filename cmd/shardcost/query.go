package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shardcost/internal/queries"
	"github.com/kailas-cloud/shardcost/internal/render"
)

func newQueryCmd(catalogPath *string) *cobra.Command {
	var shards []string
	var list bool

	cmd := &cobra.Command{
		Use:   "query [name...]",
		Short: "Estimate the cost of predefined query templates",
		Long: "Estimate the cost of one or more predefined query templates under a\n" +
			"sharding strategy. With no names, every template runs.",
		Example: "  shardcost query q4 --shard Stock:IDP --shard Product:IDP\n" +
			"  shardcost query --shard OrderLine:IDP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listTemplates(cmd)
			}

			strategy, err := parseStrategy(shards)
			if err != nil {
				return err
			}

			a, err := buildApp(*catalogPath)
			if err != nil {
				return err
			}
			defer a.close()

			names := args
			if len(names) == 0 {
				names = queries.Names()
			}
			label := strategyLabel(strategy)
			for _, name := range names {
				out, err := a.runner.Run(name, strategy)
				if err != nil {
					return err
				}
				render.Outcome(cmd.OutOrStdout(), out, label)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&shards, "shard", nil, "sharding strategy as Collection:key (repeatable)")
	cmd.Flags().BoolVar(&list, "list", false, "list templates without running them")
	return cmd
}

func listTemplates(cmd *cobra.Command) error {
	for _, name := range queries.Names() {
		description, sql, err := queries.Describe(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n\t%s\n", name, description, sql)
	}
	return nil
}

// parseStrategy turns repeated Collection:key flags into a Strategy.
func parseStrategy(shards []string) (queries.Strategy, error) {
	strategy := make(queries.Strategy, len(shards))
	for _, s := range shards {
		col, key, ok := strings.Cut(s, ":")
		if !ok || col == "" || key == "" {
			return nil, fmt.Errorf("invalid --shard %q, want Collection:key", s)
		}
		strategy[col] = key
	}
	return strategy, nil
}

func strategyLabel(strategy queries.Strategy) string {
	if len(strategy) == 0 {
		return "unsharded"
	}
	parts := make([]string, 0, len(strategy))
	for col, key := range strategy {
		parts = append(parts, col+" on "+key)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
