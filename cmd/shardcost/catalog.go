package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shardcost/internal/render"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
)

func newCatalogCmd(catalogPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show the collections, sizes and candidate sharding keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*catalogPath)
			if err != nil {
				return err
			}
			defer a.close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "COLLECTION\tDOCUMENTS\tDOC SIZE\tTOTAL SIZE\tCANDIDATE KEYS")

			var total int64
			for _, entry := range a.cat.Collections() {
				docSize := a.sizes.Document(entry.Base.Schema(), entry.ArrayItemCounts)
				colSize := size.Collection(entry.Base, entry.ArrayItemCounts)
				total += colSize

				keys := make([]string, 0, len(entry.CandidateKeys))
				for k, distinct := range entry.CandidateKeys {
					keys = append(keys, fmt.Sprintf("%s (%d)", k, distinct))
				}
				sort.Strings(keys)

				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					entry.Base.Name(),
					entry.Base.DocumentCount(),
					render.HumanBytes(docSize),
					render.HumanBytes(colSize),
					strings.Join(keys, ", "),
				)
			}
			fmt.Fprintf(tw, "TOTAL\t\t\t%s\t\n", render.HumanBytes(total))
			return tw.Flush()
		},
	}
}
