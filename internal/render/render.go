// Package render prints estimate results as terminal tables. Pure
// presentation; every number comes from the operators.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/fatih/color"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/queries"
	"github.com/kailas-cloud/shardcost/internal/usecase/aggregate"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
	"github.com/kailas-cloud/shardcost/internal/usecase/join"
	"github.com/kailas-cloud/shardcost/internal/usecase/sharding"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	warning = color.New(color.FgYellow)
)

func newTable(w io.Writer) *tabby.Tabby {
	return tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
}

// HumanBytes formats a byte count with a binary unit suffix.
func HumanBytes(n int64) string {
	v := float64(n)
	for _, unit := range []string{"B", "KiB", "MiB", "GiB", "TiB"} {
		if v < 1024 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.2f PiB", v)
}

// Outcome prints a template run under its strategy label.
func Outcome(w io.Writer, out queries.Outcome, strategyLabel string) {
	fmt.Fprintln(w, heading.Sprintf("%s: %s", out.Name, out.Description))
	fmt.Fprintf(w, "  %s\n", out.SQL)
	fmt.Fprintf(w, "  strategy: %s\n\n", strategyLabel)

	switch out.Kind {
	case queries.KindFilter:
		Filter(w, *out.Filter)
	case queries.KindJoin:
		Join(w, *out.Join)
	case queries.KindAggregate:
		Aggregate(w, *out.Aggregate)
	}
}

// Filter prints a filter estimate.
func Filter(w io.Writer, res filter.Result) {
	t := newTable(w)
	t.AddHeader("PHASE", "DOCS", "SIZE", "SERVERS")
	routing := "broadcast"
	if res.RoutedByShardKey {
		routing = "routed by " + res.ShardingKey
	}
	t.AddLine("scan (S1)", res.Scanned, HumanBytes(res.InputDocSizeBytes)+"/doc", res.ServersAccessed)
	t.AddLine("output (O1)", res.Output, HumanBytes(res.OutputDocSizeBytes)+"/doc", "")
	t.AddLine("transfer (C1)", "", HumanBytes(res.C1VolumeBytes), "")
	t.Print()
	fmt.Fprintf(w, "  routing: %s, index: %v\n", routing, res.IndexUsed)
	Cost(w, res.Cost)
}

// Join prints a join estimate.
func Join(w io.Writer, res join.Result) {
	t := newTable(w)
	t.AddHeader("PHASE", "DOCS", "SIZE", "SERVERS")
	t.AddLine("outer scan (S1)", res.Left.Scanned, HumanBytes(res.Left.InputDocSizeBytes)+"/doc", res.Left.ServersAccessed)
	t.AddLine("outer rows (O1)", res.Left.Output, HumanBytes(res.Left.OutputDocSizeBytes)+"/doc", "")
	t.AddLine("inner scan (S2)", res.RightScanned, HumanBytes(res.RightInputDocSizeBytes)+"/doc", res.RightServersAccessed)
	t.AddLine("inner rows (O2)", res.RightOutput, HumanBytes(res.RightOutputDocSizeBytes)+"/doc", "")
	t.AddLine("transfer (C1)", "", HumanBytes(res.C1VolumeBytes), "")
	t.AddLine("transfer (C2)", "", HumanBytes(res.C2VolumeBytes), "")
	t.Print()

	mode := "broadcast"
	if res.CoLocated {
		mode = "co-located"
	}
	fmt.Fprintf(w, "  join on %s: %s, loops: %d, messages: %d, servers involved: %d\n",
		res.JoinKey, mode, res.NumLoops, res.NumMessages, res.ServersInvolved)
	Cost(w, res.Cost)
}

// Aggregate prints an aggregate estimate.
func Aggregate(w io.Writer, res aggregate.Result) {
	t := newTable(w)
	t.AddHeader("SIDE", "SCANNED", "ROWS", "SHUFFLE DOCS", "VOLUME", "SERVERS")
	addSide := func(label string, s aggregate.SideResult) {
		group := s.GroupByKey
		if group == "" {
			group = "-"
		}
		t.AddLine(label+" (group by "+group+")",
			s.Filter.Scanned, s.Filter.Output, s.ShuffleDocs,
			HumanBytes(s.VolumeBytes), s.Filter.ServersAccessed)
	}
	addSide("left", res.Left)
	if res.Right != nil {
		addSide("right", *res.Right)
	}
	t.Print()

	if res.Joined {
		mode := "broadcast"
		if res.CoLocated {
			mode = "co-located"
		}
		fmt.Fprintf(w, "  join on %s: %s, loops: %d, messages: %d, volume: %s\n",
			res.JoinKey, mode, res.NumLoops, res.NumMessages, HumanBytes(res.JoinVolumeBytes))
	}
	if res.Limit > 0 {
		fmt.Fprintf(w, "  output: %d documents (limit %d)\n", res.OutputDocuments, res.Limit)
	} else {
		fmt.Fprintf(w, "  output: %d documents\n", res.OutputDocuments)
	}
	Cost(w, res.Cost)
}

// Cost prints a cost vector.
func Cost(w io.Writer, c domain.QueryCost) {
	fmt.Fprintf(w, "  time: %.3f ms, carbon: %.4f gCO2, price: $%.6f\n",
		c.TimeMS, c.CarbonGCO2, c.PriceUSD)
	fmt.Fprintf(w, "  volume: %s, documents: %d, servers: %d\n\n",
		HumanBytes(c.DataVolumeBytes), c.NumDocuments, c.NumServers)
}

// Compare prints shard-distribution comparisons with the recommended key.
func Compare(w io.Writer, collectionName string, distributions []sharding.Distribution, recommended string) {
	fmt.Fprintln(w, heading.Sprintf("sharding strategies for %s", collectionName))
	t := newTable(w)
	t.AddHeader("KEY", "DISTINCT", "DOCS/SERVER", "DISTINCT/SERVER", "UTILIZATION", "")
	for _, d := range distributions {
		note := ""
		if d.SkewWarning {
			note = warning.Sprint("skewed")
		}
		if d.ShardingKey == recommended {
			note = "recommended"
		}
		t.AddLine(d.ShardingKey, d.DistinctValues,
			fmt.Sprintf("%.1f", d.AvgDocsPerServer),
			fmt.Sprintf("%.3f", d.AvgDistinctPerServer),
			fmt.Sprintf("%.1f%%", d.Utilization*100),
			note)
	}
	t.Print()
}
