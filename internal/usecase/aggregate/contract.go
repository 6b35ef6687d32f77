package aggregate

import (
	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
)

// Side describes one input of a group-by: the collection, its optional
// pre-filter, the carried output fields and the grouping key. An empty
// GroupByKey means the side is not aggregated (it only feeds the join).
type Side struct {
	Collection  collection.Collection
	FilterKeys  []string
	Selectivity float64
	OutputKeys  []string
	GroupByKey  string
}

// Request describes a group-by estimate over one collection, or over two
// with a join of the aggregated results.
type Request struct {
	Left Side
	// Right is the optional second side.
	Right *Side
	// JoinKey joins the two post-aggregation outputs; required when Right is
	// set.
	JoinKey string
	// Limit truncates the reported output cardinality only; the costs of the
	// full computation stand (ORDER BY + LIMIT semantics). 0 means no limit.
	Limit int64
	// ArrayItemCounts overrides assumed array lengths per field name.
	ArrayItemCounts map[string]int64
}

// SideResult is the estimate for one aggregated side.
type SideResult struct {
	// Filter is the pre-filter estimate feeding the aggregation.
	Filter filter.Result `json:"filter"`
	// GroupByKey is the grouping key, empty if the side is not aggregated.
	GroupByKey string `json:"group_by_key,omitempty"`
	// CoPartitioned reports that grouping needed no redistribution because
	// the side is already partitioned by the grouping key.
	CoPartitioned bool `json:"co_partitioned"`
	// ShuffleDocs is the number of rows redistributed to consolidate groups.
	ShuffleDocs int64 `json:"shuffle_docs"`
	// ShuffleVolumeBytes is the shuffle transfer volume.
	ShuffleVolumeBytes int64 `json:"shuffle_volume_bytes"`
	// VolumeBytes is the side's total transfer volume (filter C1 + shuffle).
	VolumeBytes int64 `json:"volume_bytes"`
	// Cost combines the filter and shuffle phases.
	Cost domain.QueryCost `json:"cost"`
}

// Result is the estimated outcome of an aggregate query. Left is always
// populated; Right and the join fields only when a second side was given.
type Result struct {
	Left  SideResult  `json:"left"`
	Right *SideResult `json:"right,omitempty"`

	// Joined reports whether the two aggregated outputs were joined.
	Joined  bool   `json:"joined"`
	JoinKey string `json:"join_key,omitempty"`
	// CoLocated reports whether both sides are partitioned on the join key.
	CoLocated bool `json:"co_located"`
	// NumLoops and NumMessages follow nested-loop join semantics, with the
	// smaller post-aggregation output driving the loop.
	NumLoops    int64 `json:"num_loops"`
	NumMessages int64 `json:"num_messages"`
	// JoinVolumeBytes is the transfer volume of the join phase.
	JoinVolumeBytes int64 `json:"join_volume_bytes"`

	// OutputDocuments is the final cardinality after Limit truncation.
	OutputDocuments int64 `json:"output_documents"`
	Limit           int64 `json:"limit,omitempty"`

	// ServersInvolved is the union of servers touched by all phases.
	ServersInvolved int `json:"servers_involved"`
	// Cost is the total over filters, shuffles and the join phase.
	Cost domain.QueryCost `json:"cost"`
}
