package join

import (
	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
)

// Side describes one input of a join: the collection, its optional
// pre-filter, and the fields the join output carries from it. An unfiltered
// side uses empty FilterKeys and Selectivity 1.
type Side struct {
	Collection  collection.Collection
	FilterKeys  []string
	Selectivity float64
	OutputKeys  []string
}

// Request describes a nested-loop join to estimate.
type Request struct {
	Left  Side
	Right Side
	// JoinKey is the equality key both sides join on. It must exist in both
	// schemas.
	JoinKey string
	// ArrayItemCounts overrides assumed array lengths per field name.
	ArrayItemCounts map[string]int64
}

// Result is the estimated outcome of a nested-loop join. All fields are
// always populated.
type Result struct {
	// Left is the outer-side filter estimate; its Output drives the loop
	// count.
	Left filter.Result `json:"left"`

	// RightScanned (S2) and RightOutput (O2) are per-probe document counts
	// on the inner side.
	RightScanned int64 `json:"right_scanned"`
	RightOutput  int64 `json:"right_output"`
	// RightInputDocSizeBytes and RightOutputDocSizeBytes are the inner-side
	// document sizes.
	RightInputDocSizeBytes  int64 `json:"right_input_doc_size_bytes"`
	RightOutputDocSizeBytes int64 `json:"right_output_doc_size_bytes"`
	// RightServersAccessed is the inner-side routing fan-out per probe.
	RightServersAccessed int `json:"right_servers_accessed"`

	// NumLoops is the outer-loop iteration count (left output).
	NumLoops int64 `json:"num_loops"`
	// NumMessages is 1 for a co-located join and NumLoops for a broadcast.
	NumMessages int64 `json:"num_messages"`
	// CoLocated reports whether both sides are partitioned on the join key.
	CoLocated bool   `json:"co_located"`
	JoinKey   string `json:"join_key"`

	// C1VolumeBytes is the outer side's transfer volume, C2VolumeBytes the
	// inner side's including the loop multiplier.
	C1VolumeBytes int64 `json:"c1_volume_bytes"`
	C2VolumeBytes int64 `json:"c2_volume_bytes"`

	// ServersInvolved is the union of servers touched by both sides.
	ServersInvolved int `json:"servers_involved"`
	// Cost is the combined cost of both sides.
	Cost domain.QueryCost `json:"cost"`
}
