package filter

import (
	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
)

// Request describes a single-collection predicate scan to estimate.
type Request struct {
	Collection collection.Collection
	// FilterKeys are the fields the predicate compares on (equality
	// assumed). Empty means an unfiltered scan.
	FilterKeys []string
	// OutputKeys are the fields the result documents carry. Empty means the
	// full document.
	OutputKeys []string
	// Selectivity is the fraction of scanned documents matching, in [0, 1].
	Selectivity float64
	// UseIndex selects indexed access instead of a full scan.
	UseIndex bool
	// ArrayItemCounts overrides assumed array lengths per field name.
	ArrayItemCounts map[string]int64
}

// Result is the estimated outcome of a filter. All fields are always
// populated.
type Result struct {
	// Scanned (S1) is the number of documents read.
	Scanned int64 `json:"scanned"`
	// Output (O1) is the number of documents matching.
	Output int64 `json:"output"`
	// C1VolumeBytes is the scan-read volume plus the output-transfer volume.
	C1VolumeBytes int64 `json:"c1_volume_bytes"`
	// InputDocSizeBytes is the full document size of the collection.
	InputDocSizeBytes int64 `json:"input_doc_size_bytes"`
	// OutputDocSizeBytes is the size of a document restricted to OutputKeys.
	OutputDocSizeBytes int64 `json:"output_doc_size_bytes"`
	// ServersAccessed is 1 when routed by the sharding key, the cluster size
	// otherwise.
	ServersAccessed int `json:"servers_accessed"`
	// ShardingKey is the collection's partitioning key, empty if unsharded.
	ShardingKey string `json:"sharding_key,omitempty"`
	// RoutedByShardKey reports whether the predicate hit the sharding key.
	RoutedByShardKey bool `json:"routed_by_shard_key"`
	// IndexUsed reports whether indexed access was charged.
	IndexUsed bool `json:"index_used"`
	// Cost is the combined scan and communication cost.
	Cost domain.QueryCost `json:"cost"`
}
