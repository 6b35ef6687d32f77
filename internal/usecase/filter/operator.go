// Package filter estimates the cost of a sharding-aware predicate scan over
// one collection. The join and aggregate operators build on its routing rule.
package filter

import (
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/usecase/costmodel"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
)

// Operator estimates filter costs.
type Operator struct {
	model costmodel.Model
	sizes *size.Cache
}

// New creates a filter operator.
func New(model costmodel.Model, sizes *size.Cache) *Operator {
	return &Operator{model: model, sizes: sizes}
}

// Routing decides where a predicate scan over col runs. An equality
// predicate on the sharding key routes to the single shard holding that
// value, which scans only the shard's fraction of the collection (even
// distribution assumed). Any other predicate broadcasts to the whole
// cluster, and every document is read.
func Routing(col collection.Collection, filterKeys []string, clusterServers int) (scanned int64, servers int, routed bool) {
	if col.Sharded() && slices.Contains(filterKeys, col.ShardingKey()) {
		return col.DocumentCount() / col.DistinctShardValues(), 1, true
	}
	return col.DocumentCount(), clusterServers, false
}

// Estimate computes the cost of the filter described by req.
func (op *Operator) Estimate(req Request) (Result, error) {
	if req.Selectivity < 0 || req.Selectivity > 1 {
		return Result{}, fmt.Errorf("selectivity %g outside [0, 1]: %w", req.Selectivity, domain.ErrInvalidInput)
	}
	sch := req.Collection.Schema()
	for _, key := range req.FilterKeys {
		if !sch.Has(key) {
			return Result{}, fmt.Errorf("filter key %q: %w", key, domain.ErrUnknownField)
		}
	}

	outputSchema := sch
	if len(req.OutputKeys) > 0 {
		restricted, err := sch.Restrict(req.OutputKeys)
		if err != nil {
			return Result{}, fmt.Errorf("output keys: %w: %w", domain.ErrUnknownField, err)
		}
		outputSchema = restricted
	}

	scanned, servers, routed := Routing(req.Collection, req.FilterKeys, op.model.ClusterServers())
	output := int64(math.Round(float64(scanned) * req.Selectivity))

	inputSize := op.sizes.Document(sch, req.ArrayItemCounts)
	outputSize := op.sizes.Document(outputSchema, req.ArrayItemCounts)

	// C1 = #S1 × size(S1) + #O1 × size(O1)
	c1 := scanned*inputSize + output*outputSize

	cost := op.model.ScanCost(scanned, inputSize, req.UseIndex, servers).
		Add(op.model.CommunicationCost(c1, servers, output))

	return Result{
		Scanned:            scanned,
		Output:             output,
		C1VolumeBytes:      c1,
		InputDocSizeBytes:  inputSize,
		OutputDocSizeBytes: outputSize,
		ServersAccessed:    servers,
		ShardingKey:        req.Collection.ShardingKey(),
		RoutedByShardKey:   routed,
		IndexUsed:          req.UseIndex,
		Cost:               cost,
	}, nil
}
