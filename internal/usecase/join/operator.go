// Package join estimates the cost of a sharding-aware nested-loop join. The
// outer side is pre-filtered through the filter operator; the inner side is
// probed once per matching shard when co-located, once per outer row when
// not.
package join

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/usecase/costmodel"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
)

// Operator estimates nested-loop join costs.
type Operator struct {
	model   costmodel.Model
	sizes   *size.Cache
	filters *filter.Operator
}

// New creates a join operator.
func New(model costmodel.Model, sizes *size.Cache, filters *filter.Operator) *Operator {
	return &Operator{model: model, sizes: sizes, filters: filters}
}

// Estimate computes the cost of the join described by req.
func (op *Operator) Estimate(req Request) (Result, error) {
	if req.JoinKey == "" {
		return Result{}, fmt.Errorf("join key is required: %w", domain.ErrInvalidInput)
	}
	if !req.Left.Collection.Schema().Has(req.JoinKey) {
		return Result{}, fmt.Errorf("join key %q not in left collection %q: %w",
			req.JoinKey, req.Left.Collection.Name(), domain.ErrUnknownField)
	}
	if !req.Right.Collection.Schema().Has(req.JoinKey) {
		return Result{}, fmt.Errorf("join key %q not in right collection %q: %w",
			req.JoinKey, req.Right.Collection.Name(), domain.ErrUnknownField)
	}

	// Outer side: a plain filter whose output count drives the loop.
	left, err := op.filters.Estimate(filter.Request{
		Collection:      req.Left.Collection,
		FilterKeys:      req.Left.FilterKeys,
		OutputKeys:      req.Left.OutputKeys,
		Selectivity:     req.Left.Selectivity,
		ArrayItemCounts: req.ArrayItemCounts,
	})
	if err != nil {
		return Result{}, fmt.Errorf("left side: %w", err)
	}
	numLoops := left.Output

	coLocated := req.Left.Collection.ShardingKey() == req.JoinKey &&
		req.Right.Collection.ShardingKey() == req.JoinKey

	right, err := op.innerSide(req.Right, req.JoinKey, req.ArrayItemCounts)
	if err != nil {
		return Result{}, fmt.Errorf("right side: %w", err)
	}

	perLoopVolume := right.scanned*right.inputSize + right.output*right.outputSize

	var (
		c2          int64
		numMessages int64
		rightCost   domain.QueryCost
	)
	switch {
	case numLoops == 0:
		// No outer rows: the inner side is never probed.
		if coLocated {
			numMessages = 1
		}
	case coLocated:
		// Each shard resolves its local matches in one pass, regardless of
		// how many outer rows there are.
		numMessages = 1
		c2 = perLoopVolume
		rightCost = op.model.ScanCost(right.scanned, right.inputSize, false, right.servers).
			Add(op.model.CommunicationCost(c2, right.servers, right.output))
	default:
		// Broadcast: the inner side is shipped once per outer row.
		numMessages = numLoops
		c2 = numLoops * perLoopVolume
		rightCost = op.model.ScanCost(right.scanned, right.inputSize, false, right.servers).
			Add(op.model.CommunicationCost(perLoopVolume, right.servers, right.output)).
			Scale(numLoops)
	}

	serversInvolved := left.ServersAccessed
	if numLoops > 0 || coLocated {
		if coLocated {
			serversInvolved = max(left.ServersAccessed, right.servers)
		} else {
			serversInvolved = min(left.ServersAccessed+right.servers, op.model.TotalServers())
		}
	}

	cost := left.Cost.Add(rightCost)
	cost.NumServers = serversInvolved

	return Result{
		Left:                    left,
		RightScanned:            right.scanned,
		RightOutput:             right.output,
		RightInputDocSizeBytes:  right.inputSize,
		RightOutputDocSizeBytes: right.outputSize,
		RightServersAccessed:    right.servers,
		NumLoops:                numLoops,
		NumMessages:             numMessages,
		CoLocated:               coLocated,
		JoinKey:                 req.JoinKey,
		C1VolumeBytes:           left.C1VolumeBytes,
		C2VolumeBytes:           c2,
		ServersInvolved:         serversInvolved,
		Cost:                    cost,
	}, nil
}

type innerEstimate struct {
	scanned    int64
	output     int64
	inputSize  int64
	outputSize int64
	servers    int
}

// innerSide applies the filter routing rule to the probed collection, with
// the join key standing in for a filter key when testing sharding equality.
func (op *Operator) innerSide(side Side, joinKey string, arrayItemCounts map[string]int64) (innerEstimate, error) {
	if side.Selectivity < 0 || side.Selectivity > 1 {
		return innerEstimate{}, fmt.Errorf("selectivity %g outside [0, 1]: %w", side.Selectivity, domain.ErrInvalidInput)
	}
	sch := side.Collection.Schema()
	for _, key := range side.FilterKeys {
		if !sch.Has(key) {
			return innerEstimate{}, fmt.Errorf("filter key %q: %w", key, domain.ErrUnknownField)
		}
	}

	routingKeys := append(append([]string(nil), side.FilterKeys...), joinKey)
	scanned, servers, _ := filter.Routing(side.Collection, routingKeys, op.model.ClusterServers())
	output := int64(math.Round(float64(scanned) * side.Selectivity))

	outputSchema := sch
	if len(side.OutputKeys) > 0 {
		restricted, err := sch.Restrict(side.OutputKeys)
		if err != nil {
			return innerEstimate{}, fmt.Errorf("output keys: %w: %w", domain.ErrUnknownField, err)
		}
		outputSchema = restricted
	}

	return innerEstimate{
		scanned:    scanned,
		output:     output,
		inputSize:  op.sizes.Document(sch, arrayItemCounts),
		outputSize: op.sizes.Document(outputSchema, arrayItemCounts),
		servers:    servers,
	}, nil
}
