// Package aggregate estimates the cost of a group-by over one or two
// collections: per-side pre-filter, a shuffle phase when the grouping key is
// not the partitioning key, and an optional join of the aggregated outputs
// that reuses the nested-loop routing rules.
package aggregate

import (
	"fmt"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/usecase/costmodel"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
)

// Operator estimates aggregate costs.
type Operator struct {
	model   costmodel.Model
	filters *filter.Operator
}

// New creates an aggregate operator.
func New(model costmodel.Model, filters *filter.Operator) *Operator {
	return &Operator{model: model, filters: filters}
}

// Estimate computes the cost of the aggregate described by req.
func (op *Operator) Estimate(req Request) (Result, error) {
	if req.Limit < 0 {
		return Result{}, fmt.Errorf("limit must be >= 0, got %d: %w", req.Limit, domain.ErrInvalidInput)
	}
	if req.Right != nil && req.JoinKey == "" {
		return Result{}, fmt.Errorf("join key is required with two sides: %w", domain.ErrInvalidInput)
	}

	left, err := op.side(req.Left, req.ArrayItemCounts)
	if err != nil {
		return Result{}, fmt.Errorf("left side: %w", err)
	}

	res := Result{
		Left:            left,
		OutputDocuments: left.Filter.Output,
		Limit:           req.Limit,
		ServersInvolved: left.Filter.ServersAccessed,
		Cost:            left.Cost,
	}

	if req.Right != nil {
		if !req.Left.Collection.Schema().Has(req.JoinKey) {
			return Result{}, fmt.Errorf("join key %q not in left collection %q: %w",
				req.JoinKey, req.Left.Collection.Name(), domain.ErrUnknownField)
		}
		if !req.Right.Collection.Schema().Has(req.JoinKey) {
			return Result{}, fmt.Errorf("join key %q not in right collection %q: %w",
				req.JoinKey, req.Right.Collection.Name(), domain.ErrUnknownField)
		}

		right, err := op.side(*req.Right, req.ArrayItemCounts)
		if err != nil {
			return Result{}, fmt.Errorf("right side: %w", err)
		}
		res.Right = &right
		res.Joined = true
		res.JoinKey = req.JoinKey

		op.joinSides(&res, req, left, right)
	}

	if req.Limit > 0 && res.OutputDocuments > req.Limit {
		res.OutputDocuments = req.Limit
	}
	res.Cost.NumServers = res.ServersInvolved
	return res, nil
}

// side runs the pre-filter and charges the shuffle phase.
func (op *Operator) side(s Side, arrayItemCounts map[string]int64) (SideResult, error) {
	if s.GroupByKey != "" && !s.Collection.Schema().Has(s.GroupByKey) {
		return SideResult{}, fmt.Errorf("group-by key %q: %w", s.GroupByKey, domain.ErrUnknownField)
	}

	f, err := op.filters.Estimate(filter.Request{
		Collection:      s.Collection,
		FilterKeys:      s.FilterKeys,
		OutputKeys:      s.OutputKeys,
		Selectivity:     s.Selectivity,
		ArrayItemCounts: arrayItemCounts,
	})
	if err != nil {
		return SideResult{}, err
	}

	coPartitioned := s.GroupByKey != "" && s.GroupByKey == s.Collection.ShardingKey()

	var shuffleDocs, shuffleVolume int64
	cost := f.Cost
	if s.GroupByKey != "" && !coPartitioned {
		// Every matching row may live on the wrong server for its group and
		// must be redistributed to the other servers holding the group.
		// A side routed to a single server has all its groups local.
		shuffleDocs = f.Output * int64(f.ServersAccessed-1)
		shuffleVolume = shuffleDocs * f.OutputDocSizeBytes
		cost = cost.Add(op.model.CommunicationCost(shuffleVolume, f.ServersAccessed, shuffleDocs))
	}

	return SideResult{
		Filter:             f,
		GroupByKey:         s.GroupByKey,
		CoPartitioned:      coPartitioned,
		ShuffleDocs:        shuffleDocs,
		ShuffleVolumeBytes: shuffleVolume,
		VolumeBytes:        f.C1VolumeBytes + shuffleVolume,
		Cost:               cost,
	}, nil
}

// joinSides charges the nested-loop join of the two post-aggregation
// outputs. The smaller output drives the loop; the co-location test is the
// same as for a plain join.
func (op *Operator) joinSides(res *Result, req Request, left, right SideResult) {
	coLocated := req.Left.Collection.ShardingKey() == req.JoinKey &&
		req.Right.Collection.ShardingKey() == req.JoinKey
	res.CoLocated = coLocated

	outer, inner := left, right
	if right.Filter.Output < left.Filter.Output {
		outer, inner = right, left
	}
	res.OutputDocuments = outer.Filter.Output

	innerVolume := inner.Filter.Output * inner.Filter.OutputDocSizeBytes

	var joinCost domain.QueryCost
	switch {
	case outer.Filter.Output == 0:
		if coLocated {
			res.NumMessages = 1
		}
	case coLocated:
		res.NumLoops = outer.Filter.Output
		res.NumMessages = 1
		res.JoinVolumeBytes = innerVolume
		joinCost = op.model.CommunicationCost(innerVolume, inner.Filter.ServersAccessed, inner.Filter.Output)
	default:
		res.NumLoops = outer.Filter.Output
		res.NumMessages = res.NumLoops
		res.JoinVolumeBytes = res.NumLoops * innerVolume
		joinCost = op.model.
			CommunicationCost(innerVolume, inner.Filter.ServersAccessed, inner.Filter.Output).
			Scale(res.NumLoops)
	}

	if coLocated {
		res.ServersInvolved = max(left.Filter.ServersAccessed, right.Filter.ServersAccessed)
	} else {
		res.ServersInvolved = min(
			left.Filter.ServersAccessed+right.Filter.ServersAccessed,
			op.model.TotalServers(),
		)
	}

	res.Cost = left.Cost.Add(right.Cost).Add(joinCost)
}
