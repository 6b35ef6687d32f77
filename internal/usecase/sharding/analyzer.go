// Package sharding analyzes how candidate sharding keys spread a collection
// over the cluster, independent of any particular query.
package sharding

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
)

// Distribution describes how one sharding key spreads a collection.
type Distribution struct {
	ShardingKey          string  `json:"sharding_key"`
	TotalDocuments       int64   `json:"total_documents"`
	DistinctValues       int64   `json:"distinct_values"`
	NumServers           int     `json:"num_servers"`
	AvgDocsPerServer     float64 `json:"avg_docs_per_server"`
	AvgDistinctPerServer float64 `json:"avg_distinct_per_server"`
	// ServersWithData is the number of servers that hold at least one shard
	// value under even distribution.
	ServersWithData int     `json:"servers_with_data"`
	Utilization     float64 `json:"server_utilization"`
	// SkewWarning flags keys that leave more than half the cluster empty.
	SkewWarning bool `json:"skew_warning"`
}

// Analyzer evaluates sharding strategies for a fixed cluster size.
type Analyzer struct {
	clusterServers int
}

// New creates an Analyzer.
func New(clusterServers int) (*Analyzer, error) {
	if clusterServers < 1 {
		return nil, fmt.Errorf("cluster servers must be >= 1, got %d: %w", clusterServers, domain.ErrInvalidInput)
	}
	return &Analyzer{clusterServers: clusterServers}, nil
}

// Distribution computes the spread of col under shardingKey with the given
// key cardinality.
func (a *Analyzer) Distribution(col collection.Collection, shardingKey string, distinctValues int64) (Distribution, error) {
	if !col.Schema().Has(shardingKey) {
		return Distribution{}, fmt.Errorf("sharding key %q not in collection %q: %w",
			shardingKey, col.Name(), domain.ErrUnknownField)
	}
	if distinctValues < 1 {
		return Distribution{}, fmt.Errorf("distinct values must be >= 1, got %d: %w", distinctValues, domain.ErrInvalidInput)
	}
	if distinctValues > col.DocumentCount() {
		return Distribution{}, fmt.Errorf("key %q has %d distinct values for %d documents: %w",
			shardingKey, distinctValues, col.DocumentCount(), domain.ErrInvalidInput)
	}

	servers := int64(a.clusterServers)
	serversWithData := min(distinctValues, servers)
	utilization := float64(serversWithData) / float64(servers)

	return Distribution{
		ShardingKey:          shardingKey,
		TotalDocuments:       col.DocumentCount(),
		DistinctValues:       distinctValues,
		NumServers:           a.clusterServers,
		AvgDocsPerServer:     float64(col.DocumentCount()) / float64(servers),
		AvgDistinctPerServer: float64(distinctValues) / float64(servers),
		ServersWithData:      int(serversWithData),
		Utilization:          utilization,
		SkewWarning:          utilization < 0.5,
	}, nil
}

// CompareStrategies evaluates every candidate key of strategies (key name to
// distinct-value count) over the same collection. Results come back sorted
// by key name; total documents and server count are identical across
// entries, only cardinality and routing differ.
func (a *Analyzer) CompareStrategies(col collection.Collection, strategies map[string]int64) ([]Distribution, error) {
	keys := make([]string, 0, len(strategies))
	for key := range strategies {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	results := make([]Distribution, 0, len(keys))
	for _, key := range keys {
		d, err := a.Distribution(col, key, strategies[key])
		if err != nil {
			return nil, fmt.Errorf("strategy %q: %w", key, err)
		}
		results = append(results, d)
	}
	return results, nil
}

// Recommend returns the candidate key with the best distribution score:
// utilization dominates, distinct-value density per server breaks ties.
func (a *Analyzer) Recommend(col collection.Collection, strategies map[string]int64) (string, error) {
	if len(strategies) == 0 {
		return "", fmt.Errorf("no strategies given: %w", domain.ErrInvalidInput)
	}
	distributions, err := a.CompareStrategies(col, strategies)
	if err != nil {
		return "", err
	}

	best := ""
	bestScore := -1.0
	for _, d := range distributions {
		distinctScore := min(d.AvgDistinctPerServer/10, 1.0)
		score := d.Utilization*0.7 + distinctScore*0.3
		if score > bestScore {
			bestScore = score
			best = d.ShardingKey
		}
	}
	return best, nil
}
