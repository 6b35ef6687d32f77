// Package costmodel converts document counts, byte volumes and server counts
// into {time, carbon, price} cost vectors. Every operator builds its total
// from the two primitives here.
package costmodel

import (
	"fmt"

	"github.com/kailas-cloud/shardcost/internal/domain"
)

// Model evaluates the cost primitives over one fixed set of constants.
// A Model is immutable; two models with equal constants return bit-identical
// costs for equal inputs.
type Model struct {
	consts Constants
}

// New validates the constants and creates a Model.
func New(consts Constants) (Model, error) {
	if err := consts.Validate(); err != nil {
		return Model{}, fmt.Errorf("cost constants: %w: %w", domain.ErrInvalidInput, err)
	}
	return Model{consts: consts}, nil
}

// Constants returns the constants the model evaluates with.
func (m Model) Constants() Constants { return m.consts }

// ClusterServers returns the sharded-cluster size.
func (m Model) ClusterServers() int { return m.consts.ClusterServers }

// TotalServers returns the cap on the union of involved servers.
func (m Model) TotalServers() int { return m.consts.TotalServers }

// ScanCost charges reading numDocs documents of docSizeBytes each.
// Time is per-document scan time, through an index or not; it is not divided
// by servers since each server scans its own shard fraction concurrently.
// Processing carbon and price scale with the number of servers kept busy.
func (m Model) ScanCost(numDocs, docSizeBytes int64, useIndex bool, numServers int) domain.QueryCost {
	perDoc := m.consts.FullScanTimeMS
	if useIndex {
		perDoc = m.consts.IndexAccessTimeMS
	}
	timeMS := float64(numDocs) * perDoc

	return domain.QueryCost{
		TimeMS:          timeMS,
		CarbonGCO2:      timeMS * m.consts.CarbonPerServerMS * float64(numServers),
		PriceUSD:        timeMS * m.consts.PricePerServerMS * float64(numServers),
		DataVolumeBytes: numDocs * docSizeBytes,
		NumDocuments:    numDocs,
		NumServers:      numServers,
	}
}

// CommunicationCost charges moving volumeBytes across the interconnect.
// Price and carbon combine the per-GB transfer rate with the server time
// spent sending and receiving.
func (m Model) CommunicationCost(volumeBytes int64, numServers int, numDocs int64) domain.QueryCost {
	timeMS := float64(volumeBytes) / m.consts.BandwidthBytesPerMS
	gb := float64(volumeBytes) / bytesPerGB

	return domain.QueryCost{
		TimeMS:          timeMS,
		CarbonGCO2:      gb*m.consts.CarbonPerGB + timeMS*m.consts.CarbonPerServerMS*float64(numServers),
		PriceUSD:        gb*m.consts.PricePerGB + timeMS*m.consts.PricePerServerMS*float64(numServers),
		DataVolumeBytes: volumeBytes,
		NumDocuments:    numDocs,
		NumServers:      numServers,
	}
}
