package domain

// QueryCost is the resource cost of one query phase: wall-clock time, carbon
// footprint, monetary price, plus the volume and document counters behind
// them. Value object; phases combine with Add.
type QueryCost struct {
	TimeMS          float64 `json:"time_ms"`
	CarbonGCO2      float64 `json:"carbon_gco2"`
	PriceUSD        float64 `json:"price_usd"`
	DataVolumeBytes int64   `json:"data_volume_bytes"`
	NumDocuments    int64   `json:"num_documents"`
	NumServers      int     `json:"num_servers"`
}

// Add combines two phase costs component-wise. Server counts do not add:
// the same servers participate in consecutive phases, so the union is the max.
func (c QueryCost) Add(other QueryCost) QueryCost {
	return QueryCost{
		TimeMS:          c.TimeMS + other.TimeMS,
		CarbonGCO2:      c.CarbonGCO2 + other.CarbonGCO2,
		PriceUSD:        c.PriceUSD + other.PriceUSD,
		DataVolumeBytes: c.DataVolumeBytes + other.DataVolumeBytes,
		NumDocuments:    c.NumDocuments + other.NumDocuments,
		NumServers:      max(c.NumServers, other.NumServers),
	}
}

// Scale multiplies every additive component by n (loop repetition of a
// phase). Server count is unchanged: repeating a phase touches the same
// servers again.
func (c QueryCost) Scale(n int64) QueryCost {
	return QueryCost{
		TimeMS:          c.TimeMS * float64(n),
		CarbonGCO2:      c.CarbonGCO2 * float64(n),
		PriceUSD:        c.PriceUSD * float64(n),
		DataVolumeBytes: c.DataVolumeBytes * n,
		NumDocuments:    c.NumDocuments * n,
		NumServers:      c.NumServers,
	}
}

// IsZero reports whether no resource was charged.
func (c QueryCost) IsZero() bool {
	return c.TimeMS == 0 && c.CarbonGCO2 == 0 && c.PriceUSD == 0 &&
		c.DataVolumeBytes == 0 && c.NumDocuments == 0
}
