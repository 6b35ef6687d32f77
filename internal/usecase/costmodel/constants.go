package costmodel

import "fmt"

// Constants are the physical and billing constants of the modeled platform.
// They are injected into the model explicitly so a comparison run can be
// replayed under alternate hardware assumptions.
type Constants struct {
	// BandwidthBytesPerMS is the network transfer rate.
	BandwidthBytesPerMS float64 `yaml:"bandwidth_bytes_per_ms"`
	// IndexAccessTimeMS is the per-document scan time through an index.
	IndexAccessTimeMS float64 `yaml:"index_access_time_ms"`
	// FullScanTimeMS is the per-document scan time without an index.
	FullScanTimeMS float64 `yaml:"full_scan_time_ms"`
	// ComparisonTimeMS is the time of one key comparison. Carried for
	// completeness; the current formulas do not charge individual probes.
	ComparisonTimeMS float64 `yaml:"comparison_time_ms"`

	// PricePerGB and CarbonPerGB are billed per gigabyte transferred.
	PricePerGB  float64 `yaml:"price_per_gb"`
	CarbonPerGB float64 `yaml:"carbon_per_gb"`
	// PricePerServerMS and CarbonPerServerMS are billed per server per
	// millisecond of processing or transfer.
	PricePerServerMS  float64 `yaml:"price_per_server_ms"`
	CarbonPerServerMS float64 `yaml:"carbon_per_server_ms"`

	// ClusterServers is the number of servers a sharded collection spreads
	// over; a broadcast touches all of them.
	ClusterServers int `yaml:"cluster_servers"`
	// TotalServers caps the union of servers a multi-collection query can
	// involve.
	TotalServers int `yaml:"total_servers"`
}

// bytesPerGB converts transfer volumes for the per-GB rates.
const bytesPerGB = 1e9

// Defaults returns round public-cloud figures: a 10 Gbit/s interconnect,
// indexed access two orders of magnitude cheaper than a full scan, and
// egress-style transfer rates. Every value can be overridden in the config
// file.
func Defaults() Constants {
	return Constants{
		BandwidthBytesPerMS: 1_250_000, // 10 Gbit/s
		IndexAccessTimeMS:   0.0001,
		FullScanTimeMS:      0.01,
		ComparisonTimeMS:    0.000001,
		PricePerGB:          0.09,
		CarbonPerGB:         3.0,
		PricePerServerMS:    1.4e-8, // ≈ $0.05 per server-hour
		CarbonPerServerMS:   1.1e-5, // ≈ 40 W at 400 gCO2/kWh
		ClusterServers:      1000,
		TotalServers:        1000,
	}
}

// Merge overlays non-zero fields of other onto c and returns the result.
func (c Constants) Merge(other Constants) Constants {
	merged := c
	if other.BandwidthBytesPerMS > 0 {
		merged.BandwidthBytesPerMS = other.BandwidthBytesPerMS
	}
	if other.IndexAccessTimeMS > 0 {
		merged.IndexAccessTimeMS = other.IndexAccessTimeMS
	}
	if other.FullScanTimeMS > 0 {
		merged.FullScanTimeMS = other.FullScanTimeMS
	}
	if other.ComparisonTimeMS > 0 {
		merged.ComparisonTimeMS = other.ComparisonTimeMS
	}
	if other.PricePerGB > 0 {
		merged.PricePerGB = other.PricePerGB
	}
	if other.CarbonPerGB > 0 {
		merged.CarbonPerGB = other.CarbonPerGB
	}
	if other.PricePerServerMS > 0 {
		merged.PricePerServerMS = other.PricePerServerMS
	}
	if other.CarbonPerServerMS > 0 {
		merged.CarbonPerServerMS = other.CarbonPerServerMS
	}
	if other.ClusterServers > 0 {
		merged.ClusterServers = other.ClusterServers
	}
	if other.TotalServers > 0 {
		merged.TotalServers = other.TotalServers
	}
	return merged
}

// Validate checks the constants for physical plausibility.
func (c Constants) Validate() error {
	if c.BandwidthBytesPerMS <= 0 {
		return fmt.Errorf("bandwidth must be positive, got %g", c.BandwidthBytesPerMS)
	}
	if c.IndexAccessTimeMS < 0 || c.FullScanTimeMS < 0 || c.ComparisonTimeMS < 0 {
		return fmt.Errorf("per-document times must be >= 0")
	}
	if c.PricePerGB < 0 || c.CarbonPerGB < 0 || c.PricePerServerMS < 0 || c.CarbonPerServerMS < 0 {
		return fmt.Errorf("rates must be >= 0")
	}
	if c.ClusterServers < 1 {
		return fmt.Errorf("cluster servers must be >= 1, got %d", c.ClusterServers)
	}
	if c.TotalServers < c.ClusterServers {
		return fmt.Errorf("total servers (%d) cannot be below cluster servers (%d)", c.TotalServers, c.ClusterServers)
	}
	return nil
}
