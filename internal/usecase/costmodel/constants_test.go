package costmodel

import "testing"

func TestDefaults_AreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("default constants invalid: %v", err)
	}
}

func TestMerge_OverlaysNonZero(t *testing.T) {
	merged := Defaults().Merge(Constants{
		FullScanTimeMS: 0.5,
		ClusterServers: 64,
	})

	if merged.FullScanTimeMS != 0.5 {
		t.Errorf("expected FullScanTimeMS=0.5, got %g", merged.FullScanTimeMS)
	}
	if merged.ClusterServers != 64 {
		t.Errorf("expected ClusterServers=64, got %d", merged.ClusterServers)
	}
	// Untouched fields keep their defaults.
	if merged.BandwidthBytesPerMS != Defaults().BandwidthBytesPerMS {
		t.Errorf("expected default bandwidth, got %g", merged.BandwidthBytesPerMS)
	}
	if merged.PricePerGB != Defaults().PricePerGB {
		t.Errorf("expected default price per GB, got %g", merged.PricePerGB)
	}
}

func TestMerge_ZeroIsNoOverride(t *testing.T) {
	merged := Defaults().Merge(Constants{})
	if merged != Defaults() {
		t.Errorf("expected zero overlay to keep defaults, got %+v", merged)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Constants)
	}{
		{"zero bandwidth", func(c *Constants) { c.BandwidthBytesPerMS = 0 }},
		{"negative scan time", func(c *Constants) { c.FullScanTimeMS = -1 }},
		{"negative price", func(c *Constants) { c.PricePerGB = -0.01 }},
		{"zero cluster", func(c *Constants) { c.ClusterServers = 0 }},
		{"total below cluster", func(c *Constants) { c.TotalServers = c.ClusterServers - 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Defaults()
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
