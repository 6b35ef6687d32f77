package render

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/usecase/sharding"
)

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0.00 B"},
		{512, "512.00 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{1 << 20, "1.00 MiB"},
		{1 << 30, "1.00 GiB"},
		{1 << 40, "1.00 TiB"},
	}
	for _, tc := range cases {
		if got := HumanBytes(tc.n); got != tc.want {
			t.Errorf("HumanBytes(%d): expected %q, got %q", tc.n, tc.want, got)
		}
	}
}

func TestCost(t *testing.T) {
	var b strings.Builder
	Cost(&b, domain.QueryCost{
		TimeMS:          12.5,
		CarbonGCO2:      0.003,
		PriceUSD:        0.0001,
		DataVolumeBytes: 2048,
		NumDocuments:    100,
		NumServers:      4,
	})

	out := b.String()
	for _, want := range []string{"12.5", "2.00 KiB", "4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestCompare_MarksRecommendedAndSkew(t *testing.T) {
	var b strings.Builder
	Compare(&b, "OrderLine", []sharding.Distribution{
		{ShardingKey: "IDC", TotalDocuments: 4000, DistinctValues: 4000, NumServers: 1000, ServersWithData: 1000, Utilization: 1},
		{ShardingKey: "date", TotalDocuments: 4000, DistinctValues: 365, NumServers: 1000, ServersWithData: 365, Utilization: 0.365, SkewWarning: true},
	}, "IDC")

	out := b.String()
	if !strings.Contains(out, "OrderLine") {
		t.Errorf("expected collection name in output:\n%s", out)
	}
	if !strings.Contains(out, "IDC") || !strings.Contains(out, "date") {
		t.Errorf("expected both strategies listed:\n%s", out)
	}
}
