package filter

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/shardcost/internal/domain"
)

func TestRouting_ShardKeyInFilter(t *testing.T) {
	scanned, servers, routed := Routing(shardedStock(t), []string{"IDP", "IDW"}, 1000)

	if !routed {
		t.Error("expected routing by shard key")
	}
	if scanned != 200 {
		t.Errorf("expected 200 documents scanned (20M / 100k), got %d", scanned)
	}
	if servers != 1 {
		t.Errorf("expected 1 server, got %d", servers)
	}
}

func TestRouting_BroadcastOnOtherKey(t *testing.T) {
	scanned, servers, routed := Routing(shardedStock(t), []string{"IDW"}, 1000)

	if routed {
		t.Error("expected broadcast for a non-shard filter key")
	}
	if scanned != 20_000_000 {
		t.Errorf("expected full collection scanned, got %d", scanned)
	}
	if servers != 1000 {
		t.Errorf("expected whole cluster, got %d", servers)
	}
}

func TestRouting_UnshardedBroadcasts(t *testing.T) {
	scanned, servers, routed := Routing(unshardedStock(t), []string{"IDP"}, 1000)

	if routed {
		t.Error("expected no routing without a sharding key")
	}
	if scanned != 20_000_000 || servers != 1000 {
		t.Errorf("expected full broadcast, got scanned=%d servers=%d", scanned, servers)
	}
}

func TestEstimate_RoutedScan(t *testing.T) {
	op := testOperator(t)
	res, err := op.Estimate(Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"IDP", "IDW"},
		Selectivity: 1,
		UseIndex:    true,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if !res.RoutedByShardKey {
		t.Error("expected shard-key routing")
	}
	if res.Scanned != 200 {
		t.Errorf("expected 200 scanned, got %d", res.Scanned)
	}
	if res.Output != 200 {
		t.Errorf("expected 200 output at selectivity 1, got %d", res.Output)
	}
	if res.ServersAccessed != 1 {
		t.Errorf("expected 1 server, got %d", res.ServersAccessed)
	}
	if !res.IndexUsed {
		t.Error("expected index flag carried through")
	}

	// C1 = scanned*inSize + output*outSize; no projection, so in == out.
	wantC1 := 200*res.InputDocSizeBytes + 200*res.OutputDocSizeBytes
	if res.C1VolumeBytes != wantC1 {
		t.Errorf("expected C1=%d, got %d", wantC1, res.C1VolumeBytes)
	}
	if res.Cost.NumServers != 1 {
		t.Errorf("expected cost over 1 server, got %d", res.Cost.NumServers)
	}
	if res.Cost.TimeMS <= 0 {
		t.Errorf("expected positive time, got %g", res.Cost.TimeMS)
	}
}

func TestEstimate_OutputProjectionShrinksDocuments(t *testing.T) {
	op := testOperator(t)
	res, err := op.Estimate(Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"IDP"},
		OutputKeys:  []string{"quantity"},
		Selectivity: 0.5,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if res.OutputDocSizeBytes >= res.InputDocSizeBytes {
		t.Errorf("expected projected document smaller than input, got %d >= %d",
			res.OutputDocSizeBytes, res.InputDocSizeBytes)
	}
	if res.Output != 100 {
		t.Errorf("expected 100 output documents (200 * 0.5), got %d", res.Output)
	}
}

func TestEstimate_ZeroSelectivityStillScans(t *testing.T) {
	op := testOperator(t)
	res, err := op.Estimate(Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"IDW"},
		Selectivity: 0,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if res.Output != 0 {
		t.Errorf("expected no output documents, got %d", res.Output)
	}
	// The scan still reads every document of the broadcast.
	if res.C1VolumeBytes != res.Scanned*res.InputDocSizeBytes {
		t.Errorf("expected C1 to contain only the scan volume, got %d", res.C1VolumeBytes)
	}
	if res.Cost.TimeMS <= 0 {
		t.Errorf("expected positive scan time even with empty result, got %g", res.Cost.TimeMS)
	}
}

func TestEstimate_SelectivityOutOfRange(t *testing.T) {
	op := testOperator(t)
	for _, sel := range []float64{-0.1, 1.1} {
		_, err := op.Estimate(Request{
			Collection:  shardedStock(t),
			FilterKeys:  []string{"IDP"},
			Selectivity: sel,
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("selectivity %g: expected ErrInvalidInput, got %v", sel, err)
		}
	}
}

func TestEstimate_UnknownFilterKey(t *testing.T) {
	op := testOperator(t)
	_, err := op.Estimate(Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"color"},
		Selectivity: 0.5,
	})
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestEstimate_UnknownOutputKey(t *testing.T) {
	op := testOperator(t)
	_, err := op.Estimate(Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"IDP"},
		OutputKeys:  []string{"color"},
		Selectivity: 0.5,
	})
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	op := testOperator(t)
	req := Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"IDP"},
		OutputKeys:  []string{"quantity", "location"},
		Selectivity: 0.37,
		UseIndex:    true,
	}

	first, err := op.Estimate(req)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	second, err := op.Estimate(req)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if first != second {
		t.Errorf("expected bit-identical results for identical inputs:\n%+v\n%+v", first, second)
	}
}

func TestEstimate_BroadcastCostsMoreThanRouted(t *testing.T) {
	op := testOperator(t)

	routed, err := op.Estimate(Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"IDP"},
		Selectivity: 0.01,
	})
	if err != nil {
		t.Fatalf("routed: %v", err)
	}
	broadcast, err := op.Estimate(Request{
		Collection:  shardedStock(t),
		FilterKeys:  []string{"IDW"},
		Selectivity: 0.01,
	})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if routed.Cost.TimeMS >= broadcast.Cost.TimeMS {
		t.Errorf("expected routed scan cheaper in time: %g >= %g", routed.Cost.TimeMS, broadcast.Cost.TimeMS)
	}
	if routed.Cost.CarbonGCO2 >= broadcast.Cost.CarbonGCO2 {
		t.Errorf("expected routed scan cheaper in carbon: %g >= %g", routed.Cost.CarbonGCO2, broadcast.Cost.CarbonGCO2)
	}
}
