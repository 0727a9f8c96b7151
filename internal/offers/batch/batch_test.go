package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
	"insurance_portal_backend/platform/logger"
)

type outcome struct {
	offers []domain.Offer
	err    error
	panics bool
}

type fakeRequester struct {
	outcomes map[string]outcome
	before   func()
}

func (f *fakeRequester) FetchOffer(_ context.Context, _ domain.Order, body domain.ProductRequestBody) ([]domain.Offer, error) {
	if f.before != nil {
		f.before()
	}
	o := f.outcomes[body.ProductID]
	if o.panics {
		panic("nil map write")
	}
	return o.offers, o.err
}

func (f *fakeRequester) MapOfferError(body domain.ProductRequestBody, err error) domain.Offer {
	return ErrorPlaceholder(body, err)
}

type fakeCatalog map[string]ports.CatalogProduct

func (f fakeCatalog) Lookup(_ context.Context, id string) (ports.CatalogProduct, bool) {
	p, ok := f[id]
	return p, ok
}

func (f fakeCatalog) ByFamily(context.Context, domain.ProductFamily) []ports.CatalogProduct {
	return nil
}

var order = domain.Order{ID: 1, Hash: "h"}

func bodies(ids ...string) []domain.ProductRequestBody {
	result := make([]domain.ProductRequestBody, 0, len(ids))
	for _, id := range ids {
		result = append(result, domain.ProductRequestBody{ProductID: id})
	}
	return result
}

func TestRequestAllAccountsForSuccessErrorAndDrop(t *testing.T) {
	requester := &fakeRequester{outcomes: map[string]outcome{
		"A": {offers: []domain.Offer{domain.Confirmed(901, "A", decimal.NewFromInt(450), "RON")}},
		"B": {err: errors.New("dial tcp 10.0.0.5:443: connection refused")},
		"C": {offers: nil},
	}}

	result := New(nil, 0, logger.Nop()).RequestAll(context.Background(), order, bodies("A", "B", "C"), requester)

	if len(result.Offers) != 2 || len(result.Dropped) != 1 {
		t.Fatalf("expected 2 offers and 1 dropped, got %d and %d", len(result.Offers), len(result.Dropped))
	}

	a, b, c := result.Offers[0], result.Offers[1], result.Dropped[0]
	if !a.IsAvailable() || a.Message != "" {
		t.Fatalf("expected clean real offer for A, got %+v", a)
	}
	if b.Status != domain.StatusUnavailable || b.Reason != domain.ReasonError {
		t.Fatalf("expected error placeholder for B, got %+v", b)
	}
	if b.Message != "dial tcp 10.0.0.5:443: connection refused" {
		t.Fatalf("expected caught error text on B, got %q", b.Message)
	}
	if c.ProductID != "C" || c.Reason != domain.ReasonDropped || c.Message != domain.DroppedMessage {
		t.Fatalf("expected dropped placeholder for C, got %+v", c)
	}
}

func TestRequestAllNeverLosesABody(t *testing.T) {
	outcomes := make(map[string]outcome)
	ids := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("p%02d", i)
		ids = append(ids, id)
		switch i % 3 {
		case 0:
			outcomes[id] = outcome{offers: []domain.Offer{domain.Confirmed(int64(i+1), id, decimal.NewFromInt(int64(100+i)), "RON")}}
		case 1:
			outcomes[id] = outcome{err: fmt.Errorf("vendor %s timed out", id)}
		}
	}

	result := New(nil, 4, logger.Nop()).RequestAll(context.Background(), order, bodies(ids...), &fakeRequester{outcomes: outcomes})

	all := result.All()
	if len(all) != len(ids) {
		t.Fatalf("expected %d offers, got %d", len(ids), len(all))
	}
	seen := make(map[string]int)
	for _, offer := range all {
		seen[offer.ProductID]++
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Fatalf("expected %s exactly once, got %d", id, seen[id])
		}
	}
}

func TestRequestAllRunsRequestsConcurrently(t *testing.T) {
	const n = 5
	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	outcomes := make(map[string]outcome)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		ids = append(ids, id)
		outcomes[id] = outcome{offers: []domain.Offer{domain.Confirmed(int64(i+1), id, decimal.NewFromInt(10), "RON")}}
	}

	var timedOut atomic.Bool
	requester := &fakeRequester{outcomes: outcomes, before: func() {
		started.Done()
		select {
		case <-release:
		case <-time.After(2 * time.Second):
			timedOut.Store(true)
		}
	}}

	New(nil, 0, logger.Nop()).RequestAll(context.Background(), order, bodies(ids...), requester)

	if timedOut.Load() {
		t.Fatal("expected all requests to be in flight at the same time")
	}
}

func TestRequestAllRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	requester := &fakeRequester{outcomes: map[string]outcome{}, before: func() {
		current := inFlight.Add(1)
		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	}}

	New(nil, 2, logger.Nop()).RequestAll(context.Background(), order, bodies("a", "b", "c", "d", "e", "f"), requester)

	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 requests in flight, got %d", peak.Load())
	}
}

func TestPanickingRequestBecomesPlaceholder(t *testing.T) {
	requester := &fakeRequester{outcomes: map[string]outcome{
		"ok":    {offers: []domain.Offer{domain.Confirmed(5, "ok", decimal.NewFromInt(99), "RON")}},
		"crash": {panics: true},
	}}

	result := New(nil, 0, logger.Nop()).RequestAll(context.Background(), order, bodies("ok", "crash"), requester)

	if len(result.Offers) != 2 || !result.Offers[0].IsAvailable() {
		t.Fatalf("expected real offer next to the crashed one, got %+v", result.Offers)
	}
	if crashed := result.Offers[1]; crashed.Reason != domain.ReasonError || crashed.ProductID != "crash" {
		t.Fatalf("expected error placeholder for panicking request, got %+v", crashed)
	}
}

func TestRequestAllBackfillsFromCatalog(t *testing.T) {
	catalog := fakeCatalog{
		"A": {ID: "A", VendorName: "Allianz-Tiriac", Name: "RCA", LogoURL: "allianz.png"},
		"B": {ID: "B", VendorName: "Groupama", Name: "RCA Groupama"},
	}
	requester := &fakeRequester{outcomes: map[string]outcome{
		"A": {offers: []domain.Offer{domain.Confirmed(1, "A", decimal.NewFromInt(300), "RON")}},
		"B": {err: errors.New("boom")},
	}}

	result := New(catalog, 0, logger.Nop()).RequestAll(context.Background(), order, bodies("A", "B"), requester)

	if got := result.Offers[0]; got.VendorName != "Allianz-Tiriac" || got.VendorLogo != "allianz.png" {
		t.Fatalf("expected backfilled vendor on A, got %+v", got)
	}
	if got := result.Offers[1]; got.VendorName != "Groupama" {
		t.Fatalf("expected backfilled vendor on placeholder, got %+v", got)
	}
}

func TestVariantBodiesAreTrackedSeparately(t *testing.T) {
	standard := &domain.VariantKey{DurationMonths: 12, Settlement: domain.SettlementStandard}
	direct := &domain.VariantKey{DurationMonths: 12, Settlement: domain.SettlementDirect}
	reqs := []domain.ProductRequestBody{
		{ProductID: "A", Variant: standard},
		{ProductID: "A", Variant: direct},
	}
	requester := &fakeRequester{outcomes: map[string]outcome{
		"A": {offers: []domain.Offer{{ID: 3, ProductID: "A", Premium: decimal.NewFromInt(500), Status: domain.StatusConfirmed, Variant: standard}}},
	}}

	result := New(nil, 0, logger.Nop()).RequestAll(context.Background(), order, reqs, requester)

	if len(result.Dropped) != 1 || !result.Dropped[0].Variant.Equal(*direct) {
		t.Fatalf("expected the direct variant to be dropped, got %+v", result.Dropped)
	}
}
