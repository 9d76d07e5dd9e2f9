package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcelofeitoza/crowd-estate/internal/cache"
	"github.com/marcelofeitoza/crowd-estate/internal/cache/memory"
	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/program"
)

const (
	adminA    = "4Nd1mYvM4kTSsfAyGopnuTCCwQxeGGv1ufUGAKBfVvjF"
	adminB    = "So11111111111111111111111111111111111111112"
	investorA = "11111111111111111111111111111111"
)

// fetcherStub implements program.AccountFetcher with scripted data and
// call counters.
type fetcherStub struct {
	mu          sync.Mutex
	properties  []domain.Property
	investments []domain.Investment
	err         error

	propertyCalls   int
	investmentCalls int
}

func (f *fetcherStub) FetchProperties(context.Context) ([]domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.propertyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Property(nil), f.properties...), nil
}

func (f *fetcherStub) FetchInvestments(context.Context) ([]domain.Investment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.investmentCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Investment(nil), f.investments...), nil
}

func (f *fetcherStub) FetchProperty(_ context.Context, pda string) (*domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.properties {
		if f.properties[i].PublicKey == pda {
			p := f.properties[i]
			return &p, nil
		}
	}
	return nil, program.ErrAccountNotFound
}

func (f *fetcherStub) FetchInvestment(_ context.Context, pda string) (*domain.Investment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.investments {
		if f.investments[i].PublicKey == pda {
			inv := f.investments[i]
			return &inv, nil
		}
	}
	return nil, program.ErrAccountNotFound
}

func (f *fetcherStub) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.propertyCalls, f.investmentCalls
}

var _ program.AccountFetcher = (*fetcherStub)(nil)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testProperties() []domain.Property {
	return []domain.Property{
		{PublicKey: "P1", Name: "Villa One", Admin: adminA, TotalTokens: 100, TokenPriceUSDC: 2.0, IsClosed: true},
		{PublicKey: "P2", Name: "Villa Two", Admin: adminB, TotalTokens: 200, TokenPriceUSDC: 1.0, IsClosed: false},
		{PublicKey: "P3", Name: "Villa Three", Admin: adminA, TotalTokens: 50, TokenPriceUSDC: 3.0, IsClosed: false},
	}
}

func newTestService(t *testing.T, fetcher *fetcherStub) (*Service, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	c := memory.New(memory.WithClock(clock.Now))
	t.Cleanup(c.Close)
	return NewService(fetcher, c, quietLogger()), clock
}

func TestGetProperties_CacheHitAvoidsFetch(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("first GetProperties: %v", err)
	}
	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("second GetProperties: %v", err)
	}

	if calls, _ := fetcher.calls(); calls != 1 {
		t.Errorf("Expected 1 ledger fetch, got %d", calls)
	}
}

func TestGetProperties_TTLExpiryForcesRefetch(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, clock := newTestService(t, fetcher)
	ctx := context.Background()

	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("GetProperties: %v", err)
	}

	clock.Advance(cache.ListTTL + time.Second)

	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("GetProperties after expiry: %v", err)
	}
	if calls, _ := fetcher.calls(); calls != 2 {
		t.Errorf("Expected 2 ledger fetches, got %d", calls)
	}

	// Repopulated: a third call within TTL is served from cache.
	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("third GetProperties: %v", err)
	}
	if calls, _ := fetcher.calls(); calls != 2 {
		t.Errorf("Expected cache repopulated after refetch, got %d fetches", calls)
	}
}

func TestGetProperties_InvalidationForcesRefetch(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("GetProperties: %v", err)
	}
	if err := svc.InvalidateAllProperties(ctx); err != nil {
		t.Fatalf("InvalidateAllProperties: %v", err)
	}
	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("GetProperties after invalidation: %v", err)
	}

	if calls, _ := fetcher.calls(); calls != 2 {
		t.Errorf("Expected refetch after invalidation, got %d fetches", calls)
	}
}

func TestGetProperties_ForceRefreshBypassesCacheRead(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("GetProperties: %v", err)
	}
	if _, err := svc.GetProperties(ctx, PropertiesQuery{ForceRefresh: true}); err != nil {
		t.Fatalf("forced GetProperties: %v", err)
	}
	if calls, _ := fetcher.calls(); calls != 2 {
		t.Errorf("Expected forced refresh to fetch, got %d fetches", calls)
	}

	// The forced refresh still repopulated the cache.
	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("GetProperties after force: %v", err)
	}
	if calls, _ := fetcher.calls(); calls != 2 {
		t.Errorf("Expected repopulated cache, got %d fetches", calls)
	}
}

func TestGetProperties_Filters(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    PropertiesQuery
		wantPDAs []string
	}{
		{
			name:     "open only",
			query:    PropertiesQuery{Filters: []domain.Filter{domain.FilterOpen}},
			wantPDAs: []string{"P2", "P3"},
		},
		{
			name:     "closed only",
			query:    PropertiesQuery{Filters: []domain.Filter{domain.FilterClosed}},
			wantPDAs: []string{"P1"},
		},
		{
			name:     "by admin",
			query:    PropertiesQuery{Filters: []domain.Filter{domain.FilterUser}, User: adminA},
			wantPDAs: []string{"P3", "P1"}, // open before closed
		},
		{
			name:     "open and admin combine with AND",
			query:    PropertiesQuery{Filters: []domain.Filter{domain.FilterOpen, domain.FilterUser}, User: adminA},
			wantPDAs: []string{"P3"},
		},
		{
			name:     "all passes everything regardless of other flags",
			query:    PropertiesQuery{Filters: []domain.Filter{domain.FilterAll, domain.FilterClosed}},
			wantPDAs: []string{"P2", "P3", "P1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetProperties(ctx, tt.query)
			if err != nil {
				t.Fatalf("GetProperties: %v", err)
			}
			if len(got) != len(tt.wantPDAs) {
				t.Fatalf("Expected %d properties, got %d", len(tt.wantPDAs), len(got))
			}
			for i, want := range tt.wantPDAs {
				if got[i].PublicKey != want {
					t.Errorf("Position %d: got %s, want %s", i, got[i].PublicKey, want)
				}
			}
		})
	}
}

func TestGetProperties_SortOpenFirst(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, _ := newTestService(t, fetcher)

	got, err := svc.GetProperties(context.Background(), PropertiesQuery{})
	if err != nil {
		t.Fatalf("GetProperties: %v", err)
	}

	// P2 and P3 are open and keep their mutual order; closed P1 sinks.
	want := []string{"P2", "P3", "P1"}
	for i, pda := range want {
		if got[i].PublicKey != pda {
			t.Errorf("Position %d: got %s, want %s", i, got[i].PublicKey, pda)
		}
	}
}

func TestGetProperties_UserFilterRequiresValidKey(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.GetProperties(context.Background(), PropertiesQuery{
		Filters: []domain.Filter{domain.FilterUser},
		User:    "not-a-key",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if calls, _ := fetcher.calls(); calls != 0 {
		t.Errorf("Validation must reject before any ledger access, got %d fetches", calls)
	}
}

func TestGetProperties_UpstreamFailure(t *testing.T) {
	fetcher := &fetcherStub{err: errors.New("rpc down")}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.GetProperties(context.Background(), PropertiesQuery{})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestGetProperties_FreshCacheServedDuringOutage(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	if _, err := svc.GetProperties(ctx, PropertiesQuery{}); err != nil {
		t.Fatalf("GetProperties: %v", err)
	}

	// RPC goes down; the fresh cache entry still serves reads.
	fetcher.mu.Lock()
	fetcher.err = errors.New("rpc down")
	fetcher.mu.Unlock()

	got, err := svc.GetProperties(ctx, PropertiesQuery{})
	if err != nil {
		t.Fatalf("Expected cache hit during outage, got %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected 3 properties, got %d", len(got))
	}
}

// failingCache simulates an unreachable backend on every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}
func (failingCache) Delete(context.Context, ...string) error { return errors.New("backend down") }
func (failingCache) Ping(context.Context) error              { return errors.New("backend down") }

func TestGetProperties_CacheOutageDegradesToLive(t *testing.T) {
	fetcher := &fetcherStub{properties: testProperties()}
	svc := NewService(fetcher, failingCache{}, quietLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := svc.GetProperties(ctx, PropertiesQuery{})
		if err != nil {
			t.Fatalf("GetProperties with dead cache: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("Expected 3 properties, got %d", len(got))
		}
	}

	// Every read went live.
	if calls, _ := fetcher.calls(); calls != 2 {
		t.Errorf("Expected 2 live fetches, got %d", calls)
	}
}

func TestGetProperty_Singleton(t *testing.T) {
	fetcher := &fetcherStub{properties: []domain.Property{
		{PublicKey: adminB, Name: "Villa", TokenPriceUSDC: 1.5},
	}}
	svc, clock := newTestService(t, fetcher)
	ctx := context.Background()

	p, err := svc.GetProperty(ctx, adminB, false)
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if p.Name != "Villa" {
		t.Errorf("Name = %q", p.Name)
	}

	// Singleton entries outlive the list TTL.
	clock.Advance(cache.ListTTL + time.Second)
	if _, err := svc.GetProperty(ctx, adminB, false); err != nil {
		t.Fatalf("GetProperty within singleton TTL: %v", err)
	}
}

func TestGetProperty_NotFound(t *testing.T) {
	fetcher := &fetcherStub{}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.GetProperty(context.Background(), adminB, false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetProperty_InvalidKey(t *testing.T) {
	svc, _ := newTestService(t, &fetcherStub{})

	_, err := svc.GetProperty(context.Background(), "bogus!", false)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestGetInvestments_Aggregates(t *testing.T) {
	fetcher := &fetcherStub{
		investments: []domain.Investment{
			{PublicKey: "I1", Investor: investorA, Property: "P1", Amount: 10, DividendsClaimed: 0.5},
		},
	}
	svc, _ := newTestService(t, fetcher)

	properties := []domain.Property{{PublicKey: "P1", TokenPriceUSDC: 2.0}}
	summary, err := svc.GetInvestments(context.Background(), investorA, properties, false)
	if err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}

	if summary.TotalInvested != 20.0 {
		t.Errorf("TotalInvested = %v, want 20.0", summary.TotalInvested)
	}
	if summary.TotalReturns != 0.5 {
		t.Errorf("TotalReturns = %v, want 0.5", summary.TotalReturns)
	}
	if summary.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", summary.Skipped)
	}
}

func TestGetInvestments_MissingPropertySkipped(t *testing.T) {
	fetcher := &fetcherStub{
		investments: []domain.Investment{
			{PublicKey: "I1", Investor: investorA, Property: "P1", Amount: 10, DividendsClaimed: 0.5},
			{PublicKey: "I2", Investor: investorA, Property: "GONE", Amount: 99, DividendsClaimed: 9.9},
		},
	}
	svc, _ := newTestService(t, fetcher)

	properties := []domain.Property{{PublicKey: "P1", TokenPriceUSDC: 2.0}}
	summary, err := svc.GetInvestments(context.Background(), investorA, properties, false)
	if err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}

	if summary.TotalInvested != 20.0 || summary.TotalReturns != 0.5 {
		t.Errorf("Skipped investment contributed to aggregates: invested=%v returns=%v",
			summary.TotalInvested, summary.TotalReturns)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
}

func TestGetInvestments_FiltersOtherInvestorsAndWithdrawn(t *testing.T) {
	fetcher := &fetcherStub{
		investments: []domain.Investment{
			{PublicKey: "I1", Investor: investorA, Property: "P1", Amount: 10},
			{PublicKey: "I2", Investor: adminA, Property: "P1", Amount: 5},
			{PublicKey: "I3", Investor: investorA, Property: "P2", Amount: 0}, // withdrawn
		},
	}
	svc, _ := newTestService(t, fetcher)

	summary, err := svc.GetInvestments(context.Background(), investorA, testProperties(), false)
	if err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}
	if len(summary.Investments) != 1 || summary.Investments[0].PublicKey != "I1" {
		t.Errorf("Expected only I1, got %+v", summary.Investments)
	}
}

func TestGetInvestments_CachedPerInvestor(t *testing.T) {
	fetcher := &fetcherStub{
		investments: []domain.Investment{
			{PublicKey: "I1", Investor: investorA, Property: "P1", Amount: 10},
		},
	}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()
	properties := testProperties()

	if _, err := svc.GetInvestments(ctx, investorA, properties, false); err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}
	if _, err := svc.GetInvestments(ctx, investorA, properties, false); err != nil {
		t.Fatalf("second GetInvestments: %v", err)
	}
	if _, calls := fetcher.calls(); calls != 1 {
		t.Errorf("Expected 1 investment fetch, got %d", calls)
	}

	// A different investor has their own cache key.
	if _, err := svc.GetInvestments(ctx, adminA, properties, false); err != nil {
		t.Fatalf("GetInvestments other investor: %v", err)
	}
	if _, calls := fetcher.calls(); calls != 2 {
		t.Errorf("Expected per-investor cache keys, got %d fetches", calls)
	}
}

func TestGetInvestments_AggregatesTrackPriceChanges(t *testing.T) {
	fetcher := &fetcherStub{
		investments: []domain.Investment{
			{PublicKey: "I1", Investor: investorA, Property: "P1", Amount: 10},
		},
	}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	first, err := svc.GetInvestments(ctx, investorA, []domain.Property{{PublicKey: "P1", TokenPriceUSDC: 2.0}}, false)
	if err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}
	if first.TotalInvested != 20.0 {
		t.Fatalf("TotalInvested = %v", first.TotalInvested)
	}

	// Positions come from cache but aggregates follow the new prices.
	second, err := svc.GetInvestments(ctx, investorA, []domain.Property{{PublicKey: "P1", TokenPriceUSDC: 3.0}}, false)
	if err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}
	if second.TotalInvested != 30.0 {
		t.Errorf("TotalInvested = %v, want 30.0", second.TotalInvested)
	}
	if _, calls := fetcher.calls(); calls != 1 {
		t.Errorf("Expected cached positions, got %d fetches", calls)
	}
}

func TestInvalidation_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, &fetcherStub{})
	ctx := context.Background()

	// Never-cached keys, repeated calls: all must succeed.
	for i := 0; i < 2; i++ {
		if err := svc.InvalidateProperty(ctx, "neverCached"); err != nil {
			t.Errorf("InvalidateProperty call %d: %v", i+1, err)
		}
		if err := svc.InvalidateAllProperties(ctx); err != nil {
			t.Errorf("InvalidateAllProperties call %d: %v", i+1, err)
		}
		if err := svc.InvalidateInvestorInvestments(ctx, investorA); err != nil {
			t.Errorf("InvalidateInvestorInvestments call %d: %v", i+1, err)
		}
	}
}

func TestInvalidateInvestorInvestments_ForcesRefetch(t *testing.T) {
	fetcher := &fetcherStub{
		investments: []domain.Investment{
			{PublicKey: "I1", Investor: investorA, Property: "P1", Amount: 10},
		},
	}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()
	properties := testProperties()

	if _, err := svc.GetInvestments(ctx, investorA, properties, false); err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}
	if err := svc.InvalidateInvestorInvestments(ctx, investorA); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.GetInvestments(ctx, investorA, properties, false); err != nil {
		t.Fatalf("GetInvestments after invalidation: %v", err)
	}
	if _, calls := fetcher.calls(); calls != 2 {
		t.Errorf("Expected refetch after invalidation, got %d fetches", calls)
	}
}

func TestPlatformStats(t *testing.T) {
	fetcher := &fetcherStub{
		properties: testProperties(),
		investments: []domain.Investment{
			{PublicKey: "I1", Investor: investorA, Property: "P1", Amount: 10},
			{PublicKey: "I2", Investor: adminA, Property: "P2", Amount: 20},
			{PublicKey: "I3", Investor: investorA, Property: "P2", Amount: 0}, // withdrawn
		},
	}
	svc, _ := newTestService(t, fetcher)

	stats, err := svc.PlatformStats(context.Background())
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}

	if stats.Properties != 3 || stats.OpenProperties != 2 {
		t.Errorf("Properties = %d open = %d", stats.Properties, stats.OpenProperties)
	}
	if stats.Investors != 2 {
		t.Errorf("Investors = %d, want 2", stats.Investors)
	}
	// 10*2.0 + 20*1.0
	if stats.TotalInvested != 40.0 {
		t.Errorf("TotalInvested = %v, want 40.0", stats.TotalInvested)
	}
	// 100*2.0 + 200*1.0 + 50*3.0
	if stats.TotalValue != 550.0 {
		t.Errorf("TotalValue = %v, want 550.0", stats.TotalValue)
	}
}
