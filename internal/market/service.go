// Package market is the read path between the API and the ledger: it
// serves property and investment projections from cache, refetches them
// on expiry or explicit invalidation, and computes derived aggregates.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcelofeitoza/crowd-estate/internal/cache"
	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/observability"
	"github.com/marcelofeitoza/crowd-estate/internal/program"
	"github.com/marcelofeitoza/crowd-estate/internal/solana"
)

// DefaultFetchTimeout bounds every ledger fetch. A hung RPC call is
// reported as ErrUpstreamUnavailable instead of hanging the request.
const DefaultFetchTimeout = 10 * time.Second

// Service orchestrates cached reads of ledger state. All fields are set
// at construction; the service is safe for concurrent use.
type Service struct {
	fetcher program.AccountFetcher
	cache   cache.Cache
	log     *logrus.Entry

	fetchTimeout time.Duration
	listTTL      time.Duration
	singletonTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithFetchTimeout overrides the per-fetch deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.fetchTimeout = d
	}
}

// WithListTTL overrides the TTL of list-shaped cache entries.
func WithListTTL(d time.Duration) Option {
	return func(s *Service) {
		s.listTTL = d
	}
}

// WithSingletonTTL overrides the TTL of single-entity cache entries.
func WithSingletonTTL(d time.Duration) Option {
	return func(s *Service) {
		s.singletonTTL = d
	}
}

// NewService creates a read service over the given ledger accessor and
// cache backend.
func NewService(fetcher program.AccountFetcher, c cache.Cache, log *logrus.Logger, opts ...Option) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		fetcher:      fetcher,
		cache:        c,
		log:          log.WithField("component", "market"),
		fetchTimeout: DefaultFetchTimeout,
		listTTL:      cache.ListTTL,
		singletonTTL: cache.SingletonTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PropertiesQuery describes a property listing request.
type PropertiesQuery struct {
	Filters      []domain.Filter
	User         string // required when Filters contains USER
	ForceRefresh bool
}

// GetProperties returns the property listing, filtered and sorted with
// open properties first. The full unfiltered working set is what gets
// cached; filtering happens on an in-memory copy.
func (s *Service) GetProperties(ctx context.Context, q PropertiesQuery) ([]domain.Property, error) {
	filters := q.Filters
	if len(filters) == 0 {
		filters = []domain.Filter{domain.FilterAll}
	}
	if hasFilter(filters, domain.FilterUser) {
		if err := solana.ValidatePublicKey(q.User); err != nil {
			return nil, fmt.Errorf("%w: user %q: %v", ErrInvalidInput, q.User, err)
		}
	}

	properties, err := s.workingSet(ctx, q.ForceRefresh)
	if err != nil {
		return nil, err
	}

	result := applyFilters(properties, filters, q.User)
	sortOpenFirst(result)
	return result, nil
}

// workingSet returns the full property list, from cache when fresh.
func (s *Service) workingSet(ctx context.Context, forceRefresh bool) ([]domain.Property, error) {
	if !forceRefresh {
		var cached []domain.Property
		if ok := s.cacheGet(ctx, cache.PropertiesKey, "properties", &cached); ok {
			return cached, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	properties, err := s.fetcher.FetchProperties(fetchCtx)
	observability.RecordRPCLatency("fetch_properties", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: fetch properties: %v", ErrUpstreamUnavailable, err)
	}
	observability.RecordAccountsFetched("property", len(properties))

	s.cacheSet(ctx, cache.PropertiesKey, properties, s.listTTL)
	return properties, nil
}

// GetProperty returns one property by its PDA. Singleton entries carry a
// long TTL; writes that touch the property invalidate them explicitly.
func (s *Service) GetProperty(ctx context.Context, pda string, forceRefresh bool) (*domain.Property, error) {
	if err := solana.ValidatePublicKey(pda); err != nil {
		return nil, fmt.Errorf("%w: property %q: %v", ErrInvalidInput, pda, err)
	}

	key := cache.PropertyKey(pda)
	if !forceRefresh {
		var cached domain.Property
		if ok := s.cacheGet(ctx, key, "property", &cached); ok {
			return &cached, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	p, err := s.fetcher.FetchProperty(fetchCtx, pda)
	observability.RecordRPCLatency("fetch_property", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, program.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: property %s", ErrNotFound, pda)
		}
		return nil, fmt.Errorf("%w: fetch property %s: %v", ErrUpstreamUnavailable, pda, err)
	}

	s.cacheSet(ctx, key, p, s.singletonTTL)
	return p, nil
}

// GetInvestments returns the investor's live positions plus aggregates.
// Aggregates are recomputed on every call from the supplied properties,
// never cached, since token prices move independently of positions.
func (s *Service) GetInvestments(ctx context.Context, investor string, properties []domain.Property, forceRefresh bool) (*domain.InvestmentSummary, error) {
	if err := solana.ValidatePublicKey(investor); err != nil {
		return nil, fmt.Errorf("%w: investor %q: %v", ErrInvalidInput, investor, err)
	}

	investments, err := s.investorPositions(ctx, investor, forceRefresh)
	if err != nil {
		return nil, err
	}

	byPDA := make(map[string]*domain.Property, len(properties))
	for i := range properties {
		byPDA[properties[i].PublicKey] = &properties[i]
	}

	summary := &domain.InvestmentSummary{Investments: investments}
	for i := range investments {
		p, ok := byPDA[investments[i].Property]
		if !ok {
			summary.Skipped++
			continue
		}
		summary.TotalInvested += float64(investments[i].Amount) * p.TokenPriceUSDC
		summary.TotalReturns += investments[i].DividendsClaimed
	}

	if summary.Skipped > 0 {
		observability.RecordSkippedInvestments(summary.Skipped)
		s.log.WithFields(logrus.Fields{
			"investor": investor,
			"skipped":  summary.Skipped,
		}).Warn("investments skipped: property not in working set")
	}
	return summary, nil
}

// investorPositions returns the investor's live positions, from cache
// when fresh. Withdrawn positions are dropped before caching.
func (s *Service) investorPositions(ctx context.Context, investor string, forceRefresh bool) ([]domain.Investment, error) {
	key := cache.InvestmentsKey(investor)
	if !forceRefresh {
		var cached []domain.Investment
		if ok := s.cacheGet(ctx, key, "investments", &cached); ok {
			return cached, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	all, err := s.fetcher.FetchInvestments(fetchCtx)
	observability.RecordRPCLatency("fetch_investments", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: fetch investments for %s: %v", ErrUpstreamUnavailable, investor, err)
	}
	observability.RecordAccountsFetched("investment", len(all))

	positions := make([]domain.Investment, 0)
	for i := range all {
		if all[i].Investor == investor && !all[i].Withdrawn() {
			positions = append(positions, all[i])
		}
	}

	s.cacheSet(ctx, key, positions, s.listTTL)
	return positions, nil
}

// cacheGet reads and decodes a cache entry into out. Returns false on a
// miss; backend errors and corrupt entries degrade to a miss.
func (s *Service) cacheGet(ctx context.Context, key, kind string, out any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			observability.RecordCacheMiss(kind)
			return false
		}
		observability.RecordCacheError()
		s.log.WithError(err).WithField("key", key).Warn("cache read failed, serving live")
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		observability.RecordCacheError()
		s.log.WithError(err).WithField("key", key).Warn("corrupt cache entry, serving live")
		return false
	}
	observability.RecordCacheHit(kind)
	return true
}

// cacheSet serializes and stores a value. Failures are logged, never
// surfaced: a missed cache write only costs the next read a fetch.
func (s *Service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("cache value marshal failed")
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		observability.RecordCacheError()
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}
