package market

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/observability"
)

// PlatformStats computes platform-wide aggregates from the property
// working set and a live investment scan. The result is derived state;
// it is recomputed per call and persisted to history by the snapshot
// scheduler, not cached here.
func (s *Service) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	properties, err := s.workingSet(ctx, false)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	investments, err := s.fetcher.FetchInvestments(fetchCtx)
	observability.RecordRPCLatency("fetch_investments", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: fetch investments: %v", ErrUpstreamUnavailable, err)
	}

	stats := &domain.PlatformStats{
		Properties:      len(properties),
		CollectedAtUnix: time.Now().Unix(),
	}

	priceByPDA := make(map[string]float64, len(properties))
	for i := range properties {
		p := &properties[i]
		priceByPDA[p.PublicKey] = p.TokenPriceUSDC
		stats.TotalValue += float64(p.TotalTokens) * p.TokenPriceUSDC
		stats.DividendsPaid += p.DividendsTotal
		if p.Open() {
			stats.OpenProperties++
		}
	}

	investors := make(map[string]struct{})
	for i := range investments {
		inv := &investments[i]
		if inv.Withdrawn() {
			continue
		}
		investors[inv.Investor] = struct{}{}
		if price, ok := priceByPDA[inv.Property]; ok {
			stats.TotalInvested += float64(inv.Amount) * price
		}
	}
	stats.Investors = len(investors)

	return stats, nil
}
