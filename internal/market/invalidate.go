package market

import (
	"context"
	"fmt"

	"github.com/marcelofeitoza/crowd-estate/internal/cache"
	"github.com/marcelofeitoza/crowd-estate/internal/observability"
)

// Invalidator removes cache entries after a confirmed ledger mutation.
// All operations are idempotent: deleting an absent key is not an error.
type Invalidator interface {
	// InvalidateAllProperties drops the property listing.
	InvalidateAllProperties(ctx context.Context) error

	// InvalidateProperty drops one property's entry and the listing
	// that contains it.
	InvalidateProperty(ctx context.Context, pda string) error

	// InvalidateInvestorInvestments drops an investor's portfolio
	// entry.
	InvalidateInvestorInvestments(ctx context.Context, investor string) error
}

// InvalidateAllProperties drops the property listing.
func (s *Service) InvalidateAllProperties(ctx context.Context) error {
	observability.RecordInvalidation("properties_all")
	if err := s.cache.Delete(ctx, cache.PropertiesKey); err != nil {
		return fmt.Errorf("invalidate properties listing: %w", err)
	}
	return nil
}

// InvalidateProperty drops one property's entry and the listing.
// Listings embed the property, so both must go.
func (s *Service) InvalidateProperty(ctx context.Context, pda string) error {
	observability.RecordInvalidation("property")
	if err := s.cache.Delete(ctx, cache.PropertyKey(pda), cache.PropertiesKey); err != nil {
		return fmt.Errorf("invalidate property %s: %w", pda, err)
	}
	return nil
}

// InvalidateInvestorInvestments drops an investor's portfolio entry.
func (s *Service) InvalidateInvestorInvestments(ctx context.Context, investor string) error {
	observability.RecordInvalidation("investments")
	if err := s.cache.Delete(ctx, cache.InvestmentsKey(investor)); err != nil {
		return fmt.Errorf("invalidate investments for %s: %w", investor, err)
	}
	return nil
}

// Verify interface compliance at compile time.
var _ Invalidator = (*Service)(nil)
