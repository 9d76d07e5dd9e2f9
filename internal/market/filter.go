package market

import (
	"sort"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
)

func hasFilter(filters []domain.Filter, want domain.Filter) bool {
	for _, f := range filters {
		if f == want {
			return true
		}
	}
	return false
}

// applyFilters narrows the working set. ALL short-circuits: it passes
// everything regardless of other flags. Multiple non-ALL filters combine
// with AND semantics.
func applyFilters(properties []domain.Property, filters []domain.Filter, user string) []domain.Property {
	result := make([]domain.Property, 0, len(properties))
	if hasFilter(filters, domain.FilterAll) {
		return append(result, properties...)
	}

	for _, p := range properties {
		if matchesAll(&p, filters, user) {
			result = append(result, p)
		}
	}
	return result
}

func matchesAll(p *domain.Property, filters []domain.Filter, user string) bool {
	for _, f := range filters {
		switch f {
		case domain.FilterOpen:
			if p.IsClosed {
				return false
			}
		case domain.FilterClosed:
			if !p.IsClosed {
				return false
			}
		case domain.FilterUser:
			if p.Admin != user {
				return false
			}
		}
	}
	return true
}

// sortOpenFirst orders open properties before closed ones, keeping the
// ledger's order within each group.
func sortOpenFirst(properties []domain.Property) {
	sort.SliceStable(properties, func(i, j int) bool {
		return !properties[i].IsClosed && properties[j].IsClosed
	})
}
