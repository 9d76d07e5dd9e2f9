package domain

import "fmt"

// Filter restricts a property listing.
type Filter string

// Known listing filters. Combining more than one non-ALL filter narrows
// the result (AND semantics); ALL passes everything regardless of the rest.
const (
	FilterAll    Filter = "ALL"
	FilterOpen   Filter = "OPEN"
	FilterClosed Filter = "CLOSED"
	FilterUser   Filter = "USER"
)

// ParseFilter converts a wire string into a Filter.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterOpen, FilterClosed, FilterUser:
		return Filter(s), nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

// ParseFilters converts a list of wire strings. An empty list means ALL.
func ParseFilters(ss []string) ([]Filter, error) {
	if len(ss) == 0 {
		return []Filter{FilterAll}, nil
	}
	filters := make([]Filter, 0, len(ss))
	for _, s := range ss {
		f, err := ParseFilter(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
