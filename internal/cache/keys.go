package cache

import "time"

// TTLs for the two snapshot classes. Listings go stale quickly as
// investments mint and burn accounts; single accounts only change when
// their own transactions land and are invalidated by the watcher anyway.
const (
	ListTTL      = 15 * time.Second
	SingletonTTL = 10 * time.Minute
)

// PropertiesKey holds the full property listing.
const PropertiesKey = "properties:all"

// PropertyKey returns the key for a single property snapshot.
func PropertyKey(pda string) string {
	return "property:" + pda
}

// InvestmentsKey returns the key for an investor's portfolio snapshot.
func InvestmentsKey(investor string) string {
	return "investments:" + investor
}
