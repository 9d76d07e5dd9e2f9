package domain

// PlatformStats are derived aggregates over the full property and
// investment working sets. They are always recomputed from cached or
// freshly fetched projections, never cached themselves.
type PlatformStats struct {
	Properties      int     `json:"properties"`
	OpenProperties  int     `json:"openProperties"`
	Investors       int     `json:"investors"`         // distinct investors with a live position
	TotalInvested   float64 `json:"totalInvested"`     // decimal USDC across all live positions
	TotalValue      float64 `json:"totalValueManaged"` // total supply * price across properties
	DividendsPaid   float64 `json:"dividendsPaid"`     // cumulative dividends across properties
	CollectedAtUnix int64   `json:"collectedAt"`
}
