// Package types - Pricing types
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// StateSource says which side of a change a pricing query was built from
type StateSource string

const (
	StateBefore StateSource = "before"
	StateAfter  StateSource = "after"
)

// PricingQuery is a catalog request produced by a filter strategy
type PricingQuery struct {
	// URL is the full catalog URL including the $filter predicate
	URL string `json:"url"`

	// ResolvedFrom is the state the filter was built from
	ResolvedFrom StateSource `json:"resolvedFrom"`
}

// PriceRecord is one priced catalog item
type PriceRecord struct {
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Currency         Currency        `json:"currency"`
	MeterDescription string          `json:"meterDescription"`

	SkuName              string          `json:"skuName,omitempty"`
	ProductName          string          `json:"productName,omitempty"`
	UnitOfMeasure        string          `json:"unitOfMeasure,omitempty"`
	TierMinimumUnits     decimal.Decimal `json:"tierMinimumUnits"`
	IsPrimaryMeterRegion bool            `json:"isPrimaryMeterRegion"`
	Type                 string          `json:"type,omitempty"`
}
