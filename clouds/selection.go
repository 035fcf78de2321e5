// Package clouds - Price record selection rules
package clouds

import (
	"github.com/shopspring/decimal"

	"arm-cost/core/types"
)

// Sum adds up every matching record
func Sum(records []types.PriceRecord) (decimal.Decimal, bool) {
	if len(records) == 0 {
		return decimal.Zero, false
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.UnitPrice)
	}
	return total, true
}

// Cheapest returns the lowest unit price
func Cheapest(records []types.PriceRecord) (decimal.Decimal, bool) {
	if len(records) == 0 {
		return decimal.Zero, false
	}

	lowest := records[0].UnitPrice
	for _, r := range records[1:] {
		if r.UnitPrice.LessThan(lowest) {
			lowest = r.UnitPrice
		}
	}
	return lowest, true
}

// BaseTier sums the first tier of every meter, ignoring volume discounts
func BaseTier(records []types.PriceRecord) (decimal.Decimal, bool) {
	var base []types.PriceRecord
	for _, r := range records {
		if r.TierMinimumUnits.IsZero() {
			base = append(base, r)
		}
	}
	return Sum(base)
}

// PrimaryRegion keeps records from the primary meter region when any exist
func PrimaryRegion(records []types.PriceRecord) []types.PriceRecord {
	var primary []types.PriceRecord
	for _, r := range records {
		if r.IsPrimaryMeterRegion {
			primary = append(primary, r)
		}
	}
	if len(primary) == 0 {
		return records
	}
	return primary
}
