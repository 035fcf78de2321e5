// Package analytics - Azure Time Series Insights pricing strategy
package analytics

import (
	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// TimeSeriesStrategy prices Microsoft.TimeSeriesInsights/environments
type TimeSeriesStrategy struct{}

// NewTimeSeriesStrategy creates a Time Series Insights strategy
func NewTimeSeriesStrategy() *TimeSeriesStrategy {
	return &TimeSeriesStrategy{}
}

// ResourceType returns the ARM resource type
func (s *TimeSeriesStrategy) ResourceType() string {
	return "Microsoft.TimeSeriesInsights/environments"
}

// Requires returns the state resolution rule
func (s *TimeSeriesStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter selects the unit meters of the environment SKU
func (s *TimeSeriesStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	sku := clouds.Sku(state)
	if sku == "" {
		return nil, errors.MissingField(s.ResourceType(), "sku.name")
	}

	return clouds.NewFilter().
		Eq("serviceName", "Time Series Insights").
		Eq("armRegionName", location).
		Eq("skuName", sku).
		Consumption(), nil
}

// Select sums unit and storage meters
func (s *TimeSeriesStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.Sum(records)
}
