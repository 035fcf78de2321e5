// Package bot - Azure Bot Service pricing strategy
package bot

import (
	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// ServiceStrategy prices Microsoft.BotService/botServices
type ServiceStrategy struct{}

// NewServiceStrategy creates a bot service strategy
func NewServiceStrategy() *ServiceStrategy {
	return &ServiceStrategy{}
}

// ResourceType returns the ARM resource type
func (s *ServiceStrategy) ResourceType() string {
	return "Microsoft.BotService/botServices"
}

// Requires returns the state resolution rule
func (s *ServiceStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter selects the message meters of the SKU
func (s *ServiceStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	sku := clouds.Sku(state)
	if sku == "" {
		return nil, errors.MissingField(s.ResourceType(), "sku.name")
	}

	return clouds.NewFilter().
		Eq("serviceName", "Azure Bot Service").
		Eq("armRegionName", location).
		Eq("skuName", sku).
		Consumption(), nil
}

// Select sums the base tier
func (s *ServiceStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.BaseTier(records)
}
