// Package network - Azure Firewall pricing strategy
// Pricing model:
// - Deployment hours (by tier)
// - Data processed (per GB)
package network

import (
	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// FirewallStrategy prices Microsoft.Network/azureFirewalls
type FirewallStrategy struct{}

// NewFirewallStrategy creates a firewall strategy
func NewFirewallStrategy() *FirewallStrategy {
	return &FirewallStrategy{}
}

// ResourceType returns the ARM resource type
func (s *FirewallStrategy) ResourceType() string {
	return "Microsoft.Network/azureFirewalls"
}

// Requires returns the state resolution rule
func (s *FirewallStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter selects the meters of the firewall tier
func (s *FirewallStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	tier := clouds.Property(state, "sku", "tier")
	if tier == "" {
		return nil, errors.MissingField(s.ResourceType(), "properties.sku.tier")
	}

	return clouds.NewFilter().
		Eq("serviceName", "Azure Firewall").
		Eq("armRegionName", location).
		Eq("skuName", tier).
		Consumption(), nil
}

// Select sums deployment and data processing meters
func (s *FirewallStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.Sum(clouds.PrimaryRegion(records))
}
