// Package containers - Azure Container Apps and Container Registry strategies
package containers

import (
	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
)

const (
	// AppsServiceID is the catalog service identifier of Azure Container Apps
	AppsServiceID = "DZH319F70F09"

	// AppsSkuID is the consumption plan SKU
	AppsSkuID = "DZH318Z0B0NC/0001"
)

// AppStrategy prices Microsoft.App/containerApps on the consumption plan
type AppStrategy struct{}

// NewAppStrategy creates a container app strategy
func NewAppStrategy() *AppStrategy {
	return &AppStrategy{}
}

// ResourceType returns the ARM resource type
func (s *AppStrategy) ResourceType() string {
	return "Microsoft.App/containerApps"
}

// Requires returns the state resolution rule
func (s *AppStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter selects the consumption plan meters of the region
func (s *AppStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	return clouds.ServiceFilter(AppsServiceID, location).Eq("skuId", AppsSkuID), nil
}

// Select sums vCPU, memory and request meters
func (s *AppStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.Sum(records)
}
