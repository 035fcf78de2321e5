package containers

import (
	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// RegistryStrategy prices Microsoft.ContainerRegistry/registries.
// Only the desired state is priced; a registry being deleted costs nothing.
type RegistryStrategy struct{}

// NewRegistryStrategy creates a container registry strategy
func NewRegistryStrategy() *RegistryStrategy {
	return &RegistryStrategy{}
}

// ResourceType returns the ARM resource type
func (s *RegistryStrategy) ResourceType() string {
	return "Microsoft.ContainerRegistry/registries"
}

// Requires returns the state resolution rule
func (s *RegistryStrategy) Requires() clouds.StateRequirement {
	return clouds.AfterOnly
}

// Filter selects the registry unit meter of the SKU
func (s *RegistryStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	sku := clouds.Sku(state)
	if sku == "" {
		return nil, errors.MissingField(s.ResourceType(), "sku.name")
	}

	return clouds.NewFilter().
		Eq("serviceName", "Container Registry").
		Eq("armRegionName", location).
		Eq("skuName", sku).
		Eq("meterName", sku+" Registry Unit").
		Consumption(), nil
}

// Select returns the registry unit price
func (s *RegistryStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.Cheapest(records)
}
