// Package clouds - Pricing strategy contract
// This package defines the contract every resource-type strategy implements.
// Strategies turn a resource state into a catalog filter - they NEVER fetch
// prices themselves.
package clouds

import (
	"github.com/shopspring/decimal"

	"arm-cost/core/types"
)

// StateRequirement says which side of a change a strategy can price
type StateRequirement int

const (
	// PreferAfter uses the desired state when present, else the previous one
	PreferAfter StateRequirement = iota

	// AfterOnly refuses to guess from the previous state
	AfterOnly
)

// String returns the string representation
func (r StateRequirement) String() string {
	if r == AfterOnly {
		return "after-only"
	}
	return "prefer-after"
}

// Strategy is the interface all resource pricing strategies must implement
type Strategy interface {
	// ResourceType returns the ARM resource type (e.g., "Microsoft.Storage/storageAccounts")
	ResourceType() string

	// Requires returns the state resolution rule
	Requires() StateRequirement

	// Filter builds the catalog $filter predicate for a resolved state.
	// Returns a MISSING_FIELD error when a required state field is absent.
	Filter(state types.ResourceState, location string) (*Filter, error)

	// Select reduces the matching price records to one cost.
	// Returns false when nothing usable matched.
	Select(records []types.PriceRecord) (decimal.Decimal, bool)
}

// Sku returns the "sku.name" of a state
func Sku(state types.ResourceState) string {
	return state.String("sku", "name")
}

// SkuTier returns the "sku.tier" of a state
func SkuTier(state types.ResourceState) string {
	return state.String("sku", "tier")
}

// Property returns a string under "properties"
func Property(state types.ResourceState, path ...string) string {
	return state.String(append([]string{"properties"}, path...)...)
}
