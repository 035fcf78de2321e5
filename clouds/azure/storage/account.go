// Package storage - Azure Storage Account pricing strategy
// Pricing model:
// - Capacity (per GB-month, by redundancy and access tier)
// - Transactions and data retrieval (not priced here)
package storage

import (
	"strings"

	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// ServiceID is the catalog service identifier of Azure Storage
const ServiceID = "DZH317F1HKN0"

// AccountStrategy prices Microsoft.Storage/storageAccounts
type AccountStrategy struct{}

// NewAccountStrategy creates a storage account strategy
func NewAccountStrategy() *AccountStrategy {
	return &AccountStrategy{}
}

// ResourceType returns the ARM resource type
func (s *AccountStrategy) ResourceType() string {
	return "Microsoft.Storage/storageAccounts"
}

// Requires returns the state resolution rule
func (s *AccountStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter builds the capacity meter filter for the account SKU
func (s *AccountStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	sku := clouds.Sku(state)
	if sku == "" {
		return nil, errors.MissingField(s.ResourceType(), "sku.name")
	}

	catalogSku, err := CatalogSku(sku, clouds.Property(state, "accessTier"))
	if err != nil {
		return nil, err
	}

	return clouds.ServiceFilter(ServiceID, location).
		Eq("skuName", catalogSku).
		Contains("meterName", "Data Stored").
		Consumption(), nil
}

// Select sums the base capacity tier of every matching meter
func (s *AccountStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.BaseTier(clouds.PrimaryRegion(records))
}

// CatalogSku maps an ARM SKU ("Standard_RAGRS") and access tier to the
// catalog sku name ("Hot RA-GRS"). Premium accounts have no access tier.
func CatalogSku(sku, accessTier string) (string, error) {
	parts := strings.SplitN(sku, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.Newf(errors.TypeNotSupported, "unsupported storage SKU %q", sku)
	}

	redundancy, ok := redundancies[strings.ToUpper(parts[1])]
	if !ok {
		return "", errors.Newf(errors.TypeNotSupported, "unsupported storage redundancy %q", parts[1])
	}

	switch strings.ToLower(parts[0]) {
	case "premium":
		return "Premium " + redundancy, nil
	case "standard":
		tier := "Hot"
		switch strings.ToLower(accessTier) {
		case "cool":
			tier = "Cool"
		case "cold":
			tier = "Cold"
		}
		return tier + " " + redundancy, nil
	default:
		return "", errors.Newf(errors.TypeNotSupported, "unsupported storage performance tier %q", parts[0])
	}
}

var redundancies = map[string]string{
	"LRS":    "LRS",
	"ZRS":    "ZRS",
	"GRS":    "GRS",
	"RAGRS":  "RA-GRS",
	"GZRS":   "GZRS",
	"RAGZRS": "RA-GZRS",
}
