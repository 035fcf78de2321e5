// Package web - Azure App Service Plan pricing strategy
// Pricing model:
// - Instance hours (by SKU and operating system)
package web

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// PlanStrategy prices Microsoft.Web/serverfarms
type PlanStrategy struct{}

// NewPlanStrategy creates an app service plan strategy
func NewPlanStrategy() *PlanStrategy {
	return &PlanStrategy{}
}

// ResourceType returns the ARM resource type
func (s *PlanStrategy) ResourceType() string {
	return "Microsoft.Web/serverfarms"
}

// Requires returns the state resolution rule
func (s *PlanStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter selects the instance meter of the plan SKU and OS
func (s *PlanStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	sku := clouds.Sku(state)
	if sku == "" {
		return nil, errors.MissingField(s.ResourceType(), "sku.name")
	}

	os := "Windows"
	if isLinux(state) {
		os = "Linux"
	}

	return clouds.NewFilter().
		Eq("serviceName", "Azure App Service").
		Eq("armRegionName", location).
		Eq("skuName", CatalogSku(sku)).
		Contains("productName", os).
		Consumption(), nil
}

// Select returns the cheapest matching instance meter
func (s *PlanStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.Cheapest(records)
}

var skuVersion = regexp.MustCompile(`^([A-Za-z]+[0-9]+)(v[0-9]+)$`)

// CatalogSku inserts the space the catalog uses before a version suffix
// ("P1v3" becomes "P1 v3")
func CatalogSku(sku string) string {
	if m := skuVersion.FindStringSubmatch(sku); m != nil {
		return m[1] + " " + m[2]
	}
	return sku
}

func isLinux(state types.ResourceState) bool {
	if strings.Contains(strings.ToLower(state.String("kind")), "linux") {
		return true
	}
	v, ok := state.Lookup("properties", "reserved")
	if !ok {
		return false
	}
	reserved, _ := v.(bool)
	return reserved
}
