// Package monitor - Azure Log Analytics workspace pricing strategy
package monitor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// WorkspaceStrategy prices Microsoft.OperationalInsights/workspaces
type WorkspaceStrategy struct{}

// NewWorkspaceStrategy creates a Log Analytics workspace strategy
func NewWorkspaceStrategy() *WorkspaceStrategy {
	return &WorkspaceStrategy{}
}

// ResourceType returns the ARM resource type
func (s *WorkspaceStrategy) ResourceType() string {
	return "Microsoft.OperationalInsights/workspaces"
}

// Requires returns the state resolution rule
func (s *WorkspaceStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter selects the data ingestion meter of the pricing tier
func (s *WorkspaceStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	sku := clouds.Property(state, "sku", "name")
	if sku == "" {
		return nil, errors.MissingField(s.ResourceType(), "properties.sku.name")
	}

	f := clouds.NewFilter().
		Eq("serviceName", "Log Analytics").
		Eq("armRegionName", location)

	switch strings.ToLower(sku) {
	case "pergb2018", "pergb", "payasyougo":
		f.Eq("skuName", "Pay-as-you-go").Eq("meterName", "Pay-as-you-go Data Ingestion")
	case "capacityreservation":
		level := capacityLevel(state)
		if level == "" {
			return nil, errors.MissingField(s.ResourceType(), "properties.sku.capacityReservationLevel")
		}
		f.Eq("skuName", level+" GB Commitment Tier")
	default:
		return nil, errors.Newf(errors.TypeNotSupported, "unsupported Log Analytics pricing tier %q", sku)
	}

	return f.Consumption(), nil
}

// Select sums the base tier
func (s *WorkspaceStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	return clouds.BaseTier(records)
}

func capacityLevel(state types.ResourceState) string {
	v, ok := state.Lookup("properties", "sku", "capacityReservationLevel")
	if !ok {
		return ""
	}
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%d", int64(n))
	case int:
		return fmt.Sprintf("%d", n)
	case string:
		return n
	}
	return ""
}
