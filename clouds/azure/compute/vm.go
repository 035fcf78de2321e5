// Package compute - Azure VM pricing strategy
// Pricing model:
// - Compute hours (by VM size, region, OS)
// - Managed disks (separate resource)
// - Spot VMs and reservations are excluded
package compute

import (
	"strings"

	"github.com/shopspring/decimal"

	"arm-cost/clouds"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// VMStrategy prices Microsoft.Compute/virtualMachines
type VMStrategy struct{}

// NewVMStrategy creates a VM strategy
func NewVMStrategy() *VMStrategy {
	return &VMStrategy{}
}

// ResourceType returns the ARM resource type
func (s *VMStrategy) ResourceType() string {
	return "Microsoft.Compute/virtualMachines"
}

// Requires returns the state resolution rule
func (s *VMStrategy) Requires() clouds.StateRequirement {
	return clouds.PreferAfter
}

// Filter selects the hourly meters of the VM size
func (s *VMStrategy) Filter(state types.ResourceState, location string) (*clouds.Filter, error) {
	size := clouds.Property(state, "hardwareProfile", "vmSize")
	if size == "" {
		return nil, errors.MissingField(s.ResourceType(), "properties.hardwareProfile.vmSize")
	}

	f := clouds.NewFilter().
		Eq("serviceName", "Virtual Machines").
		Eq("armRegionName", location).
		Eq("armSkuName", size).
		Consumption()

	if isWindows(state) {
		f.Contains("productName", "Windows")
	}
	return f, nil
}

// Select returns the cheapest regular (non-spot, non-low-priority) meter.
// A Windows query only matches Windows products, so when Linux products are
// present the Windows ones are dropped.
func (s *VMStrategy) Select(records []types.PriceRecord) (decimal.Decimal, bool) {
	var linux, windows []types.PriceRecord
	for _, r := range records {
		if strings.Contains(r.SkuName, "Spot") || strings.Contains(r.SkuName, "Low Priority") {
			continue
		}
		if strings.Contains(r.ProductName, "Windows") {
			windows = append(windows, r)
		} else {
			linux = append(linux, r)
		}
	}

	if len(linux) > 0 {
		return clouds.Cheapest(linux)
	}
	return clouds.Cheapest(windows)
}

func isWindows(state types.ResourceState) bool {
	return strings.EqualFold(clouds.Property(state, "storageProfile", "osDisk", "osType"), "Windows")
}
