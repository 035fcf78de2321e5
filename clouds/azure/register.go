// Package azure - Azure pricing strategy registration
package azure

import (
	"arm-cost/clouds"
	"arm-cost/clouds/azure/analytics"
	"arm-cost/clouds/azure/bot"
	"arm-cost/clouds/azure/compute"
	"arm-cost/clouds/azure/containers"
	"arm-cost/clouds/azure/monitor"
	"arm-cost/clouds/azure/network"
	"arm-cost/clouds/azure/storage"
	"arm-cost/clouds/azure/web"
	"arm-cost/core/types"
)

// Strategies returns one instance of every Azure strategy
func Strategies() []clouds.Strategy {
	return []clouds.Strategy{
		// Compute
		compute.NewVMStrategy(),
		web.NewPlanStrategy(),

		// Containers
		containers.NewAppStrategy(),
		containers.NewRegistryStrategy(),

		// Storage
		storage.NewAccountStrategy(),

		// Networking
		network.NewFirewallStrategy(),

		// Monitoring & analytics
		monitor.NewWorkspaceStrategy(),
		analytics.NewTimeSeriesStrategy(),

		// AI
		bot.NewServiceStrategy(),
	}
}

// Register adds every Azure strategy to r
func Register(r *clouds.Registry) error {
	for _, s := range Strategies() {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry creates a registry with all Azure strategies registered
func NewRegistry(endpoint string, currency types.Currency) (*clouds.Registry, error) {
	r := clouds.NewRegistry(endpoint, currency)
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// SupportedResourceTypes returns all supported Azure resource types
func SupportedResourceTypes() []string {
	strategies := Strategies()
	out := make([]string, len(strategies))
	for i, s := range strategies {
		out[i] = s.ResourceType()
	}
	return out
}
