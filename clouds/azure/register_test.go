package azure

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

func TestNewRegistryRegistersEveryStrategy(t *testing.T) {
	r, err := NewRegistry("", types.CurrencyUSD)
	require.NoError(t, err)

	assert.ElementsMatch(t, SupportedResourceTypes(), r.ResourceTypes())
	for _, rt := range SupportedResourceTypes() {
		_, ok := r.Lookup(rt)
		assert.True(t, ok, rt)
	}

	assert.Error(t, Register(r), "registering twice must fail")
}

func TestStrategyFilters(t *testing.T) {
	tests := []struct {
		name         string
		resourceType string
		state        types.ResourceState
		wantClauses  []string
		wantErr      errors.Type
	}{
		{
			name:         "storage standard",
			resourceType: "Microsoft.Storage/storageAccounts",
			state: types.ResourceState{
				"location": "eastus",
				"sku":      map[string]interface{}{"name": "Standard_LRS"},
			},
			wantClauses: []string{"serviceId eq 'DZH317F1HKN0'", "armRegionName eq 'eastus'", "skuName eq 'Hot LRS'"},
		},
		{
			name:         "storage premium",
			resourceType: "Microsoft.Storage/storageAccounts",
			state: types.ResourceState{
				"location": "eastus",
				"sku":      map[string]interface{}{"name": "Premium_LRS"},
			},
			wantClauses: []string{"skuName eq 'Premium LRS'"},
		},
		{
			name:         "storage without sku",
			resourceType: "Microsoft.Storage/storageAccounts",
			state:        types.ResourceState{"location": "eastus"},
			wantErr:      errors.TypeMissingField,
		},
		{
			name:         "container app",
			resourceType: "Microsoft.App/containerApps",
			state:        types.ResourceState{"location": "westeurope"},
			wantClauses:  []string{"serviceId eq 'DZH319F70F09'", "armRegionName eq 'westeurope'", "skuId eq 'DZH318Z0B0NC/0001'"},
		},
		{
			name:         "container registry",
			resourceType: "Microsoft.ContainerRegistry/registries",
			state: types.ResourceState{
				"location": "eastus",
				"sku":      map[string]interface{}{"name": "Premium"},
			},
			wantClauses: []string{"serviceName eq 'Container Registry'", "meterName eq 'Premium Registry Unit'"},
		},
		{
			name:         "linux app service plan",
			resourceType: "Microsoft.Web/serverfarms",
			state: types.ResourceState{
				"location": "eastus",
				"kind":     "linux",
				"sku":      map[string]interface{}{"name": "P1v3"},
			},
			wantClauses: []string{"skuName eq 'P1 v3'", "contains(productName, 'Linux')"},
		},
		{
			name:         "windows app service plan",
			resourceType: "Microsoft.Web/serverfarms",
			state: types.ResourceState{
				"location": "eastus",
				"sku":      map[string]interface{}{"name": "S1"},
			},
			wantClauses: []string{"skuName eq 'S1'", "contains(productName, 'Windows')"},
		},
		{
			name:         "log analytics pay as you go",
			resourceType: "Microsoft.OperationalInsights/workspaces",
			state: types.ResourceState{
				"location":   "eastus",
				"properties": map[string]interface{}{"sku": map[string]interface{}{"name": "PerGB2018"}},
			},
			wantClauses: []string{"skuName eq 'Pay-as-you-go'", "meterName eq 'Pay-as-you-go Data Ingestion'"},
		},
		{
			name:         "log analytics commitment tier",
			resourceType: "Microsoft.OperationalInsights/workspaces",
			state: types.ResourceState{
				"location": "eastus",
				"properties": map[string]interface{}{"sku": map[string]interface{}{
					"name":                     "CapacityReservation",
					"capacityReservationLevel": float64(100),
				}},
			},
			wantClauses: []string{"skuName eq '100 GB Commitment Tier'"},
		},
		{
			name:         "log analytics legacy tier",
			resourceType: "Microsoft.OperationalInsights/workspaces",
			state: types.ResourceState{
				"location":   "eastus",
				"properties": map[string]interface{}{"sku": map[string]interface{}{"name": "Standalone"}},
			},
			wantErr: errors.TypeNotSupported,
		},
		{
			name:         "firewall",
			resourceType: "Microsoft.Network/azureFirewalls",
			state: types.ResourceState{
				"location":   "eastus",
				"properties": map[string]interface{}{"sku": map[string]interface{}{"tier": "Premium"}},
			},
			wantClauses: []string{"serviceName eq 'Azure Firewall'", "skuName eq 'Premium'"},
		},
		{
			name:         "firewall without tier",
			resourceType: "Microsoft.Network/azureFirewalls",
			state:        types.ResourceState{"location": "eastus"},
			wantErr:      errors.TypeMissingField,
		},
		{
			name:         "bot service",
			resourceType: "Microsoft.BotService/botServices",
			state: types.ResourceState{
				"location": "global",
				"sku":      map[string]interface{}{"name": "S1"},
			},
			wantClauses: []string{"serviceName eq 'Azure Bot Service'", "armRegionName eq 'global'"},
		},
		{
			name:         "time series insights",
			resourceType: "Microsoft.TimeSeriesInsights/environments",
			state: types.ResourceState{
				"location": "eastus",
				"sku":      map[string]interface{}{"name": "S1", "capacity": float64(1)},
			},
			wantClauses: []string{"serviceName eq 'Time Series Insights'", "skuName eq 'S1'"},
		},
		{
			name:         "windows virtual machine",
			resourceType: "Microsoft.Compute/virtualMachines",
			state: types.ResourceState{
				"location": "eastus",
				"properties": map[string]interface{}{
					"hardwareProfile": map[string]interface{}{"vmSize": "Standard_D2s_v5"},
					"storageProfile": map[string]interface{}{
						"osDisk": map[string]interface{}{"osType": "Windows"},
					},
				},
			},
			wantClauses: []string{"armSkuName eq 'Standard_D2s_v5'", "contains(productName, 'Windows')"},
		},
	}

	r, err := NewRegistry("", types.CurrencyUSD)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := r.Lookup(tt.resourceType)
			require.True(t, ok)

			raw, err := r.BuildURL(s, tt.state, "")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			filter := u.Query().Get("$filter")
			for _, clause := range tt.wantClauses {
				assert.Contains(t, filter, clause)
			}
		})
	}
}

func TestContainerRegistryIgnoresBeforeState(t *testing.T) {
	r, err := NewRegistry("", types.CurrencyUSD)
	require.NoError(t, err)

	s, ok := r.Lookup("Microsoft.ContainerRegistry/registries")
	require.True(t, ok)

	before := types.ResourceState{"location": "eastus", "sku": map[string]interface{}{"name": "Basic"}}
	q, err := r.Query(s, before, nil, "")
	assert.Error(t, err)
	assert.Nil(t, q)
}
