package storage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

func TestCatalogSku(t *testing.T) {
	tests := []struct {
		sku        string
		accessTier string
		want       string
		wantErr    bool
	}{
		{"Standard_LRS", "", "Hot LRS", false},
		{"Standard_RAGRS", "Cool", "Cool RA-GRS", false},
		{"standard_gzrs", "cold", "Cold GZRS", false},
		{"Premium_ZRS", "Hot", "Premium ZRS", false},
		{"Standard", "", "", true},
		{"Standard_XYZ", "", "", true},
		{"Ultra_LRS", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.sku, func(t *testing.T) {
			got, err := CatalogSku(tt.sku, tt.accessTier)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.TypeNotSupported))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccountFilterUsesAccessTier(t *testing.T) {
	state := types.ResourceState{
		"sku":        map[string]interface{}{"name": "Standard_GRS"},
		"properties": map[string]interface{}{"accessTier": "Cool"},
	}

	f, err := NewAccountStrategy().Filter(state, "eastus")
	require.NoError(t, err)
	assert.Equal(t,
		"serviceId eq 'DZH317F1HKN0' and armRegionName eq 'eastus' and skuName eq 'Cool GRS' and contains(meterName, 'Data Stored') and priceType eq 'Consumption'",
		f.String())
}

func TestAccountSelectIgnoresVolumeTiers(t *testing.T) {
	records := []types.PriceRecord{
		{UnitPrice: decimal.RequireFromString("0.0184"), IsPrimaryMeterRegion: true},
		{UnitPrice: decimal.RequireFromString("0.0177"), TierMinimumUnits: decimal.NewFromInt(51200), IsPrimaryMeterRegion: true},
	}

	got, ok := NewAccountStrategy().Select(records)
	require.True(t, ok)
	assert.Equal(t, "0.0184", got.String())
}
