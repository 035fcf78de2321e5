package clouds

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"arm-cost/core/types"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{"empty", NewFilter(), ""},
		{"eq", NewFilter().Eq("skuName", "Hot LRS"), "skuName eq 'Hot LRS'"},
		{"escape quote", NewFilter().Eq("productName", "O'Brien"), "productName eq 'O''Brien'"},
		{"any of one", NewFilter().AnyOf("skuId", "a"), "skuId eq 'a'"},
		{"any of many", NewFilter().AnyOf("skuId", "a", "b"), "(skuId eq 'a' or skuId eq 'b')"},
		{"any of none", NewFilter().AnyOf("skuId"), ""},
		{"contains", NewFilter().Contains("meterName", "Data Stored"), "contains(meterName, 'Data Stored')"},
		{
			"service",
			ServiceFilter("DZH317F1HKN0", "eastus").Consumption(),
			"serviceId eq 'DZH317F1HKN0' and armRegionName eq 'eastus' and priceType eq 'Consumption'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.String())
		})
	}
}

func TestNormalizeRegion(t *testing.T) {
	assert.Equal(t, "eastus", NormalizeRegion("East US"))
	assert.Equal(t, "westeurope", NormalizeRegion(" westeurope "))
}

func record(price string, tierMin string, primary bool) types.PriceRecord {
	return types.PriceRecord{
		UnitPrice:            decimal.RequireFromString(price),
		TierMinimumUnits:     decimal.RequireFromString(tierMin),
		IsPrimaryMeterRegion: primary,
	}
}

func TestSelection(t *testing.T) {
	records := []types.PriceRecord{
		record("0.0208", "0", true),
		record("0.0200", "51200", true),
		record("0.0050", "0", false),
	}

	tests := []struct {
		name    string
		sel     func([]types.PriceRecord) (decimal.Decimal, bool)
		records []types.PriceRecord
		want    string
		wantOK  bool
	}{
		{"sum", Sum, records, "0.0458", true},
		{"cheapest", Cheapest, records, "0.005", true},
		{"base tier", BaseTier, records, "0.0258", true},
		{"sum empty", Sum, nil, "0", false},
		{"cheapest empty", Cheapest, nil, "0", false},
		{"base tier without first tier", BaseTier, []types.PriceRecord{record("1", "100", true)}, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.sel(tt.records)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestPrimaryRegion(t *testing.T) {
	records := []types.PriceRecord{
		record("1", "0", true),
		record("2", "0", false),
	}
	assert.Len(t, PrimaryRegion(records), 1)

	secondary := []types.PriceRecord{record("2", "0", false)}
	assert.Equal(t, secondary, PrimaryRegion(secondary))
}
