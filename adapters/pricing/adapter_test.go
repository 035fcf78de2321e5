package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arm-cost/internal/errors"
)

const storagePage = `{
  "BillingCurrency": "USD",
  "CustomerEntityId": "Default",
  "CustomerEntityType": "Retail",
  "Items": [
    {
      "currencyCode": "USD",
      "tierMinimumUnits": 0.0,
      "retailPrice": 0.0208,
      "unitPrice": 0.0208,
      "armRegionName": "eastus",
      "location": "US East",
      "meterName": "Hot LRS Data Stored",
      "productName": "General Block Blob v2",
      "skuName": "Hot LRS",
      "serviceName": "Storage",
      "serviceId": "DZH317F1HKN0",
      "unitOfMeasure": "1 GB/Month",
      "type": "Consumption",
      "isPrimaryMeterRegion": true
    },
    {
      "currencyCode": "USD",
      "tierMinimumUnits": 51200.0,
      "retailPrice": 0.02,
      "unitPrice": 0.02,
      "armRegionName": "eastus",
      "meterName": "Hot LRS Data Stored",
      "skuName": "Hot LRS",
      "unitOfMeasure": "1 GB/Month",
      "type": "Consumption",
      "isPrimaryMeterRegion": true
    }
  ],
  "NextPageLink": null,
  "Count": 2
}`

func TestFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("$filter")
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "arm-cost-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(storagePage))
	}))
	defer srv.Close()

	client := NewRetailClient(srv.Client(), nil, WithUserAgent("arm-cost-test"))
	records, err := client.Fetch(context.Background(), srv.URL+"?%24filter=serviceId+eq+%27DZH317F1HKN0%27")
	require.NoError(t, err)

	assert.Equal(t, "serviceId eq 'DZH317F1HKN0'", gotQuery)
	require.Len(t, records, 2)
	assert.Equal(t, "0.0208", records[0].UnitPrice.String())
	assert.Equal(t, "USD", records[0].Currency.String())
	assert.Equal(t, "Hot LRS Data Stored", records[0].MeterDescription)
	assert.True(t, records[0].TierMinimumUnits.IsZero())
	assert.Equal(t, "51200", records[1].TierMinimumUnits.String())
}

func TestFetchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Items":[],"NextPageLink":null,"Count":0}`))
	}))
	defer srv.Close()

	records, err := NewRetailClient(srv.Client(), nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType errors.Type
	}{
		{"bad request", http.StatusBadRequest, `{"Error":{"Code":"Invalid OData parameters"}}`, errors.TypeNetwork},
		{"server error", http.StatusInternalServerError, "boom", errors.TypeNetwork},
		{"malformed body", http.StatusOK, "{not json", errors.TypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewRetailClient(srv.Client(), nil).Fetch(context.Background(), srv.URL)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), err.Error())
			assert.Equal(t, 1, calls, "no internal retries")
		})
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewRetailClient(nil, nil).Fetch(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNetwork))
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRetailClient(nil, nil).Fetch(ctx, "http://127.0.0.1:1/prices")
	require.Error(t, err)
}
