// Package pricing provides the retail prices catalog adapter.
// This adapter executes one catalog query per call and normalizes the
// response into price records. It never retries; retries are the caller's
// decision.
package pricing

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arm-cost/core/types"
	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
)

// maxErrorBody bounds how much of an error response is kept
const maxErrorBody = 4 << 10

// Item is one entry of a catalog page
type Item struct {
	CurrencyCode         string          `json:"currencyCode"`
	TierMinimumUnits     decimal.Decimal `json:"tierMinimumUnits"`
	RetailPrice          decimal.Decimal `json:"retailPrice"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	ArmRegionName        string          `json:"armRegionName"`
	Location             string          `json:"location"`
	MeterID              string          `json:"meterId"`
	MeterName            string          `json:"meterName"`
	ProductID            string          `json:"productId"`
	SkuID                string          `json:"skuId"`
	ProductName          string          `json:"productName"`
	SkuName              string          `json:"skuName"`
	ServiceName          string          `json:"serviceName"`
	ServiceID            string          `json:"serviceId"`
	ServiceFamily        string          `json:"serviceFamily"`
	UnitOfMeasure        string          `json:"unitOfMeasure"`
	Type                 string          `json:"type"`
	IsPrimaryMeterRegion bool            `json:"isPrimaryMeterRegion"`
	ArmSkuName           string          `json:"armSkuName"`
}

// Page is one page of catalog results
type Page struct {
	BillingCurrency string `json:"BillingCurrency"`
	Items           []Item `json:"Items"`
	NextPageLink    string `json:"NextPageLink"`
	Count           int    `json:"Count"`
}

// Record converts a catalog item to a price record
func (i Item) Record() types.PriceRecord {
	return types.PriceRecord{
		UnitPrice:            i.RetailPrice,
		Currency:             types.Currency(i.CurrencyCode),
		MeterDescription:     i.MeterName,
		SkuName:              i.SkuName,
		ProductName:          i.ProductName,
		UnitOfMeasure:        i.UnitOfMeasure,
		TierMinimumUnits:     i.TierMinimumUnits,
		IsPrimaryMeterRegion: i.IsPrimaryMeterRegion,
		Type:                 i.Type,
	}
}

// RetailClient queries the retail prices API
type RetailClient struct {
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
}

// Option configures a RetailClient
type Option func(*RetailClient)

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *RetailClient) { c.userAgent = ua }
}

// NewRetailClient creates a client on top of an injected HTTP client.
// A nil httpClient gets a private client with a 30s timeout.
func NewRetailClient(httpClient *http.Client, logger *zap.Logger, opts ...Option) *RetailClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := &RetailClient{
		httpClient: httpClient,
		logger:     logging.OrNop(logger),
		userAgent:  "arm-cost",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs a single GET against catalogURL. An empty result is not an
// error: it returns an empty slice.
func (c *RetailClient) Fetch(ctx context.Context, catalogURL string) ([]types.PriceRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "invalid catalog URL", err).WithContext("url", catalogURL)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Network("retail prices request failed", err).WithContext("url", catalogURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.Newf(errors.TypeNetwork, "retail prices API returned %d", resp.StatusCode).
			WithContext("status", resp.StatusCode).
			WithContext("body", string(body)).
			WithContext("url", catalogURL)
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errors.Parsing("failed to decode retail prices response", err).WithContext("url", catalogURL)
	}

	c.logger.Debug("retail prices fetched",
		zap.Int("items", len(page.Items)),
		zap.Bool("has_next_page", page.NextPageLink != ""),
		zap.Duration("elapsed", time.Since(start)),
	)

	records := make([]types.PriceRecord, 0, len(page.Items))
	for _, item := range page.Items {
		records = append(records, item.Record())
	}
	return records, nil
}
