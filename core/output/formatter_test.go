package output

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"arm-cost/core/cost"
	"arm-cost/core/engine"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		Status: types.StatusSucceeded,
		Report: &cost.Report{
			Total:    decimal.RequireFromString("12.5"),
			Currency: types.CurrencyUSD,
			Items: []cost.Item{
				{
					Index:        0,
					ResourceID:   "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/st1",
					Name:         "st1",
					ResourceType: "Microsoft.Storage/storageAccounts",
					ChangeType:   types.ChangeCreate,
					ResolvedFrom: types.StateAfter,
					Cost:         decimal.RequireFromString("12.5"),
					Currency:     types.CurrencyUSD,
				},
			},
			Diagnostics: []types.Diagnostic{
				{Index: 1, ResourceID: "/subscriptions/s/resourceGroups/rg/providers/Microsoft.KeyVault/vaults/kv", Reason: types.ReasonUnsupportedType, Message: "no pricing strategy"},
			},
		},
		Threshold: cost.NewThreshold(decimal.NewFromInt(10)),
		Outcome:   cost.OutcomeThresholdExceeded,
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Render(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "CREATE - st1 [Microsoft.Storage/storageAccounts]  12.5 USD")
	assert.Contains(t, out, "Skipped 1 change(s):")
	assert.Contains(t, out, "no pricing strategy (unsupported_type)")
	assert.Contains(t, out, "Total: 12.5 USD")
	assert.Contains(t, out, "Threshold: 10 (exceeded)")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get plain text")
}

func TestTextFormatterFailedPreview(t *testing.T) {
	result := &engine.Result{
		Status: types.StatusFailed,
		Error: &types.PreviewError{
			Code:    "InvalidTemplate",
			Message: "Deployment template validation failed",
			Details: []*types.PreviewError{{Code: "InvalidParameter", Message: "sku is required"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Render(&buf, result))
	assert.Contains(t, buf.String(), "What-if preview failed")
	assert.Contains(t, buf.String(), "  InvalidTemplate: Deployment template validation failed")
	assert.Contains(t, buf.String(), "    InvalidParameter: sku is required")
}

func TestTextFormatterNoChanges(t *testing.T) {
	result := &engine.Result{
		Status: types.StatusSucceeded,
		Report: &cost.Report{Total: decimal.Zero, Currency: types.CurrencyUSD},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Render(&buf, result))
	assert.Contains(t, buf.String(), "No changes detected.")
	assert.Contains(t, buf.String(), "Total: 0 USD")
	assert.NotContains(t, buf.String(), "Threshold")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Render(&buf, sampleResult()))

	var doc struct {
		Status    string `json:"status"`
		Threshold string `json:"threshold"`
		Outcome   string `json:"outcome"`
		Report    struct {
			Total string `json:"total"`
			Items []struct {
				Name string `json:"name"`
				Cost string `json:"cost"`
			} `json:"items"`
			Diagnostics []types.Diagnostic `json:"diagnostics"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "Succeeded", doc.Status)
	assert.Equal(t, "10", doc.Threshold)
	assert.Equal(t, "threshold_exceeded", doc.Outcome)
	assert.Equal(t, "12.5", doc.Report.Total)
	require.Len(t, doc.Report.Items, 1)
	assert.Equal(t, "st1", doc.Report.Items[0].Name)
	require.Len(t, doc.Report.Diagnostics, 1)
	assert.Equal(t, types.ReasonUnsupportedType, doc.Report.Diagnostics[0].Reason)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Render(&buf, sampleResult()))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "Succeeded", doc["status"])
	assert.Equal(t, "threshold_exceeded", doc["outcome"])
	report, ok := doc["report"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "12.5", report["total"])
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	f, err := r.Get("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f.Format())

	_, err = r.Get("html")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	assert.Error(t, r.Register(NewTextFormatter()))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "yaml", sampleResult()))
	assert.Contains(t, buf.String(), "outcome: threshold_exceeded")
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter().Render(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "| Create | st1 | `Microsoft.Storage/storageAccounts` | 12.5 USD |")
	assert.Contains(t, out, "**Total:** 12.5 USD")
	assert.Contains(t, out, "Threshold 10: **exceeded**")
	assert.Contains(t, out, "1 change(s) not priced")
}
