package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arm-cost/core/types"
)

const storageID = "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/st1"

func TestNormalize(t *testing.T) {
	resp := &types.PreviewResponse{
		Status: types.StatusSucceeded,
		Properties: &types.PreviewProperties{
			Changes: []*types.ResourceChange{
				{ResourceID: storageID, ChangeType: types.ChangeCreate, After: types.ResourceState{"location": "eastus"}},
				nil,
				{ChangeType: types.ChangeCreate},
				{ResourceID: storageID},
				{ResourceID: "not-an-id", ChangeType: types.ChangeDelete},
				{ResourceID: "/subscriptions/s/resourceGroups/rg/providers/Microsoft.App/containerApps/ca", ChangeType: types.ChangeModify},
			},
		},
	}

	changes, diags := Normalize(resp, nil)

	require.Len(t, changes, 2)
	assert.Equal(t, 0, changes[0].Index)
	assert.Equal(t, "st1", changes[0].Identity.Name)
	assert.Equal(t, types.ChangeCreate, changes[0].Type())
	assert.Equal(t, "eastus", changes[0].After().Location())
	assert.Nil(t, changes[0].Before())
	assert.Equal(t, 5, changes[1].Index)
	assert.Equal(t, "microsoft.app/containerapps", changes[1].Identity.Key())

	reasons := make([]types.DiagnosticReason, 0, len(diags))
	for _, d := range diags {
		reasons = append(reasons, d.Reason)
	}
	assert.Equal(t, []types.DiagnosticReason{
		types.ReasonNilChange,
		types.ReasonMissingID,
		types.ReasonMissingChangeType,
		types.ReasonMalformedID,
	}, reasons)
	assert.Equal(t, 4, diags[3].Index)
}

func TestNormalizeEmpty(t *testing.T) {
	tests := []struct {
		name string
		resp *types.PreviewResponse
	}{
		{"nil response", nil},
		{"no properties", &types.PreviewResponse{Status: types.StatusSucceeded}},
		{"empty list", &types.PreviewResponse{Properties: &types.PreviewProperties{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes, diags := Normalize(tt.resp, nil)
			assert.Empty(t, changes)
			assert.Empty(t, diags)
		})
	}
}
