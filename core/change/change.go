// Package change turns a preview response into typed, identified changes.
// Entries that cannot be identified are reported as diagnostics and dropped.
package change

import (
	"go.uber.org/zap"

	"arm-cost/core/model"
	"arm-cost/core/types"
	"arm-cost/internal/logging"
)

// Change is a resource change with its parsed identity
type Change struct {
	// Index is the position in the preview's change list
	Index    int
	Raw      *types.ResourceChange
	Identity model.ResourceIdentity
}

// Type returns the change type
func (c Change) Type() types.ChangeType {
	return c.Raw.ChangeType
}

// Before returns the previous state, possibly nil
func (c Change) Before() types.ResourceState {
	return c.Raw.Before
}

// After returns the desired state, possibly nil
func (c Change) After() types.ResourceState {
	return c.Raw.After
}

// Normalize parses every change of resp. Output order follows input order.
func Normalize(resp *types.PreviewResponse, logger *zap.Logger) ([]Change, []types.Diagnostic) {
	logger = logging.OrNop(logger)

	raw := resp.Changes()
	changes := make([]Change, 0, len(raw))
	var diags []types.Diagnostic

	for i, rc := range raw {
		if rc == nil {
			diags = append(diags, types.Diagnostic{
				Index:   i,
				Reason:  types.ReasonNilChange,
				Message: "empty change entry",
			})
			continue
		}

		if rc.ResourceID == "" {
			logger.Warn("couldn't find resource ID", zap.Int("index", i))
			diags = append(diags, types.Diagnostic{
				Index:   i,
				Reason:  types.ReasonMissingID,
				Message: "change has no resource ID",
			})
			continue
		}

		if rc.ChangeType == "" {
			logger.Warn("couldn't find change type", zap.Int("index", i), logging.ResourceID(rc.ResourceID))
			diags = append(diags, types.Diagnostic{
				Index:      i,
				ResourceID: rc.ResourceID,
				Reason:     types.ReasonMissingChangeType,
				Message:    "change has no change type",
			})
			continue
		}

		ident, err := model.ParseResourceID(rc.ResourceID)
		if err != nil {
			logger.Warn("malformed resource ID", zap.Int("index", i), zap.Error(err))
			diags = append(diags, types.Diagnostic{
				Index:      i,
				ResourceID: rc.ResourceID,
				Reason:     types.ReasonMalformedID,
				Message:    err.Error(),
			})
			continue
		}

		changes = append(changes, Change{Index: i, Raw: rc, Identity: ident})
	}

	return changes, diags
}
