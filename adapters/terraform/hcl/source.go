package hcl

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"arm-cost/core/types"
	"arm-cost/internal/logging"
)

// placeholderSubscription is used when no subscription is given
const placeholderSubscription = "00000000-0000-0000-0000-000000000000"

// Source previews a Terraform configuration as if every azurerm resource
// were created. It needs no network access.
type Source struct {
	path    string
	scanner *Scanner
	logger  *zap.Logger
}

// NewSource creates a source for a .tf file or directory
func NewSource(path string, logger *zap.Logger) *Source {
	logger = logging.OrNop(logger)
	return &Source{
		path:    path,
		scanner: NewScanner(logger),
		logger:  logger,
	}
}

// Preview returns a Succeeded response with one Create change per azurerm
// resource. req supplies the subscription and resource group of the
// generated resource IDs.
func (s *Source) Preview(ctx context.Context, req types.DeploymentRequest) (*types.PreviewResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	module, err := s.scanner.Scan(s.path)
	if err != nil {
		return nil, err
	}

	changes := make([]*types.ResourceChange, 0, len(module.Resources))
	for _, r := range module.Resources {
		if !strings.HasPrefix(r.Type, "azurerm_") {
			s.logger.Debug("skipping non-azurerm resource", zap.String("address", r.Address()))
			continue
		}

		changes = append(changes, &types.ResourceChange{
			ResourceID: s.resourceID(r, req),
			ChangeType: types.ChangeCreate,
			After:      State(r),
		})
	}

	s.logger.Info("terraform configuration converted",
		zap.String("path", s.path),
		zap.Int("changes", len(changes)),
	)
	return &types.PreviewResponse{
		Status:     types.StatusSucceeded,
		Properties: &types.PreviewProperties{Changes: changes},
	}, nil
}

// resourceID synthesizes an ARM ID. Unmapped types are placed under a
// "Terraform" namespace so they surface as unsupported.
func (s *Source) resourceID(r Resource, req types.DeploymentRequest) string {
	sub := placeholderSubscription
	if req.Scope == types.ScopeResourceGroup || req.Scope == types.ScopeSubscription {
		if req.ScopeID != "" {
			sub = req.ScopeID
		}
	}

	rg := req.ResourceGroup
	if v := r.Attr("resource_group_name"); v.Known() && v.AsString() != "" {
		rg = v.AsString()
	}
	if rg == "" {
		rg = "terraform"
	}

	name := r.Name
	if v := r.Attr("name"); v.Known() && v.AsString() != "" {
		name = v.AsString()
	}

	armType, ok := ARMType(r.Type)
	if !ok {
		armType = "Terraform/" + r.Type
	}

	return "/subscriptions/" + sub + "/resourceGroups/" + rg + "/providers/" + armType + "/" + name
}
