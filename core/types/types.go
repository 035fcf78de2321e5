// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and
// their validation.
package types

import (
	"fmt"
	"strings"

	"arm-cost/internal/errors"
)

// ScopeKind is the deployment scope a preview is requested for
type ScopeKind string

const (
	ScopeResourceGroup   ScopeKind = "ResourceGroup"
	ScopeSubscription    ScopeKind = "Subscription"
	ScopeManagementGroup ScopeKind = "ManagementGroup"
	ScopeTenant          ScopeKind = "Tenant"
)

// String returns the string representation of the scope
func (s ScopeKind) String() string {
	return string(s)
}

// DeploymentMode is the ARM deployment mode
type DeploymentMode string

const (
	ModeIncremental DeploymentMode = "Incremental"
	ModeComplete    DeploymentMode = "Complete"
)

// ParseDeploymentMode accepts a mode name in any letter case
func ParseDeploymentMode(s string) (DeploymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "incremental":
		return ModeIncremental, nil
	case "complete":
		return ModeComplete, nil
	default:
		return "", errors.Newf(errors.TypeInput, "unknown deployment mode %q (want Incremental or Complete)", s)
	}
}

// DeploymentRequest is everything needed to ask the control plane for a
// preview. It is treated as a value: nothing mutates it after construction.
type DeploymentRequest struct {
	// ScopeID is the subscription ID, management group ID, or empty for tenant scope
	ScopeID string `json:"scopeId"`

	// ResourceGroup is set only for resource-group scope
	ResourceGroup string `json:"resourceGroup,omitempty"`

	// Template is the whitespace-normalized template body
	Template string `json:"template"`

	// Parameters is the normalized parameters body ("{}" when none were given)
	Parameters string `json:"parameters"`

	Mode  DeploymentMode `json:"mode"`
	Scope ScopeKind      `json:"scope"`

	// Location is required for every scope except resource group
	Location string `json:"location,omitempty"`
}

// Validate checks the scope-dependent required fields
func (r DeploymentRequest) Validate() error {
	if r.Template == "" {
		return errors.Input("template body is empty")
	}

	switch r.Scope {
	case ScopeResourceGroup:
		if r.ScopeID == "" {
			return errors.Input("subscription ID is required for resource group scope")
		}
		if r.ResourceGroup == "" {
			return errors.Input("resource group is required for resource group scope")
		}
	case ScopeSubscription, ScopeManagementGroup:
		if r.ScopeID == "" {
			return errors.Newf(errors.TypeInput, "scope ID is required for %s scope", r.Scope)
		}
		if r.Location == "" {
			return errors.Newf(errors.TypeInput, "location is required for %s scope", r.Scope)
		}
	case ScopeTenant:
		if r.Location == "" {
			return errors.Input("location is required for tenant scope")
		}
	default:
		return errors.Newf(errors.TypeInput, "unknown scope %q", r.Scope)
	}

	switch r.Mode {
	case ModeIncremental, ModeComplete:
	default:
		return errors.Newf(errors.TypeInput, "unknown deployment mode %q", r.Mode)
	}

	return nil
}

// String identifies the request scope for logs
func (r DeploymentRequest) String() string {
	switch r.Scope {
	case ScopeResourceGroup:
		return fmt.Sprintf("%s/%s", r.ScopeID, r.ResourceGroup)
	case ScopeTenant:
		return "tenant"
	default:
		return r.ScopeID
	}
}
