// Package model - Canonical resource identity
// Identity is parsed from the ARM resource ID of each change and is
// NORMALIZED for dispatch: the type key is lower-cased everywhere.
package model

import (
	"strings"

	"arm-cost/internal/errors"
)

// Well-known types for IDs that carry no providers segment
const (
	SubscriptionType  = "Microsoft.Resources/subscriptions"
	ResourceGroupType = "Microsoft.Resources/resourceGroups"
)

// ResourceIdentity is the parsed form of an ARM resource ID.
// Examples:
//
//	/subscriptions/s/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/st1
//	/subscriptions/s/providers/Microsoft.Resources/resourceGroups/rg
//	/providers/Microsoft.Management/managementGroups/mg/providers/Microsoft.Authorization/policyDefinitions/p
//	/subscriptions/s/resourceGroups/rg/providers/Microsoft.Web/sites/app/providers/Microsoft.Insights/diagnosticSettings/d
type ResourceIdentity struct {
	// ID is the original identifier, unmodified
	ID string

	// Name is the last name segment
	Name string

	// Namespace is the resource provider (e.g. "Microsoft.Storage")
	Namespace string

	// Types is the ordered type path below the namespace
	// (e.g. ["storageAccounts", "blobServices"])
	Types []string

	// ParentScope is everything before the last providers segment
	ParentScope string

	SubscriptionID  string
	ResourceGroup   string
	ManagementGroup string
}

// ResourceType returns "Namespace/type[/childType...]"
func (r ResourceIdentity) ResourceType() string {
	if len(r.Types) == 0 {
		return r.Namespace
	}
	return r.Namespace + "/" + strings.Join(r.Types, "/")
}

// Key returns the case-insensitive dispatch key
func (r ResourceIdentity) Key() string {
	return NormalizeType(r.ResourceType())
}

// IsExtension reports whether the resource is attached to another resource
// rather than to a plain scope
func (r ResourceIdentity) IsExtension() bool {
	return strings.Contains(strings.ToLower(r.ParentScope), "/providers/") &&
		!strings.HasPrefix(strings.ToLower(r.ParentScope), "/providers/microsoft.management/managementgroups/")
}

// String returns the original ID
func (r ResourceIdentity) String() string {
	return r.ID
}

// NormalizeType lower-cases a resource type for use as a lookup key
func NormalizeType(resourceType string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(resourceType), "/"))
}

// ParseResourceID parses a hierarchical ARM resource ID
func ParseResourceID(id string) (ResourceIdentity, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return ResourceIdentity{}, malformed(id, "empty resource ID")
	}
	if !strings.HasPrefix(raw, "/") {
		return ResourceIdentity{}, malformed(id, "resource ID must start with '/'")
	}

	segments := strings.Split(strings.TrimSuffix(raw[1:], "/"), "/")
	for _, s := range segments {
		if s == "" {
			return ResourceIdentity{}, malformed(id, "empty path segment")
		}
	}

	providers := -1
	for i := len(segments) - 1; i >= 0; i-- {
		if strings.EqualFold(segments[i], "providers") {
			providers = i
			break
		}
	}

	if providers < 0 {
		return parseScopeID(id, segments)
	}

	// namespace followed by type/name pairs
	rest := segments[providers+1:]
	if len(rest) < 3 || (len(rest)-1)%2 != 0 {
		return ResourceIdentity{}, malformed(id, "expected providers/{namespace}/{type}/{name}[/{type}/{name}...]")
	}

	ident := ResourceIdentity{
		ID:        id,
		Namespace: rest[0],
		Name:      rest[len(rest)-1],
	}
	for i := 1; i < len(rest); i += 2 {
		ident.Types = append(ident.Types, rest[i])
	}

	parent := segments[:providers]
	ident.ParentScope = "/" + strings.Join(parent, "/")
	if len(parent) > 0 {
		scope, err := ParseResourceID(ident.ParentScope)
		if err != nil {
			return ResourceIdentity{}, malformed(id, "invalid parent scope "+ident.ParentScope)
		}
		ident.SubscriptionID = scope.SubscriptionID
		ident.ResourceGroup = scope.ResourceGroup
		ident.ManagementGroup = scope.ManagementGroup
		if strings.EqualFold(scope.ResourceType(), "Microsoft.Management/managementGroups") {
			ident.ManagementGroup = scope.Name
		}
	}

	// a resource group addressed through its provider keeps its scope fields
	if strings.EqualFold(ident.ResourceType(), ResourceGroupType) {
		ident.ResourceGroup = ident.Name
	}

	return ident, nil
}

// parseScopeID handles /subscriptions/{s} and /subscriptions/{s}/resourceGroups/{rg}
func parseScopeID(id string, segments []string) (ResourceIdentity, error) {
	if len(segments) < 2 || !strings.EqualFold(segments[0], "subscriptions") {
		return ResourceIdentity{}, malformed(id, "missing providers segment")
	}

	switch len(segments) {
	case 2:
		return ResourceIdentity{
			ID:             id,
			Name:           segments[1],
			Namespace:      "Microsoft.Resources",
			Types:          []string{"subscriptions"},
			ParentScope:    "/",
			SubscriptionID: segments[1],
		}, nil
	case 4:
		if !strings.EqualFold(segments[2], "resourceGroups") {
			break
		}
		return ResourceIdentity{
			ID:             id,
			Name:           segments[3],
			Namespace:      "Microsoft.Resources",
			Types:          []string{"resourceGroups"},
			ParentScope:    "/subscriptions/" + segments[1],
			SubscriptionID: segments[1],
			ResourceGroup:  segments[3],
		}, nil
	}

	return ResourceIdentity{}, malformed(id, "missing providers segment")
}

func malformed(id, reason string) *errors.Error {
	return errors.Newf(errors.TypeMalformedIdentity, "malformed resource ID %q: %s", id, reason)
}
