// Package types - What-if preview types
package types

import "strings"

// PreviewStatus is the status of a what-if operation
type PreviewStatus string

const (
	StatusSucceeded PreviewStatus = "Succeeded"
	StatusFailed    PreviewStatus = "Failed"
	StatusRunning   PreviewStatus = "Running"
	StatusAccepted  PreviewStatus = "Accepted"
	StatusCancelled PreviewStatus = "Cancelled"
)

// ChangeType is the kind of transition a resource goes through
type ChangeType string

const (
	ChangeCreate      ChangeType = "Create"
	ChangeDelete      ChangeType = "Delete"
	ChangeModify      ChangeType = "Modify"
	ChangeDeploy      ChangeType = "Deploy"
	ChangeIgnore      ChangeType = "Ignore"
	ChangeNoChange    ChangeType = "NoChange"
	ChangeUnsupported ChangeType = "Unsupported"
)

// PreviewResponse is the terminal payload of a what-if operation
type PreviewResponse struct {
	Status     PreviewStatus      `json:"status"`
	Properties *PreviewProperties `json:"properties,omitempty"`
	Error      *PreviewError      `json:"error,omitempty"`
}

// PreviewProperties holds the ordered change list
type PreviewProperties struct {
	Changes []*ResourceChange `json:"changes"`
}

// Changes returns the change list, or nil when the response carries none
func (r *PreviewResponse) Changes() []*ResourceChange {
	if r == nil || r.Properties == nil {
		return nil
	}
	return r.Properties.Changes
}

// HasChanges reports whether there is anything to price
func (r *PreviewResponse) HasChanges() bool {
	return len(r.Changes()) > 0
}

// IsFailed reports a preview that completed with status Failed
func (r *PreviewResponse) IsFailed() bool {
	return r != nil && strings.EqualFold(string(r.Status), string(StatusFailed))
}

// PreviewError is the structured error body returned by the control plane
type PreviewError struct {
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Target  string          `json:"target,omitempty"`
	Details []*PreviewError `json:"details,omitempty"`
}

// ResourceChange is one resource's transition in a preview
type ResourceChange struct {
	ResourceID string        `json:"resourceId"`
	ChangeType ChangeType    `json:"changeType"`
	Before     ResourceState `json:"before,omitempty"`
	After      ResourceState `json:"after,omitempty"`
}

// ResourceState is an opaque resource document (the ARM resource body)
type ResourceState map[string]interface{}

// Lookup walks nested objects along path
func (s ResourceState) Lookup(path ...string) (interface{}, bool) {
	if s == nil || len(path) == 0 {
		return nil, false
	}

	var current interface{} = map[string]interface{}(s)
	for _, key := range path {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// String returns the string at path, or "" when absent or not a string
func (s ResourceState) String(path ...string) string {
	v, ok := s.Lookup(path...)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// Location returns the resource location
func (s ResourceState) Location() string {
	return s.String("location")
}
