// Package types - Per-item diagnostics
package types

// DiagnosticReason classifies why a change was not priced
type DiagnosticReason string

const (
	ReasonNilChange         DiagnosticReason = "nil_change"
	ReasonMissingID         DiagnosticReason = "missing_resource_id"
	ReasonMissingChangeType DiagnosticReason = "missing_change_type"
	ReasonMalformedID       DiagnosticReason = "malformed_resource_id"
	ReasonIgnored           DiagnosticReason = "ignored"
	ReasonUnsupportedType   DiagnosticReason = "unsupported_type"
	ReasonMissingState      DiagnosticReason = "missing_state"
	ReasonMissingField      DiagnosticReason = "missing_field"
	ReasonNoPrice           DiagnosticReason = "no_price"
	ReasonPricingFailed     DiagnosticReason = "pricing_failed"
)

// Diagnostic records a change that was skipped. Diagnostics never abort a run.
type Diagnostic struct {
	Index        int              `json:"index" yaml:"index"`
	ResourceID   string           `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`
	ResourceType string           `json:"resourceType,omitempty" yaml:"resourceType,omitempty"`
	Reason       DiagnosticReason `json:"reason" yaml:"reason"`
	Message      string           `json:"message" yaml:"message"`
}
