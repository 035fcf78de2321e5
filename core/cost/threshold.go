package cost

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"arm-cost/internal/errors"
)

// Outcome is the verdict of a run
type Outcome int

const (
	// OutcomeSuccess means no threshold was set or the total is within it
	OutcomeSuccess Outcome = iota

	// OutcomeThresholdExceeded means the total is above the threshold
	OutcomeThresholdExceeded
)

// String returns the string representation
func (o Outcome) String() string {
	if o == OutcomeThresholdExceeded {
		return "threshold_exceeded"
	}
	return "success"
}

// MarshalJSON renders the outcome name
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// MarshalYAML renders the outcome name
func (o Outcome) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

// Threshold is an optional cost ceiling. The zero value is disabled, so a
// threshold of 0 is distinguishable from no threshold.
type Threshold struct {
	limit   decimal.Decimal
	enabled bool
}

// NoThreshold returns a disabled threshold
func NoThreshold() Threshold {
	return Threshold{}
}

// NewThreshold returns an enabled threshold at limit
func NewThreshold(limit decimal.Decimal) Threshold {
	return Threshold{limit: limit, enabled: true}
}

// ParseThreshold parses a decimal limit; an empty string is disabled
func ParseThreshold(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoThreshold(), nil
	}
	limit, err := decimal.NewFromString(s)
	if err != nil {
		return Threshold{}, errors.Wrapf(errors.TypeInput, err, "invalid threshold %q", s)
	}
	if limit.IsNegative() {
		return Threshold{}, errors.Newf(errors.TypeInput, "threshold must not be negative, got %s", s)
	}
	return NewThreshold(limit), nil
}

// Enabled reports whether a limit is set
func (t Threshold) Enabled() bool {
	return t.enabled
}

// Limit returns the limit and whether it is set
func (t Threshold) Limit() (decimal.Decimal, bool) {
	return t.limit, t.enabled
}

// Evaluate compares total against the limit. A total equal to the limit
// is within it.
func (t Threshold) Evaluate(total decimal.Decimal) Outcome {
	if t.enabled && total.GreaterThan(t.limit) {
		return OutcomeThresholdExceeded
	}
	return OutcomeSuccess
}

// String returns the limit, or "none"
func (t Threshold) String() string {
	if !t.enabled {
		return "none"
	}
	return t.limit.String()
}

// MarshalJSON renders the limit, or null when disabled
func (t Threshold) MarshalJSON() ([]byte, error) {
	if !t.enabled {
		return []byte("null"), nil
	}
	return json.Marshal(t.limit)
}

// MarshalYAML renders the limit, or null when disabled
func (t Threshold) MarshalYAML() (interface{}, error) {
	if !t.enabled {
		return nil, nil
	}
	return t.limit.String(), nil
}
