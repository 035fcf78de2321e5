// Package fingerprint derives the cache key of a preview request.
// Two requests with the same fingerprint are guaranteed to ask the control
// plane the same question.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/goccy/go-json"

	"arm-cost/core/types"
)

// version is folded into the digest so a change of layout invalidates old keys
const version = "v2"

// Fingerprint is a hex-encoded SHA-256 digest
type Fingerprint string

// String returns the hex digest
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns the first 12 characters, for logs
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// Of computes the fingerprint of a deployment request.
// Fields are NUL-separated so that moving text between adjacent fields
// always changes the digest.
func Of(req types.DeploymentRequest) Fingerprint {
	fields := []string{
		version,
		string(req.Scope),
		strings.ToLower(req.ScopeID),
		strings.ToLower(req.ResourceGroup),
		Normalize(req.Template),
		Normalize(req.Parameters),
		string(req.Mode),
		strings.ToLower(req.Location),
	}

	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Normalize removes insignificant whitespace from a JSON body. Text that is
// not valid JSON is only trimmed.
func Normalize(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(trimmed)); err != nil {
		return trimmed
	}
	return buf.String()
}
