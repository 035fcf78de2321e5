package whatif

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"

	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

type requestBody struct {
	Location   string         `json:"location,omitempty"`
	Properties bodyProperties `json:"properties"`
}

type bodyProperties struct {
	Mode       types.DeploymentMode `json:"mode"`
	Template   json.RawMessage      `json:"template"`
	Parameters json.RawMessage      `json:"parameters"`
}

// RequestBody renders the whatIf POST body for req
func RequestBody(req types.DeploymentRequest) ([]byte, error) {
	template := strings.TrimSpace(req.Template)
	if !json.Valid([]byte(template)) {
		return nil, errors.New(errors.TypeParsing, "template is not valid JSON")
	}

	params, err := Parameters(req.Parameters)
	if err != nil {
		return nil, err
	}

	body := requestBody{
		Properties: bodyProperties{
			Mode:       req.Mode,
			Template:   json.RawMessage(template),
			Parameters: params,
		},
	}
	if req.Scope != types.ScopeResourceGroup {
		body.Location = req.Location
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Internal("failed to encode what-if request", err)
	}
	return data, nil
}

// Parameters returns the parameter values object. A full deployment
// parameters file ({"$schema", "contentVersion", "parameters"}) is unwrapped
// to its "parameters" member; an empty body becomes {}.
func Parameters(body string) (json.RawMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return json.RawMessage("{}"), nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, errors.Parsing("parameters are not a JSON object", err)
	}

	inner, hasParams := doc["parameters"]
	_, hasSchema := doc["$schema"]
	_, hasVersion := doc["contentVersion"]
	if hasParams && (hasSchema || hasVersion) {
		trimmed := bytes.TrimSpace(inner)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, errors.New(errors.TypeParsing, "parameters file has a non-object \"parameters\" member")
		}
		return json.RawMessage(trimmed), nil
	}

	return json.RawMessage(body), nil
}
