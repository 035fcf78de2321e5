package output

import (
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"arm-cost/core/engine"
)

// JSONFormatter renders the result as indented JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render produces output for the given result
func (f *JSONFormatter) Render(w io.Writer, result *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// YAMLFormatter renders the result as YAML
type YAMLFormatter struct{}

// NewYAMLFormatter creates a YAML formatter
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format returns the format type
func (f *YAMLFormatter) Format() Format {
	return FormatYAML
}

// Render produces output for the given result
func (f *YAMLFormatter) Render(w io.Writer, result *engine.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}
