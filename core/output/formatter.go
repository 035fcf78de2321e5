// Package output provides output formatting.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"arm-cost/core/engine"
	"arm-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is the human-readable change list
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatYAML is machine-readable YAML
	FormatYAML Format = "yaml"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *engine.Result) error
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding the built-in formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	for _, f := range []Formatter{NewTextFormatter(), NewJSONFormatter(), NewYAMLFormatter(), NewMarkdownFormatter()} {
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeInput, "formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format name, in any letter case
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[Format(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q (want one of %s)", name, strings.Join(r.names(), ", "))
	}
	return f, nil
}

func (r *Registry) names() []string {
	out := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// Render writes result in the named format
func Render(w io.Writer, format string, result *engine.Result) error {
	f, err := NewRegistry().Get(format)
	if err != nil {
		return err
	}
	if err := f.Render(w, result); err != nil {
		return errors.Wrap(errors.TypeInternal, fmt.Sprintf("failed to render %s output", f.Format()), err)
	}
	return nil
}
