// Package hcl provides Terraform HCL parsing.
// Resources of a root module are read with literal attribute values only;
// anything that needs a plan to be known is left out.
package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
)

// Resource is a managed resource block
type Resource struct {
	Type string
	Name string
	File string
	Line int

	// Attributes holds every top-level attribute, known or not
	Attributes map[string]Value

	// Blocks holds the attributes of nested blocks, by block type
	Blocks map[string][]map[string]Value
}

// Address returns the Terraform address
func (r Resource) Address() string {
	return r.Type + "." + r.Name
}

// Attr returns a top-level attribute
func (r Resource) Attr(name string) Value {
	return r.Attributes[name]
}

// Block returns the first nested block of a type
func (r Resource) Block(name string) map[string]Value {
	if blocks := r.Blocks[name]; len(blocks) > 0 {
		return blocks[0]
	}
	return nil
}

// Module is the result of scanning a root module
type Module struct {
	Resources []Resource
	Variables map[string]cty.Value
}

// Scanner reads Terraform configuration
type Scanner struct {
	parser *hclparse.Parser
	logger *zap.Logger
}

// NewScanner creates a new HCL scanner
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{
		parser: hclparse.NewParser(),
		logger: logging.OrNop(logger),
	}
}

// IsTerraform reports whether path is a .tf file or a directory holding one
func IsTerraform(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return strings.HasSuffix(path, ".tf")
	}
	files, _ := configFiles(path)
	return len(files) > 0
}

// Scan parses a .tf file, or every .tf file directly inside a directory.
// Variables are resolved from literal defaults, then terraform.tfvars and
// *.auto.tfvars next to the configuration.
func (s *Scanner) Scan(path string) (*Module, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "can't read terraform configuration %s", path)
	}

	dir := path
	files := []string{path}
	if info.IsDir() {
		files, err = configFiles(path)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "failed to list %s", path)
		}
		if len(files) == 0 {
			return nil, errors.Newf(errors.TypeInput, "no .tf files in %s", path)
		}
	} else {
		dir = filepath.Dir(path)
	}

	bodies := make([]*hclsyntax.Body, 0, len(files))
	for _, file := range files {
		body, err := s.parse(file)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	vars := s.variables(bodies)
	for name, v := range s.loadVariables(dir) {
		vars[name] = v
	}
	ctx := &hcl.EvalContext{Variables: map[string]cty.Value{"var": cty.ObjectVal(vars)}}

	module := &Module{Variables: vars}
	for i, body := range bodies {
		rel, _ := filepath.Rel(dir, files[i])
		for _, block := range body.Blocks {
			if block.Type != "resource" || len(block.Labels) < 2 {
				continue
			}
			module.Resources = append(module.Resources, s.resource(block, rel, ctx))
		}
	}

	s.logger.Debug("terraform configuration scanned",
		zap.String("path", path),
		zap.Int("files", len(files)),
		zap.Int("resources", len(module.Resources)),
		zap.Int("variables", len(vars)),
	)
	return module, nil
}

func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tf") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) parse(file string) (*hclsyntax.Body, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to read %s", file)
	}

	f, diags := s.parser.ParseHCL(src, file)
	if diags.HasErrors() {
		return nil, errors.Parsing(fmt.Sprintf("failed to parse %s", file), diags)
	}

	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.Newf(errors.TypeParsing, "%s is not native HCL syntax", file)
	}
	return body, nil
}

// variables collects literal defaults of variable blocks
func (s *Scanner) variables(bodies []*hclsyntax.Body) map[string]cty.Value {
	vars := make(map[string]cty.Value)
	for _, body := range bodies {
		for _, block := range body.Blocks {
			if block.Type != "variable" || len(block.Labels) < 1 {
				continue
			}
			name := block.Labels[0]
			vars[name] = cty.DynamicVal

			attr, ok := block.Body.Attributes["default"]
			if !ok {
				continue
			}
			if v, diags := attr.Expr.Value(nil); !diags.HasErrors() {
				vars[name] = v
			}
		}
	}
	return vars
}

func (s *Scanner) loadVariables(dir string) map[string]cty.Value {
	vars := make(map[string]cty.Value)

	files := []string{filepath.Join(dir, "terraform.tfvars")}
	auto, _ := filepath.Glob(filepath.Join(dir, "*.auto.tfvars"))
	sort.Strings(auto)
	files = append(files, auto...)

	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}

		f, diags := s.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			s.logger.Warn("ignoring unreadable variables file", zap.String("file", file), zap.Error(diags))
			continue
		}
		attrs, diags := f.Body.JustAttributes()
		if diags.HasErrors() {
			s.logger.Warn("ignoring variables file with blocks", zap.String("file", file), zap.Error(diags))
			continue
		}
		for name, attr := range attrs {
			if v, diags := attr.Expr.Value(nil); !diags.HasErrors() {
				vars[name] = v
			}
		}
	}
	return vars
}

func (s *Scanner) resource(block *hclsyntax.Block, file string, ctx *hcl.EvalContext) Resource {
	r := Resource{
		Type:       block.Labels[0],
		Name:       block.Labels[1],
		File:       file,
		Line:       block.DefRange().Start.Line,
		Attributes: attributes(block.Body, ctx),
		Blocks:     make(map[string][]map[string]Value),
	}
	for _, nested := range block.Body.Blocks {
		r.Blocks[nested.Type] = append(r.Blocks[nested.Type], attributes(nested.Body, ctx))
	}
	return r
}

func attributes(body *hclsyntax.Body, ctx *hcl.EvalContext) map[string]Value {
	out := make(map[string]Value, len(body.Attributes))
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			out[name] = Value{Kind: KindUnknown, Reason: "expression needs a plan to evaluate"}
			continue
		}
		out[name] = Convert(val)
	}
	return out
}
