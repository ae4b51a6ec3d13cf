package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/addongraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// HCLReader reads manifests written as a single addon block:
//
//	addon "physics" {
//	  version = "1.4.0"
//	  dependencies = {
//	    core = "^1.0.0"
//	  }
//	}
type HCLReader struct{}

// hclFile is used to decode the top level of a manifest file.
type hclFile struct {
	Addons []*hclAddon `hcl:"addon,block"`
	Remain hcl.Body    `hcl:",remain"`
}

type hclAddon struct {
	Name         string         `hcl:"name,label"`
	Version      *string        `hcl:"version,optional"`
	Description  *string        `hcl:"description,optional"`
	Dependencies hcl.Expression `hcl:"dependencies,optional"`
}

// Read parses the HCL file at location.
func (HCLReader) Read(ctx context.Context, location string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Reading HCL manifest.", "location", location)

	// hclparse.Parser caches files and is not safe for concurrent use, so
	// every read gets its own.
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(location)
	if diags.HasErrors() {
		return nil, &Error{Location: location, Err: fmt.Errorf("failed to parse HCL: %w", diags)}
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, &Error{Location: location, Err: fmt.Errorf("failed to decode HCL: %w", diags)}
	}
	switch len(root.Addons) {
	case 1:
	case 0:
		return nil, &Error{Location: location, Err: errors.New(`expected one "addon" block, found none`)}
	default:
		return nil, &Error{Location: location, Err: fmt.Errorf(`expected one "addon" block, found %d`, len(root.Addons))}
	}

	block := root.Addons[0]
	m := &Manifest{Name: block.Name, Location: location}
	if block.Version != nil {
		m.Version = *block.Version
	}
	deps, err := decodeDependencies(block.Dependencies)
	if err != nil {
		return nil, &Error{Location: location, Err: err}
	}
	m.Dependencies = deps

	if err := m.Validate(); err != nil {
		return nil, &Error{Location: location, Err: err}
	}
	logger.Debug("HCL manifest read.", "addon", m.Name, "dependencies", len(m.Dependencies))
	return m, nil
}

// decodeDependencies evaluates the dependencies attribute, which must be an
// object or map whose values are all strings. A missing or null attribute
// means no dependencies.
func decodeDependencies(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate dependencies: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, errors.New("dependencies must be known at parse time")
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("dependencies must be a map of strings, got %s", val.Type().FriendlyName())
	}

	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("dependencies must be a map of strings: %w", err)
	}
	out := make(map[string]string, converted.LengthInt())
	for it := converted.ElementIterator(); it.Next(); {
		k, v := it.Element()
		if v.IsNull() {
			return nil, fmt.Errorf("dependency %q has a null constraint", k.AsString())
		}
		out[k.AsString()] = v.AsString()
	}
	return out, nil
}
