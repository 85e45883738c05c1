package endpoints

import (
	"context"
	"fmt"
	"sort"
)

// BodyParam is the argument that carries the request body.
const BodyParam = "body"

// Response is what an operation returns. Data is preferred when set;
// otherwise Raw is rendered.
type Response struct {
	Data any
	Raw  any
}

// InvokeFunc performs the remote call of an operation.
type InvokeFunc func(ctx context.Context, api API, params Params, body map[string]any) (Response, error)

// Definition declares one operation. Definitions are immutable after
// registration.
type Definition struct {
	Op              Operation
	Description     string
	Params          []ParamSpec
	UsesBody        bool
	BodyDescription string
	// ReadOnly marks operations that do not modify remote state.
	ReadOnly bool
	Invoke   InvokeFunc
}

// Name returns the dotted operation name.
func (d Definition) Name() string {
	return d.Op.String()
}

// ToolName returns the flat tool name.
func (d Definition) ToolName() string {
	return d.Op.ToolName()
}

// RequiredParams lists the parameters that must be present, in declaration
// order.
func (d Definition) RequiredParams() []string {
	var names []string
	for _, p := range d.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Registry is the table of operations keyed by tool name.
type Registry struct {
	defs   []Definition
	byTool map[string]int
}

// NewRegistry validates defs and indexes them by tool name.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{byTool: make(map[string]int, len(defs))}
	for _, d := range defs {
		if !d.Op.Valid() {
			return nil, fmt.Errorf("invalid operation %d", d.Op)
		}
		if d.Invoke == nil {
			return nil, fmt.Errorf("operation %s has no invoke function", d.Name())
		}
		name := d.ToolName()
		if _, dup := r.byTool[name]; dup {
			return nil, fmt.Errorf("operation %s registered twice", d.Name())
		}
		r.byTool[name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	sort.SliceStable(r.defs, func(i, j int) bool { return r.defs[i].Op < r.defs[j].Op })
	for i, d := range r.defs {
		r.byTool[d.ToolName()] = i
	}
	return r, nil
}

// Lookup resolves a tool name. Dotted operation names resolve too.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byTool[ToolName(name)]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Definitions returns all definitions ordered by operation.
func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.defs...)
}

// Filter returns a registry holding the definitions for which keep is true.
func (r *Registry) Filter(keep func(Definition) bool) *Registry {
	out := &Registry{byTool: make(map[string]int)}
	for _, d := range r.defs {
		if keep(d) {
			out.byTool[d.ToolName()] = len(out.defs)
			out.defs = append(out.defs, d)
		}
	}
	return out
}
