package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"speckit/internal/ir"
)

// CompileDomain parses a CUE value into a DomainSpec. The value should be
// the domain struct itself; service is the owning service slug (taken from
// the document's location, never from the document body).
func CompileDomain(service string, v cue.Value) (*ir.DomainSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.DomainSpec{Service: service}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	if cfg := v.LookupPath(cue.ParsePath("config.rest")); cfg.Exists() {
		if prefix := cfg.LookupPath(cue.ParsePath("prefix")); prefix.Exists() {
			p, err := prefix.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			spec.Prefix = p
		}
		if tags := cfg.LookupPath(cue.ParsePath("tags")); tags.Exists() {
			iter, err := tags.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for iter.Next() {
				tag, err := iter.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				spec.Tags = append(spec.Tags, tag)
			}
		}
	}

	opsVal := v.LookupPath(cue.ParsePath("operations"))
	if !opsVal.Exists() {
		return nil, &CompileError{
			Field:   "operations",
			Message: fmt.Sprintf("domain %q must declare at least one operation", spec.Name),
			Pos:     v.Pos(),
		}
	}
	iter, err := opsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		op, err := compileOperation(spec.Name, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Operations = append(spec.Operations, op)
	}
	if len(spec.Operations) == 0 {
		return nil, &CompileError{
			Field:   "operations",
			Message: fmt.Sprintf("domain %q must declare at least one operation", spec.Name),
			Pos:     opsVal.Pos(),
		}
	}

	return spec, nil
}

func compileOperation(domain, name string, v cue.Value) (ir.OperationSpec, error) {
	op := ir.OperationSpec{Name: name}

	if in := v.LookupPath(cue.ParsePath("input")); in.Exists() {
		s, err := in.String()
		if err != nil {
			return op, formatCUEError(err)
		}
		op.Input = s
	}
	if out := v.LookupPath(cue.ParsePath("output")); out.Exists() {
		s, err := out.String()
		if err != nil {
			return op, formatCUEError(err)
		}
		op.Output = s
	}

	if params := v.LookupPath(cue.ParsePath("params")); params.Exists() {
		iter, err := params.List()
		if err != nil {
			return op, formatCUEError(err)
		}
		for iter.Next() {
			param, err := compileParam(domain, name, iter.Value())
			if err != nil {
				return op, err
			}
			op.Params = append(op.Params, param)
		}
	}

	if rest := v.LookupPath(cue.ParsePath("rest")); rest.Exists() {
		cfg, err := compileRest(rest)
		if err != nil {
			return op, err
		}
		op.Rest = cfg
	}
	if events := v.LookupPath(cue.ParsePath("events")); events.Exists() {
		cfg, err := compileEventsConfig(events)
		if err != nil {
			return op, err
		}
		op.Events = cfg
	}

	if op.Rest == nil && op.Events == nil {
		return op, &CompileError{
			Field:   "transport",
			Message: fmt.Sprintf("operation %q in domain %q must declare a rest or events transport", name, domain),
			Pos:     v.Pos(),
		}
	}

	return op, nil
}

func compileParam(domain, op string, v cue.Value) (ir.ParamSpec, error) {
	param := ir.ParamSpec{Source: ir.ParamSourcePath, Type: ir.TypeRef{Name: ir.TypeString}}

	// Shorthand: a bare string is a required path parameter of type string.
	if str, err := v.String(); err == nil {
		param.Name = str
		return param, nil
	}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return param, &CompileError{
			Field:   "params",
			Message: fmt.Sprintf("operation %q in domain %q has a parameter without a name", op, domain),
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return param, formatCUEError(err)
	}
	param.Name = name

	if typeVal := v.LookupPath(cue.ParsePath("type")); typeVal.Exists() {
		typeStr, err := typeVal.String()
		if err != nil {
			return param, formatCUEError(err)
		}
		typ, ok := ir.ParseType(typeStr)
		if !ok {
			return param, &CompileError{
				Field:   "type",
				Message: fmt.Sprintf("operation %q parameter %q: unknown type %q", op, name, typeStr),
				Pos:     typeVal.Pos(),
			}
		}
		param.Type = typ
	}
	if src := v.LookupPath(cue.ParsePath("source")); src.Exists() {
		s, err := src.String()
		if err != nil {
			return param, formatCUEError(err)
		}
		param.Source = s
	}
	if def := v.LookupPath(cue.ParsePath("default")); def.Exists() {
		param.Default, err = compileLiteral(def)
		if err != nil {
			return param, err
		}
	}

	return param, nil
}

func compileRest(v cue.Value) (*ir.RestConfig, error) {
	cfg := &ir.RestConfig{}

	methodVal := v.LookupPath(cue.ParsePath("method"))
	if !methodVal.Exists() {
		return nil, &CompileError{
			Field:   "rest",
			Message: "rest transport requires a method",
			Pos:     v.Pos(),
		}
	}
	method, err := methodVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cfg.Method = method

	if path := v.LookupPath(cue.ParsePath("path")); path.Exists() {
		cfg.Path, err = path.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}
	if status := v.LookupPath(cue.ParsePath("status")); status.Exists() {
		n, err := status.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		cfg.Status = int(n)
	}

	return cfg, nil
}

func compileEventsConfig(v cue.Value) (*ir.EventsConfig, error) {
	cfg := &ir.EventsConfig{}

	for _, ch := range []struct {
		key  string
		dest *string
	}{
		{"subscribe", &cfg.Subscribe},
		{"publish_on_success", &cfg.PublishOnSuccess},
		{"publish_on_error", &cfg.PublishOnError},
	} {
		val := v.LookupPath(cue.ParsePath(ch.key))
		if !val.Exists() {
			continue
		}
		s, err := val.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		*ch.dest = s
	}

	if cfg.Subscribe == "" && cfg.PublishOnSuccess == "" && cfg.PublishOnError == "" {
		return nil, &CompileError{
			Field:   "events",
			Message: "events transport must declare subscribe or publish_on_success",
			Pos:     v.Pos(),
		}
	}

	return cfg, nil
}
