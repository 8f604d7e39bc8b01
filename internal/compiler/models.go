package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"speckit/internal/ir"
)

// CompileModel parses a CUE value into a ModelSpec. Uses the CUE SDK's Go
// API directly (not CLI subprocess).
//
// The CUE value should be the model struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: Order: { ... }`)
//	spec, err := CompileModel(v.LookupPath(cue.ParsePath("model.Order")))
func CompileModel(v cue.Value) (*ir.ModelSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ModelSpec{}

	// Model name comes from the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   "fields",
			Message: fmt.Sprintf("model %q must declare at least one field", spec.Name),
			Pos:     v.Pos(),
		}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		field, err := compileField(spec.Name, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Fields = append(spec.Fields, field)
	}
	if len(spec.Fields) == 0 {
		return nil, &CompileError{
			Field:   "fields",
			Message: fmt.Sprintf("model %q must declare at least one field", spec.Name),
			Pos:     fieldsVal.Pos(),
		}
	}

	variantsVal := v.LookupPath(cue.ParsePath("variants"))
	if variantsVal.Exists() {
		vIter, err := variantsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for vIter.Next() {
			variant, err := compileVariant(vIter.Label(), vIter.Value())
			if err != nil {
				return nil, err
			}
			spec.Variants = append(spec.Variants, variant)
		}
	}

	return spec, nil
}

// compileField parses a single field. Supports the shorthand form
// (name: "int") and the full form (name: {type: "int", readonly: true}).
func compileField(model, name string, v cue.Value) (ir.FieldSpec, error) {
	field := ir.FieldSpec{Name: name}

	// Shorthand: the field value is just the type string.
	if str, err := v.String(); err == nil {
		typ, ok := ir.ParseType(str)
		if !ok {
			return field, unknownTypeError(model, name, str, v)
		}
		field.Type = typ
		return field, nil
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return field, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("model %q field %q is missing a type", model, name),
			Pos:     v.Pos(),
		}
	}
	typeStr, err := typeVal.String()
	if err != nil {
		return field, formatCUEError(err)
	}
	typ, ok := ir.ParseType(typeStr)
	if !ok {
		return field, unknownTypeError(model, name, typeStr, typeVal)
	}
	field.Type = typ

	if ro := v.LookupPath(cue.ParsePath("readonly")); ro.Exists() {
		field.Readonly, err = ro.Bool()
		if err != nil {
			return field, formatCUEError(err)
		}
	}
	if opt := v.LookupPath(cue.ParsePath("optional")); opt.Exists() {
		field.Optional, err = opt.Bool()
		if err != nil {
			return field, formatCUEError(err)
		}
	}
	if def := v.LookupPath(cue.ParsePath("default")); def.Exists() {
		field.Default, err = compileLiteral(def)
		if err != nil {
			return field, err
		}
	}

	return field, nil
}

func compileVariant(name string, v cue.Value) (ir.VariantSpec, error) {
	variant := ir.VariantSpec{Name: name}

	for _, set := range []struct {
		key  string
		dest *[]string
	}{
		{"exclude", &variant.Exclude},
		{"optional", &variant.Optional},
		{"include", &variant.Include},
	} {
		val := v.LookupPath(cue.ParsePath(set.key))
		if !val.Exists() {
			continue
		}
		iter, err := val.List()
		if err != nil {
			return variant, formatCUEError(err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return variant, formatCUEError(err)
			}
			*set.dest = append(*set.dest, name)
		}
	}

	return variant, nil
}

// compileLiteral decodes a default literal. Only scalar literals are
// representable; anything else is rejected here rather than during emission.
func compileLiteral(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	default:
		return nil, &CompileError{
			Field:   "default",
			Message: fmt.Sprintf("default must be a scalar literal, got %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

func unknownTypeError(model, field, typeStr string, v cue.Value) *CompileError {
	return &CompileError{
		Field:   "type",
		Message: fmt.Sprintf("model %q field %q: unknown type %q", model, field, typeStr),
		Pos:     v.Pos(),
	}
}
