// Package resolver computes concrete per-variant field sets from validated
// model specs. Resolution is a pure function: input IR is never mutated,
// and the output is consumed only by the emitter.
package resolver

import (
	"sort"

	"speckit/internal/ir"
)

// Requiredness of a resolved field.
const (
	Required            = "required"
	Optional            = "optional"
	RequiredWithDefault = "required_with_default"
)

// ResolvedField is one field of a resolved projection, with its final
// required/optional status.
type ResolvedField struct {
	Name         string     `json:"name"`
	Type         ir.TypeRef `json:"type"`
	Requiredness string     `json:"requiredness"`
	Default      any        `json:"default,omitempty"`
}

// ResolvedVariant is the concrete field set for one (model, variant) pair.
// Variant is "" for the base projection. Fields are sorted lexicographically
// by name, the fixed emission order.
type ResolvedVariant struct {
	Model   string          `json:"model"`
	Variant string          `json:"variant,omitempty"`
	Fields  []ResolvedField `json:"fields"`
}

// TypeName returns the emitted type name ("Order", "OrderCreate").
func (r ResolvedVariant) TypeName() string {
	return r.Model + r.Variant
}

// Resolve computes the base projection and every variant projection of a
// model. The precedence law, highest to lowest:
//
//  1. exclude always removes the field, even if it also appears in include.
//  2. include restores a field that would otherwise be dropped by the
//     readonly rule (but not one dropped by exclude).
//  3. a readonly field is dropped from the variant unless restored by 2.
//  4. a surviving field is optional if the model-level optional flag is set
//     or its name is in the variant's optional set; otherwise it is
//     required, or required-with-default when it declares a default.
//
// The base projection keeps every field, readonly included.
func Resolve(model *ir.ModelSpec) []ResolvedVariant {
	out := make([]ResolvedVariant, 0, len(model.Variants)+1)
	out = append(out, resolveBase(model))

	variants := make([]ir.VariantSpec, len(model.Variants))
	copy(variants, model.Variants)
	sort.Slice(variants, func(i, j int) bool { return variants[i].Name < variants[j].Name })

	for i := range variants {
		out = append(out, resolveVariant(model, &variants[i]))
	}
	return out
}

func resolveBase(model *ir.ModelSpec) ResolvedVariant {
	rv := ResolvedVariant{Model: model.Name}
	for _, field := range model.Fields {
		rv.Fields = append(rv.Fields, resolveField(field, nil))
	}
	sortFields(rv.Fields)
	return rv
}

func resolveVariant(model *ir.ModelSpec, variant *ir.VariantSpec) ResolvedVariant {
	rv := ResolvedVariant{Model: model.Name, Variant: variant.Name}

	excluded := toSet(variant.Exclude)
	included := toSet(variant.Include)
	optional := toSet(variant.Optional)

	for _, field := range model.Fields {
		if excluded[field.Name] {
			continue
		}
		if field.Readonly && !included[field.Name] {
			continue
		}
		rv.Fields = append(rv.Fields, resolveField(field, optional))
	}
	sortFields(rv.Fields)
	return rv
}

func resolveField(field ir.FieldSpec, variantOptional map[string]bool) ResolvedField {
	rf := ResolvedField{
		Name:    field.Name,
		Type:    field.Type,
		Default: field.Default,
	}
	switch {
	case field.Optional || variantOptional[field.Name]:
		rf.Requiredness = Optional
	case field.Default != nil:
		rf.Requiredness = RequiredWithDefault
	default:
		rf.Requiredness = Required
	}
	return rf
}

func sortFields(fields []ResolvedField) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
