package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speckit/internal/ir"
)

func orderModel() ir.ModelSpec {
	return ir.ModelSpec{
		Name: "Order",
		Fields: []ir.FieldSpec{
			{Name: "id", Type: ir.TypeRef{Name: ir.TypeInt}, Readonly: true},
			{Name: "total", Type: ir.TypeRef{Name: ir.TypeFloat}},
			{Name: "note", Type: ir.TypeRef{Name: ir.TypeString}, Optional: true},
		},
		Variants: []ir.VariantSpec{
			{Name: "Create", Exclude: []string{"id"}},
		},
	}
}

func variantByName(t *testing.T, resolved []ResolvedVariant, name string) ResolvedVariant {
	t.Helper()
	for _, rv := range resolved {
		if rv.Variant == name {
			return rv
		}
	}
	t.Fatalf("variant %q not resolved", name)
	return ResolvedVariant{}
}

func fieldNames(rv ResolvedVariant) []string {
	out := make([]string, len(rv.Fields))
	for i, f := range rv.Fields {
		out[i] = f.Name
	}
	return out
}

// Readonly fields are dropped from variants by default: excluding id from
// Create leaves total required and note optional.
func TestResolveReadonlyDroppedFromVariant(t *testing.T) {
	model := orderModel()
	resolved := Resolve(&model)
	require.Len(t, resolved, 2)

	create := variantByName(t, resolved, "Create")
	assert.Equal(t, "OrderCreate", create.TypeName())
	assert.Equal(t, []string{"note", "total"}, fieldNames(create))

	require.Len(t, create.Fields, 2)
	assert.Equal(t, Optional, create.Fields[0].Requiredness) // note
	assert.Equal(t, Required, create.Fields[1].Requiredness) // total
}

// include restores a readonly field the readonly rule would drop.
func TestResolveIncludeRestoresReadonly(t *testing.T) {
	model := orderModel()
	model.Variants = append(model.Variants, ir.VariantSpec{
		Name:    "AdminCreate",
		Include: []string{"id"},
	})

	resolved := Resolve(&model)
	admin := variantByName(t, resolved, "AdminCreate")
	assert.Equal(t, []string{"id", "note", "total"}, fieldNames(admin))
}

// exclude beats include: a field in both sets stays out.
func TestResolveExcludeBeatsInclude(t *testing.T) {
	model := orderModel()
	model.Variants = []ir.VariantSpec{{
		Name:    "Strange",
		Exclude: []string{"id"},
		Include: []string{"id"},
	}}

	resolved := Resolve(&model)
	strange := variantByName(t, resolved, "Strange")
	assert.Equal(t, []string{"note", "total"}, fieldNames(strange))
}

// The base projection keeps every field, readonly included.
func TestResolveBaseKeepsReadonly(t *testing.T) {
	model := orderModel()
	resolved := Resolve(&model)

	base := resolved[0]
	assert.Equal(t, "", base.Variant)
	assert.Equal(t, "Order", base.TypeName())
	assert.Equal(t, []string{"id", "note", "total"}, fieldNames(base))
}

func TestResolveVariantOptionalSet(t *testing.T) {
	model := orderModel()
	model.Variants = []ir.VariantSpec{{
		Name:     "Update",
		Exclude:  []string{"id"},
		Optional: []string{"total"},
	}}

	resolved := Resolve(&model)
	update := variantByName(t, resolved, "Update")
	require.Len(t, update.Fields, 2)
	assert.Equal(t, Optional, update.Fields[0].Requiredness) // note, model-level
	assert.Equal(t, Optional, update.Fields[1].Requiredness) // total, variant set
}

func TestResolveDefaultMakesRequiredWithDefault(t *testing.T) {
	model := ir.ModelSpec{
		Name: "Job",
		Fields: []ir.FieldSpec{
			{Name: "status", Type: ir.TypeRef{Name: ir.TypeString}, Default: "pending"},
			{Name: "retries", Type: ir.TypeRef{Name: ir.TypeInt}, Default: int64(3), Optional: true},
		},
	}

	resolved := Resolve(&model)
	base := resolved[0]
	require.Len(t, base.Fields, 2)

	// optional wins over the default
	assert.Equal(t, "retries", base.Fields[0].Name)
	assert.Equal(t, Optional, base.Fields[0].Requiredness)

	assert.Equal(t, "status", base.Fields[1].Name)
	assert.Equal(t, RequiredWithDefault, base.Fields[1].Requiredness)
	assert.Equal(t, "pending", base.Fields[1].Default)
}

// Resolution never mutates the input model and is independent of
// declaration order.
func TestResolvePureAndDeterministic(t *testing.T) {
	model := orderModel()
	model.Variants = append(model.Variants, ir.VariantSpec{Name: "AdminCreate", Include: []string{"id"}})

	first := Resolve(&model)

	// permute fields and variants
	permuted := orderModel()
	permuted.Fields = []ir.FieldSpec{permuted.Fields[2], permuted.Fields[0], permuted.Fields[1]}
	permuted.Variants = []ir.VariantSpec{
		{Name: "AdminCreate", Include: []string{"id"}},
		permuted.Variants[0],
	}
	second := Resolve(&permuted)

	assert.Equal(t, first, second)

	// input untouched
	assert.Equal(t, "id", model.Fields[0].Name)
	assert.Equal(t, "Create", model.Variants[0].Name)
}

func TestResolveVariantsSortedByName(t *testing.T) {
	model := orderModel()
	model.Variants = []ir.VariantSpec{
		{Name: "Update"},
		{Name: "AdminCreate"},
		{Name: "Create"},
	}

	resolved := Resolve(&model)
	require.Len(t, resolved, 4)
	assert.Equal(t, "", resolved[0].Variant)
	assert.Equal(t, "AdminCreate", resolved[1].Variant)
	assert.Equal(t, "Create", resolved[2].Variant)
	assert.Equal(t, "Update", resolved[3].Variant)
}
