package emitter

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speckit/internal/ir"
)

func shopSet() *ir.SpecSet {
	return &ir.SpecSet{
		Module: "example.com/shop",
		Models: []ir.ModelSpec{{
			Name: "Order",
			Fields: []ir.FieldSpec{
				{Name: "id", Type: ir.TypeRef{Name: ir.TypeUUID}, Readonly: true},
				{Name: "total", Type: ir.TypeRef{Name: ir.TypeFloat}},
				{Name: "note", Type: ir.TypeRef{Name: ir.TypeString}, Optional: true},
			},
			Variants: []ir.VariantSpec{{Name: "Create", Exclude: []string{"id"}}},
		}},
		Domains: []ir.DomainSpec{{
			Service: "api",
			Name:    "orders",
			Prefix:  "/orders",
			Operations: []ir.OperationSpec{
				{
					Name:   "create_order",
					Input:  "OrderCreate",
					Output: "Order",
					Rest:   &ir.RestConfig{Method: "POST", Path: "/"},
				},
				{
					Name:   "get_order",
					Output: "Order",
					Params: []ir.ParamSpec{{Name: "order_id", Type: ir.TypeRef{Name: ir.TypeString}, Source: ir.ParamSourcePath}},
					Rest:   &ir.RestConfig{Method: "GET", Path: "/{order_id}"},
				},
			},
		}},
	}
}

func fileByPath(t *testing.T, files []File, path string) File {
	t.Helper()
	for _, f := range files {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("no rendered file at %s", path)
	return File{}
}

func TestRenderModelsGolden(t *testing.T) {
	set := shopSet()
	files, err := Render(set)
	require.NoError(t, err)

	models := fileByPath(t, files, ModelsPath)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "models_basic", models.Content)
}

func TestRenderFilePathsSorted(t *testing.T) {
	files, err := Render(shopSet())
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "services/api/gen/contracts.gen.go", files[0].Path)
	assert.Equal(t, ModelsPath, files[1].Path)
}

func TestRenderContracts(t *testing.T) {
	files, err := Render(shopSet())
	require.NoError(t, err)

	contracts := string(fileByPath(t, files, "services/api/gen/contracts.gen.go").Content)

	assert.Contains(t, contracts, Header)
	assert.Contains(t, contracts, "package gen")
	assert.Contains(t, contracts, `"context"`)
	assert.Contains(t, contracts, `"example.com/shop/shared/gen/models"`)
	assert.Contains(t, contracts, "type OrdersController interface {")
	assert.Contains(t, contracts, "// REST prefix: /orders")
	assert.Contains(t, contracts, "CreateOrder(ctx context.Context, in models.OrderCreate) (models.Order, error)")
	assert.Contains(t, contracts, "GetOrder(ctx context.Context, orderID string) (models.Order, error)")
	assert.Contains(t, contracts, "// CreateOrder handles POST / (status 201).")
	assert.Contains(t, contracts, "// GetOrder handles GET /{order_id} (status 200).")
}

func TestRenderListOutput(t *testing.T) {
	set := shopSet()
	set.Domains[0].Operations = append(set.Domains[0].Operations, ir.OperationSpec{
		Name:   "list_orders",
		Output: "list[Order]",
		Rest:   &ir.RestConfig{Method: "GET", Path: "/"},
	})

	files, err := Render(set)
	require.NoError(t, err)

	contracts := string(fileByPath(t, files, "services/api/gen/contracts.gen.go").Content)
	assert.Contains(t, contracts, "ListOrders(ctx context.Context) ([]models.Order, error)")
}

func TestRenderEventsAdapter(t *testing.T) {
	set := shopSet()
	set.Models = append(set.Models, ir.ModelSpec{
		Name:   "Invoice",
		Fields: []ir.FieldSpec{{Name: "id", Type: ir.TypeRef{Name: ir.TypeUUID}}},
	})
	set.Events = []ir.EventMessageSpec{
		{Channel: "order.created", Message: "Order", Publish: true, Subscribe: true},
		{Channel: "invoice.settled", Message: "Invoice", Publish: true},
		{Channel: "invoice.failed", Message: "Invoice", Publish: true},
	}
	set.Domains = append(set.Domains, ir.DomainSpec{
		Service: "billing",
		Name:    "billing",
		Operations: []ir.OperationSpec{{
			Name:   "settle_order",
			Input:  "Order",
			Output: "Invoice",
			Events: &ir.EventsConfig{
				Subscribe:        "order.created",
				PublishOnSuccess: "invoice.settled",
				PublishOnError:   "invoice.failed",
			},
		}},
	})

	files, err := Render(set)
	require.NoError(t, err)

	events := string(fileByPath(t, files, "services/billing/gen/events.gen.go").Content)

	assert.Contains(t, events, "type EventBus interface {")
	assert.Contains(t, events, "func RegisterBillingEvents(bus EventBus, ctrl BillingController) {")
	assert.Contains(t, events, `bus.Subscribe("order.created", func(ctx context.Context, payload []byte) error {`)
	assert.Contains(t, events, "var in models.Order")
	assert.Contains(t, events, "out, err := ctrl.SettleOrder(ctx, in)")
	assert.Contains(t, events, `_ = bus.Publish(ctx, "invoice.failed", err.Error())`)
	assert.Contains(t, events, `return bus.Publish(ctx, "invoice.settled", out)`)

	// the REST-only service gets no events file
	for _, f := range files {
		assert.NotEqual(t, "services/api/gen/events.gen.go", f.Path)
	}
}

// Permuting declaration order must not change a single emitted byte.
func TestRenderDeterministic(t *testing.T) {
	first, err := Render(shopSet())
	require.NoError(t, err)

	permuted := shopSet()
	model := &permuted.Models[0]
	model.Fields = []ir.FieldSpec{model.Fields[2], model.Fields[0], model.Fields[1]}
	ops := permuted.Domains[0].Operations
	ops[0], ops[1] = ops[1], ops[0]

	second, err := Render(permuted)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
		assert.Equal(t, string(first[i].Content), string(second[i].Content))
	}
}

func TestRenderDefaultsHelper(t *testing.T) {
	set := &ir.SpecSet{
		Models: []ir.ModelSpec{{
			Name: "Job",
			Fields: []ir.FieldSpec{
				{Name: "status", Type: ir.TypeRef{Name: ir.TypeString}, Default: "pending"},
				{Name: "retries", Type: ir.TypeRef{Name: ir.TypeInt}, Default: int64(3)},
			},
		}},
	}

	files, err := Render(set)
	require.NoError(t, err)

	models := string(fileByPath(t, files, ModelsPath).Content)
	assert.Contains(t, models, "func ApplyJobDefaults(m *Job) {")
	assert.Contains(t, models, `if m.Status == "" {`)
	assert.Contains(t, models, `m.Status = "pending"`)
	assert.Contains(t, models, "if m.Retries == 0 {")
	assert.Contains(t, models, "m.Retries = 3")
}

func TestRenderModuleFallback(t *testing.T) {
	set := shopSet()
	set.Module = ""

	files, err := Render(set)
	require.NoError(t, err)

	contracts := string(fileByPath(t, files, "services/api/gen/contracts.gen.go").Content)
	assert.Contains(t, contracts, `"app/shared/gen/models"`)
}
