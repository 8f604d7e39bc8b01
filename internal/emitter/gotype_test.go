package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speckit/internal/ir"
)

func TestGoType(t *testing.T) {
	cases := map[string]string{
		"string":         "string",
		"int":            "int64",
		"bool":           "bool",
		"float":          "float64",
		"uuid":           "uuid.UUID",
		"datetime":       "time.Time",
		"list[string]":   "[]string",
		"list[list[int]]": "[][]int64",
	}
	for spec, want := range cases {
		typ, ok := ir.ParseType(spec)
		require.True(t, ok, spec)
		assert.Equal(t, want, goType(typ), spec)
	}
}

func TestAddTypeImports(t *testing.T) {
	imports := make(map[string]bool)

	typ, _ := ir.ParseType("list[uuid]")
	addTypeImports(typ, imports)
	typ, _ = ir.ParseType("datetime")
	addTypeImports(typ, imports)
	typ, _ = ir.ParseType("string")
	addTypeImports(typ, imports)

	assert.True(t, imports["github.com/google/uuid"])
	assert.True(t, imports["time"])
	assert.Len(t, imports, 2)
}

func TestExportName(t *testing.T) {
	cases := map[string]string{
		"order":       "Order",
		"order_id":    "OrderID",
		"id":          "ID",
		"created_at":  "CreatedAt",
		"api_url":     "APIURL",
		"http_status": "HTTPStatus",
	}
	for in, want := range cases {
		assert.Equal(t, want, exportName(in), in)
	}
}

func TestParamName(t *testing.T) {
	assert.Equal(t, "orderID", paramName("order_id"))
	assert.Equal(t, "limit", paramName("limit"))
	// collisions with stub-local names get a suffix
	assert.Equal(t, "inParam", paramName("in"))
	assert.Equal(t, "outParam", paramName("out"))
}

func TestFormatLiteral(t *testing.T) {
	assert.Equal(t, `"pending"`, formatLiteral("pending"))
	assert.Equal(t, "true", formatLiteral(true))
	assert.Equal(t, "42", formatLiteral(int64(42)))
	assert.Equal(t, "1.5", formatLiteral(1.5))
}

func TestZeroCheck(t *testing.T) {
	str, _ := ir.ParseType("string")
	num, _ := ir.ParseType("int")
	b, _ := ir.ParseType("bool")

	assert.Equal(t, `m.Status == ""`, zeroCheck("m.Status", str))
	assert.Equal(t, "m.Retries == 0", zeroCheck("m.Retries", num))
	assert.Equal(t, "!m.Active", zeroCheck("m.Active", b))
}
