package emitter

import (
	"strconv"
	"strings"

	"speckit/internal/ir"
)

// goType maps a spec type to the emitted Go type.
func goType(t ir.TypeRef) string {
	switch t.Name {
	case ir.TypeString:
		return "string"
	case ir.TypeInt:
		return "int64"
	case ir.TypeBool:
		return "bool"
	case ir.TypeFloat:
		return "float64"
	case ir.TypeUUID:
		return "uuid.UUID"
	case ir.TypeDatetime:
		return "time.Time"
	case ir.TypeList:
		return "[]" + goType(*t.Elem)
	}
	return t.Name
}

// addTypeImports records the imports the emitted type needs.
func addTypeImports(t ir.TypeRef, imports map[string]bool) {
	switch t.Name {
	case ir.TypeUUID:
		imports["github.com/google/uuid"] = true
	case ir.TypeDatetime:
		imports["time"] = true
	case ir.TypeList:
		addTypeImports(*t.Elem, imports)
	}
}

// commonInitialisms are spelled fully upper-case in exported identifiers.
var commonInitialisms = map[string]bool{
	"id": true, "uuid": true, "url": true, "api": true, "http": true, "json": true,
}

// exportName converts a snake_case spec name to an exported Go identifier.
func exportName(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if commonInitialisms[part] {
			b.WriteString(strings.ToUpper(part))
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// paramName converts a snake_case spec name to an unexported Go identifier.
func paramName(s string) string {
	exported := exportName(s)
	if exported == "" {
		return s
	}
	lowered := strings.ToLower(exported[:1]) + exported[1:]
	switch lowered {
	// Avoid colliding with the receiver-side names the stubs use.
	case "ctx", "in", "out", "err":
		return lowered + "Param"
	}
	return lowered
}

// formatLiteral renders a default literal as Go source.
func formatLiteral(v any) string {
	switch lit := v.(type) {
	case string:
		return strconv.Quote(lit)
	case bool:
		return strconv.FormatBool(lit)
	case int64:
		return strconv.FormatInt(lit, 10)
	case float64:
		return strconv.FormatFloat(lit, 'g', -1, 64)
	}
	return "nil"
}

// zeroCheck renders the zero-value comparison used by default helpers.
func zeroCheck(expr string, t ir.TypeRef) string {
	switch t.Name {
	case ir.TypeString:
		return expr + ` == ""`
	case ir.TypeBool:
		return "!" + expr
	default:
		return expr + " == 0"
	}
}
