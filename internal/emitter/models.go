package emitter

import (
	"fmt"
	"sort"
	"strings"

	"speckit/internal/resolver"
)

// renderModels emits the shared type definitions file: one struct per
// resolved (model, variant) pair plus default-applying helpers.
func renderModels(resolved []resolver.ResolvedVariant) []byte {
	imports := make(map[string]bool)
	for _, rv := range resolved {
		for _, f := range rv.Fields {
			addTypeImports(f.Type, imports)
		}
	}

	var b strings.Builder
	b.WriteString(Header + "\n\n")
	b.WriteString("package models\n")
	writeImports(&b, imports)

	for _, rv := range resolved {
		writeStruct(&b, rv)
	}
	for _, rv := range resolved {
		writeDefaultsHelper(&b, rv)
	}

	return []byte(b.String())
}

func writeImports(b *strings.Builder, imports map[string]bool) {
	if len(imports) == 0 {
		return
	}
	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var std, ext []string
	for _, p := range paths {
		if strings.Contains(p, ".") {
			ext = append(ext, p)
		} else {
			std = append(std, p)
		}
	}

	b.WriteString("\nimport (\n")
	for _, p := range std {
		fmt.Fprintf(b, "\t%q\n", p)
	}
	if len(std) > 0 && len(ext) > 0 {
		b.WriteString("\n")
	}
	for _, p := range ext {
		fmt.Fprintf(b, "\t%q\n", p)
	}
	b.WriteString(")\n")
}

func writeStruct(b *strings.Builder, rv resolver.ResolvedVariant) {
	name := rv.TypeName()
	b.WriteString("\n")
	if rv.Variant == "" {
		fmt.Fprintf(b, "// %s is the base projection of model %s.\n", name, rv.Model)
	} else {
		fmt.Fprintf(b, "// %s is the %s projection of model %s.\n", name, rv.Variant, rv.Model)
	}
	fmt.Fprintf(b, "type %s struct {\n", name)
	for _, f := range rv.Fields {
		goName := exportName(f.Name)
		typ := goType(f.Type)
		tag := f.Name
		if f.Requiredness == resolver.Optional {
			typ = "*" + typ
			tag += ",omitempty"
		}
		fmt.Fprintf(b, "\t%s %s `json:%q`\n", goName, typ, tag)
	}
	b.WriteString("}\n")
}

// writeDefaultsHelper emits Apply<Type>Defaults for projections that carry
// required-with-default fields. Zero-valued fields receive their declared
// default, mirroring how the spec documents treat omitted values.
func writeDefaultsHelper(b *strings.Builder, rv resolver.ResolvedVariant) {
	var defaulted []resolver.ResolvedField
	for _, f := range rv.Fields {
		if f.Requiredness == resolver.RequiredWithDefault {
			defaulted = append(defaulted, f)
		}
	}
	if len(defaulted) == 0 {
		return
	}

	name := rv.TypeName()
	b.WriteString("\n")
	fmt.Fprintf(b, "// Apply%sDefaults fills zero-valued fields that declare spec defaults.\n", name)
	fmt.Fprintf(b, "func Apply%sDefaults(m *%s) {\n", name, name)
	for _, f := range defaulted {
		expr := "m." + exportName(f.Name)
		fmt.Fprintf(b, "\tif %s {\n", zeroCheck(expr, f.Type))
		fmt.Fprintf(b, "\t\t%s = %s\n", expr, formatLiteral(f.Default))
		b.WriteString("\t}\n")
	}
	b.WriteString("}\n")
}
