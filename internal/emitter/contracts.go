package emitter

import (
	"fmt"
	"strings"

	"speckit/internal/ir"
)

// renderContracts emits one interface per domain of the service. The
// interfaces are the seam hand-written controllers implement; transport
// wiring stays outside them.
func renderContracts(set *ir.SpecSet, service string, domains []ir.DomainSpec) []byte {
	imports := map[string]bool{"context": true}
	for _, domain := range domains {
		for _, op := range domain.Operations {
			if op.Input != "" || op.Output != "" {
				imports[modulePath(set)+"/shared/gen/models"] = true
			}
			for _, p := range op.Params {
				addTypeImports(p.Type, imports)
			}
		}
	}

	var b strings.Builder
	b.WriteString(Header + "\n\n")
	b.WriteString("package gen\n")
	writeImports(&b, imports)

	for i := range domains {
		writeContract(&b, &domains[i])
	}

	return []byte(b.String())
}

func writeContract(b *strings.Builder, domain *ir.DomainSpec) {
	name := contractName(domain.Name)

	b.WriteString("\n")
	fmt.Fprintf(b, "// %s is implemented by hand-written %s service code.\n", name, domain.Service)
	if domain.Prefix != "" || len(domain.Tags) > 0 {
		fmt.Fprintf(b, "// REST prefix: %s", domain.Prefix)
		if len(domain.Tags) > 0 {
			fmt.Fprintf(b, " (tags: %s)", strings.Join(domain.Tags, ", "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "type %s interface {\n", name)

	for i, op := range sortedOperations(domain) {
		if i > 0 {
			b.WriteString("\n")
		}
		writeMethodDoc(b, &op)
		fmt.Fprintf(b, "\t%s(%s) %s\n", exportName(op.Name), methodParams(&op), methodResults(&op))
	}
	b.WriteString("}\n")
}

func writeMethodDoc(b *strings.Builder, op *ir.OperationSpec) {
	name := exportName(op.Name)
	if op.Rest != nil {
		fmt.Fprintf(b, "\t// %s handles %s %s (status %d).\n",
			name, op.Rest.Method, op.Rest.Path, op.Rest.EffectiveStatus())
	}
	if op.Events != nil && op.Events.Subscribe != "" {
		fmt.Fprintf(b, "\t// %s is also invoked for messages on %q.\n", name, op.Events.Subscribe)
	}
}

func methodParams(op *ir.OperationSpec) string {
	parts := []string{"ctx context.Context"}
	if op.Input != "" {
		parts = append(parts, "in models."+op.Input)
	}
	for _, p := range op.Params {
		parts = append(parts, paramName(p.Name)+" "+goType(p.Type))
	}
	return strings.Join(parts, ", ")
}

func methodResults(op *ir.OperationSpec) string {
	if op.Output == "" {
		return "error"
	}
	result := "models." + op.BaseOutput()
	if op.OutputMany() {
		result = "[]" + result
	}
	return "(" + result + ", error)"
}

// contractName derives the interface name from the domain ("users" →
// "UsersController").
func contractName(domain string) string {
	return exportName(domain) + "Controller"
}
