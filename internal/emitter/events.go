package emitter

import (
	"fmt"
	"strings"

	"speckit/internal/ir"
)

// renderEvents emits the event adapter stubs for a service: an EventBus
// contract plus one subscription registration per subscribing operation.
// Returns nil when no domain of the service subscribes to anything.
func renderEvents(set *ir.SpecSet, service string, domains []ir.DomainSpec) []byte {
	type adapterDomain struct {
		domain *ir.DomainSpec
		ops    []ir.OperationSpec
	}

	var adapters []adapterDomain
	usesModels := false
	for i := range domains {
		var ops []ir.OperationSpec
		for _, op := range sortedOperations(&domains[i]) {
			if op.Events == nil || op.Events.Subscribe == "" {
				continue
			}
			ops = append(ops, op)
			if op.Input != "" {
				usesModels = true
			}
		}
		if len(ops) > 0 {
			adapters = append(adapters, adapterDomain{domain: &domains[i], ops: ops})
		}
	}
	if len(adapters) == 0 {
		return nil
	}

	imports := map[string]bool{"context": true}
	if usesModels {
		imports["encoding/json"] = true
		imports[modulePath(set)+"/shared/gen/models"] = true
	}

	var b strings.Builder
	b.WriteString(Header + "\n\n")
	b.WriteString("package gen\n")
	writeImports(&b, imports)

	b.WriteString(`
// EventBus is the messaging seam the generated adapters bind to. The
// hand-written runtime supplies the implementation.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(channel string, handler func(ctx context.Context, payload []byte) error)
}
`)

	for _, a := range adapters {
		writeEventAdapter(&b, a.domain, a.ops)
	}

	return []byte(b.String())
}

func writeEventAdapter(b *strings.Builder, domain *ir.DomainSpec, ops []ir.OperationSpec) {
	fn := "Register" + exportName(domain.Name) + "Events"

	b.WriteString("\n")
	fmt.Fprintf(b, "// %s subscribes ctrl to its event-triggered operations.\n", fn)
	b.WriteString("// Every handler is a transactional boundary: commit on success, roll\n")
	b.WriteString("// back on failure.\n")
	fmt.Fprintf(b, "func %s(bus EventBus, ctrl %s) {\n", fn, contractName(domain.Name))

	for i := range ops {
		if i > 0 {
			b.WriteString("\n")
		}
		writeSubscription(b, &ops[i])
	}
	b.WriteString("}\n")
}

// writeSubscription renders one handler. On success the result goes to the
// success channel; on failure the error goes to the error channel (when
// declared) and the failure is re-returned, never swallowed.
func writeSubscription(b *strings.Builder, op *ir.OperationSpec) {
	method := exportName(op.Name)
	ev := op.Events

	fmt.Fprintf(b, "\tbus.Subscribe(%q, func(ctx context.Context, payload []byte) error {\n", ev.Subscribe)

	call := "ctrl." + method + "(ctx)"
	if op.Input != "" {
		fmt.Fprintf(b, "\t\tvar in models.%s\n", op.Input)
		b.WriteString("\t\tif err := json.Unmarshal(payload, &in); err != nil {\n")
		b.WriteString("\t\t\treturn err\n")
		b.WriteString("\t\t}\n")
		call = "ctrl." + method + "(ctx, in)"
	}

	switch {
	case op.Output != "" && ev.PublishOnSuccess != "":
		fmt.Fprintf(b, "\t\tout, err := %s\n", call)
	case op.Output != "":
		fmt.Fprintf(b, "\t\t_, err := %s\n", call)
	default:
		fmt.Fprintf(b, "\t\terr := %s\n", call)
	}
	b.WriteString("\t\tif err != nil {\n")
	if ev.PublishOnError != "" {
		fmt.Fprintf(b, "\t\t\t_ = bus.Publish(ctx, %q, err.Error())\n", ev.PublishOnError)
	}
	b.WriteString("\t\t\treturn err\n")
	b.WriteString("\t\t}\n")
	if ev.PublishOnSuccess != "" {
		fmt.Fprintf(b, "\t\treturn bus.Publish(ctx, %q, out)\n", ev.PublishOnSuccess)
	} else {
		b.WriteString("\t\treturn nil\n")
	}
	b.WriteString("\t})\n")
}
