package emitter

import (
	"path"
	"sort"

	"speckit/internal/ir"
	"speckit/internal/resolver"
)

// Header is the fixed machine-generated marker. It follows the Go
// convention so downstream tooling recognizes the files as generated.
const Header = "// Code generated by speckit. DO NOT EDIT."

// ModelsPath is where the shared type definitions land, relative to the
// target repository root.
const ModelsPath = "shared/gen/models/models.gen.go"

// File is one rendered artifact, path relative to the target root.
type File struct {
	Path    string
	Content []byte
}

// Render composes every emitted artifact for the spec set, in memory.
// Files come back sorted by path. Render never touches the filesystem.
func Render(set *ir.SpecSet) ([]File, error) {
	var files []File

	resolved := resolveAll(set)
	if len(resolved) > 0 {
		files = append(files, File{Path: ModelsPath, Content: renderModels(resolved)})
	}

	for _, service := range serviceNames(set) {
		domains := serviceDomains(set, service)

		contracts := renderContracts(set, service, domains)
		files = append(files, File{
			Path:    path.Join("services", service, "gen", "contracts.gen.go"),
			Content: contracts,
		})

		if events := renderEvents(set, service, domains); events != nil {
			files = append(files, File{
				Path:    path.Join("services", service, "gen", "events.gen.go"),
				Content: events,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// resolveAll resolves every model, models sorted lexicographically.
func resolveAll(set *ir.SpecSet) []resolver.ResolvedVariant {
	models := make([]ir.ModelSpec, len(set.Models))
	copy(models, set.Models)
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })

	var out []resolver.ResolvedVariant
	for i := range models {
		out = append(out, resolver.Resolve(&models[i])...)
	}
	return out
}

func serviceNames(set *ir.SpecSet) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range set.Domains {
		if !seen[d.Service] {
			seen[d.Service] = true
			names = append(names, d.Service)
		}
	}
	sort.Strings(names)
	return names
}

func serviceDomains(set *ir.SpecSet, service string) []ir.DomainSpec {
	var out []ir.DomainSpec
	for _, d := range set.Domains {
		if d.Service == service {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// modulePath is the target repository's module path for emitted imports.
func modulePath(set *ir.SpecSet) string {
	if set.Module != "" {
		return set.Module
	}
	return "app"
}

// sortedOperations returns a domain's operations lexicographically by name.
func sortedOperations(domain *ir.DomainSpec) []ir.OperationSpec {
	ops := make([]ir.OperationSpec, len(domain.Operations))
	copy(ops, domain.Operations)
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}
