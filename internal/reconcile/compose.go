package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"speckit/internal/ir"
)

// composeKeys are the managed compose flavors. Every service type has a
// base snippet; the dev snippet is optional per type.
var composeKeys = []string{"base", "dev"}

// composeTemplate reads the type-keyed compose snippet
// (templates/compose/<type>.<key>.yml). Returns ("", nil) when the type
// has no snippet for this key.
func composeTemplate(root, serviceType, key string) (string, error) {
	path := filepath.Join(root, "templates", "compose", serviceType+"."+key+".yml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read compose template %s: %w", path, err)
	}
	return string(data), nil
}

// renderComposeSnippet substitutes the service slug into a snippet and
// normalizes the trailing newline.
func renderComposeSnippet(template, slug string) string {
	rendered := strings.ReplaceAll(template, Placeholder, slug)
	return strings.TrimRight(rendered, "\n") + "\n"
}

// composeBlock builds the managed region content for one compose flavor:
// each service snippet indented one level, blank line between services.
// Snippets follow registry declaration order.
func composeBlock(root string, services []ir.ServiceRecord, key string) ([]string, error) {
	var block []string
	for _, svc := range services {
		template, err := composeTemplate(root, svc.Type, key)
		if err != nil {
			return nil, err
		}
		if template == "" {
			continue
		}
		snippet := renderComposeSnippet(template, svc.Name)
		for _, line := range strings.Split(strings.TrimRight(snippet, "\n"), "\n") {
			if line == "" {
				block = append(block, "")
			} else {
				block = append(block, "  "+line)
			}
		}
		block = append(block, "")
	}
	if len(block) == 0 {
		return []string{"  # (no managed services)"}, nil
	}
	return block[:len(block)-1], nil
}

// markerFile returns the shared compose file managed for a flavor,
// relative to the root.
func markerFile(key string) string {
	return filepath.Join("infra", "compose."+key+".yml")
}

// serviceComposePath returns the per-service compose artifact path,
// relative to the root.
func serviceComposePath(slug, key string) string {
	return filepath.Join("infra", "compose.services", slug, key+".yml")
}
