package reconcile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"speckit/internal/emitter"
	"speckit/internal/ir"
)

// Placeholder is the literal substituted with the service slug when a
// template tree or compose snippet is materialized.
const Placeholder = "__SERVICE_NAME__"

var titleCaser = cases.Title(language.English)

// templateDir returns the scaffold tree for a service type, relative to
// the root.
func templateDir(root, serviceType string) string {
	return filepath.Join(root, "templates", "services", serviceType)
}

// hasTemplate reports whether a scaffold tree exists for the type.
func hasTemplate(root, serviceType string) bool {
	info, err := os.Stat(templateDir(root, serviceType))
	return err == nil && info.IsDir()
}

// materializeTree copies the type's template tree to dest, substituting
// the slug placeholder in every file. dest must not already exist.
func materializeTree(root string, svc ir.ServiceRecord, dest string) error {
	src := templateDir(root, svc.Type)
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}
		rendered := strings.ReplaceAll(string(data), Placeholder, svc.Name)
		return emitter.WriteFileAtomic(target, []byte(rendered))
	})
}

// readmeStub is the initial README for a freshly scaffolded service.
func readmeStub(svc ir.ServiceRecord) []byte {
	title := titleCaser.String(strings.ReplaceAll(svc.Name, "_", " "))
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if svc.Description != "" {
		b.WriteString(svc.Description + "\n")
	} else {
		b.WriteString("Describe the service here.\n")
	}
	return []byte(b.String())
}

// agentsStub is the initial AGENTS doc for a freshly scaffolded service.
func agentsStub(svc ir.ServiceRecord) []byte {
	return []byte(fmt.Sprintf(
		"# AGENTS — %s\n\nDocument how automation agents should work with this service.\n",
		svc.Name,
	))
}

// requiredFile is one artifact that must exist inside or alongside an
// existing service directory. render produces its initial content.
type requiredFile struct {
	path   string
	render func() ([]byte, error)
}

// requiredFiles lists the doc stubs and per-service compose artifacts for
// a record. Paths are relative to the root. Compose artifacts are only
// required for flavors the type has a snippet for.
func requiredFiles(root string, svc ir.ServiceRecord) ([]requiredFile, error) {
	files := []requiredFile{
		{
			path:   filepath.Join("services", svc.Name, "README.md"),
			render: func() ([]byte, error) { return readmeStub(svc), nil },
		},
		{
			path:   filepath.Join("services", svc.Name, "AGENTS.md"),
			render: func() ([]byte, error) { return agentsStub(svc), nil },
		},
	}

	for _, key := range composeKeys {
		template, err := composeTemplate(root, svc.Type, key)
		if err != nil {
			return nil, err
		}
		if template == "" {
			continue
		}
		snippet := renderComposeSnippet(template, svc.Name)
		files = append(files, requiredFile{
			path:   serviceComposePath(svc.Name, key),
			render: func() ([]byte, error) { return []byte(snippet), nil },
		})
	}
	return files, nil
}
