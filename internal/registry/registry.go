// Package registry loads and validates the service registry (services.yml).
//
// The registry is the single ordered source of truth for which services
// exist. Entries are only ever read here; nothing in speckit deletes a
// record or the artifacts behind one.
package registry

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"speckit/internal/ir"
)

// SupportedVersion is the registry schema version this build understands.
const SupportedVersion = 2

// slugPattern constrains service names: they double as directory names and
// compose service keys.
var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidationResult is the outcome of registry validation. Errors holds
// every problem found, never just the first.
type ValidationResult struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

func (r *ValidationResult) add(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Load reads and parses services.yml. Declaration order of the services
// list is preserved.
func Load(path string) (*ir.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	var reg ir.Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks registry structure: version, slug shape, uniqueness and
// non-empty descriptions and types. It collects every error before
// returning.
func Validate(reg *ir.Registry) ValidationResult {
	result := ValidationResult{}

	if reg.Version != SupportedVersion {
		result.add("registry version must be %d, got %d", SupportedVersion, reg.Version)
	}
	if len(reg.Services) == 0 {
		result.add("registry must declare at least one service")
	}

	seen := make(map[string]bool)
	for i, svc := range reg.Services {
		prefix := fmt.Sprintf("services[%d]", i)

		if svc.Name == "" {
			result.add("%s.name must be a non-empty slug", prefix)
			continue
		}
		if !slugPattern.MatchString(svc.Name) {
			result.add("%s.name %q is not a valid slug (want ^[a-z][a-z0-9_]*$)", prefix, svc.Name)
		}
		if seen[svc.Name] {
			result.add("duplicate service name: %q", svc.Name)
		}
		seen[svc.Name] = true

		if strings.TrimSpace(svc.Type) == "" {
			result.add("%s.type must be a non-empty string", prefix)
		}
		if strings.TrimSpace(svc.Description) == "" {
			result.add("%s.description must be a non-empty string", prefix)
		}
	}

	result.OK = len(result.Errors) == 0
	return result
}
