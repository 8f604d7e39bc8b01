package reconcile

import "fmt"

// FindingKind classifies one unit of drift between the registry and the
// filesystem.
type FindingKind string

const (
	// FindingMissingDirectory means the service directory itself is absent.
	FindingMissingDirectory FindingKind = "missing_directory"
	// FindingMissingFile means a required file inside an existing service
	// directory is absent.
	FindingMissingFile FindingKind = "missing_file"
	// FindingStaleMarker means a managed marker region differs from the
	// freshly rendered expected content.
	FindingStaleMarker FindingKind = "stale_marker"
	// FindingUnknownType means the record's type has no scaffold template.
	FindingUnknownType FindingKind = "unknown_type"
)

// Finding is one reportable drift item. Path is relative to the
// reconciliation root.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Service string      `json:"service,omitempty"`
	Path    string      `json:"path,omitempty"`
	Detail  string      `json:"detail"`
}

func (f Finding) String() string {
	if f.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Kind, f.Path, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Report aggregates one reconciliation pass. Findings follow registry
// declaration order; Created and Existing list artifact paths relative to
// the root.
type Report struct {
	Findings []Finding `json:"findings,omitempty"`
	Created  []string  `json:"created,omitempty"`
	Existing []string  `json:"existing,omitempty"`
}

// Clean reports whether the pass found no drift.
func (r *Report) Clean() bool {
	return len(r.Findings) == 0
}

func (r *Report) addFinding(kind FindingKind, service, path, detail string) {
	r.Findings = append(r.Findings, Finding{Kind: kind, Service: service, Path: path, Detail: detail})
}

func (r *Report) addCreated(path string) {
	r.Created = append(r.Created, path)
}

func (r *Report) addExisting(path string) {
	r.Existing = append(r.Existing, path)
}
