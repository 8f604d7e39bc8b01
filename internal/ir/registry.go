package ir

// ServiceRecord is one entry of the service registry (services.yml). Name
// is the single source of truth for the service's artifact directory; no
// other field may override it. Description is free text, never interpreted.
type ServiceRecord struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// Registry is the declared service registry, in declaration order.
// Reconciliation reports findings in this order.
type Registry struct {
	Version  int             `json:"version" yaml:"version"`
	Services []ServiceRecord `json:"services" yaml:"services"`
}

// Artifact ownership classes.
const (
	OwnerGenerated = "generated"
	OwnerUser      = "user"
	OwnerMarker    = "marker-region"
)

// ArtifactDescriptor describes one artifact tracked during a reconciliation
// run. Runtime-only; never persisted.
type ArtifactDescriptor struct {
	Path  string `json:"path"`
	Owner string `json:"owner"`
	Hash  string `json:"hash,omitempty"`
}
