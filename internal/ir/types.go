package ir

// FieldSpec describes a single field of a model. Name is unique within the
// owning model. Default, when non-nil, holds the literal parsed from the
// spec document (string, int64, bool or float64).
type FieldSpec struct {
	Name     string  `json:"name"`
	Type     TypeRef `json:"type"`
	Default  any     `json:"default,omitempty"`
	Readonly bool    `json:"readonly,omitempty"`
	Optional bool    `json:"optional,omitempty"`
}

// VariantSpec is a named alternate field projection of its model. The three
// sets reference fields by name only; the validator checks existence.
type VariantSpec struct {
	Name     string   `json:"name"`
	Exclude  []string `json:"exclude,omitempty"`
	Optional []string `json:"optional,omitempty"`
	Include  []string `json:"include,omitempty"`
}

// ModelSpec is a named data model. Fields and Variants preserve declaration
// order; emission order is always lexicographic regardless.
type ModelSpec struct {
	Name     string        `json:"name"`
	Fields   []FieldSpec   `json:"fields"`
	Variants []VariantSpec `json:"variants,omitempty"`
}

// Field returns the field with the given name, or nil.
func (m *ModelSpec) Field(name string) *FieldSpec {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

// Variant returns the variant with the given name, or nil.
func (m *ModelSpec) Variant(name string) *VariantSpec {
	for i := range m.Variants {
		if m.Variants[i].Name == name {
			return &m.Variants[i]
		}
	}
	return nil
}

// Valid parameter sources.
const (
	ParamSourcePath  = "path"
	ParamSourceQuery = "query"
)

// ParamSpec is a non-body operation parameter. Path parameters are always
// required; query parameters with a default are optional.
type ParamSpec struct {
	Name    string  `json:"name"`
	Type    TypeRef `json:"type"`
	Source  string  `json:"source"`
	Default any     `json:"default,omitempty"`
}

// RestConfig is the optional REST sub-record of an operation's transport.
// Status 0 means "use the method default".
type RestConfig struct {
	Method string `json:"method"`
	Path   string `json:"path,omitempty"`
	Status int    `json:"status,omitempty"`
}

// EffectiveStatus returns the declared status, or the method default:
// 201 for POST, 204 for DELETE, 200 otherwise.
func (r RestConfig) EffectiveStatus() int {
	if r.Status != 0 {
		return r.Status
	}
	switch r.Method {
	case "POST":
		return 201
	case "DELETE":
		return 204
	default:
		return 200
	}
}

// EventsConfig is the optional events sub-record of an operation's
// transport. Empty strings mean "not declared".
type EventsConfig struct {
	Subscribe        string `json:"subscribe,omitempty"`
	PublishOnSuccess string `json:"publish_on_success,omitempty"`
	PublishOnError   string `json:"publish_on_error,omitempty"`
}

// Channels returns the declared channel names in a fixed order.
func (e EventsConfig) Channels() []string {
	var out []string
	for _, ch := range []string{e.Subscribe, e.PublishOnSuccess, e.PublishOnError} {
		if ch != "" {
			out = append(out, ch)
		}
	}
	return out
}

// OperationSpec is a transport-agnostic service operation. Input and Output
// reference models by name ("" means none); Output may be wrapped as
// "list[Model]". At least one of Rest or Events must be present.
type OperationSpec struct {
	Name   string        `json:"name"`
	Input  string        `json:"input,omitempty"`
	Output string        `json:"output,omitempty"`
	Params []ParamSpec   `json:"params,omitempty"`
	Rest   *RestConfig   `json:"rest,omitempty"`
	Events *EventsConfig `json:"events,omitempty"`
}

// OutputMany reports whether the output is declared as list[Model].
func (o *OperationSpec) OutputMany() bool {
	return len(o.Output) > len("list[]") && o.Output[:5] == "list[" && o.Output[len(o.Output)-1] == ']'
}

// BaseOutput returns the output model name with any list[] wrapper removed.
func (o *OperationSpec) BaseOutput() string {
	if o.OutputMany() {
		return o.Output[5 : len(o.Output)-1]
	}
	return o.Output
}

// DomainSpec groups the operations of one spec document. Service is the
// owning service slug (derived from the document's location).
type DomainSpec struct {
	Service    string          `json:"service"`
	Name       string          `json:"name"`
	Prefix     string          `json:"prefix,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	Operations []OperationSpec `json:"operations"`
}

// EventMessageSpec binds a channel name's payload to a model.
type EventMessageSpec struct {
	Channel   string `json:"channel"`
	Message   string `json:"message"`
	Publish   bool   `json:"publish,omitempty"`
	Subscribe bool   `json:"subscribe,omitempty"`
}

// SpecSet is the fully loaded IR for one invocation. Module is the target
// repository's module path, used for import paths in emitted source.
type SpecSet struct {
	Module  string             `json:"module,omitempty"`
	Models  []ModelSpec        `json:"models"`
	Domains []DomainSpec       `json:"domains,omitempty"`
	Events  []EventMessageSpec `json:"events,omitempty"`
}

// Model returns the model with the given name, or nil.
func (s *SpecSet) Model(name string) *ModelSpec {
	for i := range s.Models {
		if s.Models[i].Name == name {
			return &s.Models[i]
		}
	}
	return nil
}

// Event returns the event bound to the given channel, or nil.
func (s *SpecSet) Event(channel string) *EventMessageSpec {
	for i := range s.Events {
		if s.Events[i].Channel == channel {
			return &s.Events[i]
		}
	}
	return nil
}

// ModelNames returns every referenceable model name: base models plus the
// Model+Variant composites ("Order" and "OrderCreate").
func (s *SpecSet) ModelNames() map[string]bool {
	names := make(map[string]bool)
	for _, m := range s.Models {
		names[m.Name] = true
		for _, v := range m.Variants {
			names[m.Name+v.Name] = true
		}
	}
	return names
}
