package ir

import "strings"

// Scalar type names form a closed set. Anything else is a validation
// failure at load time, never a surprise during emission.
const (
	TypeString   = "string"
	TypeInt      = "int"
	TypeBool     = "bool"
	TypeUUID     = "uuid"
	TypeDatetime = "datetime"
	TypeFloat    = "float"
	TypeList     = "list"
)

// TypeRef is a parsed field or parameter type. Elem is set only when
// Name == TypeList.
type TypeRef struct {
	Name string   `json:"name"`
	Elem *TypeRef `json:"elem,omitempty"`
}

// scalarTypes enumerates the valid non-composite type names.
var scalarTypes = map[string]bool{
	TypeString:   true,
	TypeInt:      true,
	TypeBool:     true,
	TypeUUID:     true,
	TypeDatetime: true,
	TypeFloat:    true,
}

// ParseType parses a spec type string ("int", "list[string]", ...) into a
// TypeRef. The second return value reports whether the string names a
// member of the closed type set. List nesting is allowed to any depth.
func ParseType(s string) (TypeRef, bool) {
	s = strings.TrimSpace(s)
	if scalarTypes[s] {
		return TypeRef{Name: s}, true
	}
	if strings.HasPrefix(s, "list[") && strings.HasSuffix(s, "]") {
		elem, ok := ParseType(s[len("list[") : len(s)-1])
		if !ok {
			return TypeRef{}, false
		}
		return TypeRef{Name: TypeList, Elem: &elem}, true
	}
	return TypeRef{}, false
}

// String renders the type back to its spec form.
func (t TypeRef) String() string {
	if t.Name == TypeList && t.Elem != nil {
		return "list[" + t.Elem.String() + "]"
	}
	return t.Name
}

// IsScalar reports whether the type is a non-list member of the closed set.
func (t TypeRef) IsScalar() bool {
	return scalarTypes[t.Name]
}
