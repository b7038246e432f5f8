// Package record defines the value model the query engine works on.
//
// A Record exposes named fields through an explicit accessor table instead of
// reflection. Field values are scalars, Enum values, nested Records, []any
// sequences or map[string]any keyed objects.
package record

// Kind describes the shape of a declared field.
type Kind int

const (
	// KindScalar is a leaf value (string, number, bool, time, enum, nil).
	KindScalar Kind = iota
	// KindRecord is a nested Record.
	KindRecord
	// KindList is an ordered []any of Records or scalars.
	KindList
	// KindKeyed is a map[string]any whose values are Records or scalars.
	KindKeyed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindKeyed:
		return "keyed"
	default:
		return "unknown"
	}
}

// Field is a declared field of a Record type.
type Field struct {
	Name string
	Kind Kind
	// NoWildcard excludes the field from "*" searches.
	NoWildcard bool
}

// Record is one domain object exposed to the query engine.
type Record interface {
	// Lookup returns the value of a declared field. ok is false for unknown names.
	Lookup(name string) (value any, ok bool)
	// Fields lists declared fields in declaration order. Callers must not modify it.
	Fields() []Field
}

// Identifiable is a Record with a stable unique identifier.
type Identifiable interface {
	UID() string
}

// Named is a Record with a display name.
type Named interface {
	Name() string
}

// Enum is a labeled value that resolves to its underlying value.
type Enum interface {
	EnumValue() any
}
