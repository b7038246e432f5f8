package record

import "fmt"

// Accessor reads one field from a value of type T.
type Accessor[T any] struct {
	Name       string
	Kind       Kind
	NoWildcard bool
	Get        func(T) any
}

// Scalar declares a leaf field.
func Scalar[T any](name string, get func(T) any) Accessor[T] {
	return Accessor[T]{Name: name, Kind: KindScalar, Get: get}
}

// Nested declares a nested Record field.
func Nested[T any](name string, get func(T) any) Accessor[T] {
	return Accessor[T]{Name: name, Kind: KindRecord, Get: get}
}

// List declares a sequence field. get must return []any (see AsList).
func List[T any](name string, get func(T) any) Accessor[T] {
	return Accessor[T]{Name: name, Kind: KindList, Get: get}
}

// Keyed declares a keyed object field. get must return map[string]any (see AsMap).
func Keyed[T any](name string, get func(T) any) Accessor[T] {
	return Accessor[T]{Name: name, Kind: KindKeyed, Get: get}
}

// Hidden marks the accessor as excluded from wildcard searches.
func (a Accessor[T]) Hidden() Accessor[T] {
	a.NoWildcard = true
	return a
}

// Schema is the accessor table of a Record type, built once at init.
type Schema[T any] struct {
	name      string
	fields    []Field
	accessors []Accessor[T]
	index     map[string]int
}

// NewSchema builds an accessor table. Duplicate or empty names panic:
// schemas are declared as package variables and a bad table is a programming error.
func NewSchema[T any](name string, accessors ...Accessor[T]) *Schema[T] {
	s := &Schema[T]{
		name:      name,
		fields:    make([]Field, 0, len(accessors)),
		accessors: make([]Accessor[T], 0, len(accessors)),
		index:     make(map[string]int, len(accessors)),
	}
	for _, a := range accessors {
		s.add(a)
	}
	return s
}

// With returns a new schema with extra accessors appended.
func (s *Schema[T]) With(accessors ...Accessor[T]) *Schema[T] {
	out := NewSchema(s.name, s.accessors...)
	for _, a := range accessors {
		out.add(a)
	}
	return out
}

func (s *Schema[T]) add(a Accessor[T]) {
	if a.Name == "" || a.Get == nil {
		panic(fmt.Sprintf("record: schema %s: accessor needs a name and a getter", s.name))
	}
	if _, dup := s.index[a.Name]; dup {
		panic(fmt.Sprintf("record: schema %s: duplicate field %q", s.name, a.Name))
	}
	s.index[a.Name] = len(s.accessors)
	s.accessors = append(s.accessors, a)
	s.fields = append(s.fields, Field{Name: a.Name, Kind: a.Kind, NoWildcard: a.NoWildcard})
}

// Name returns the record type name.
func (s *Schema[T]) Name() string { return s.name }

// Fields returns the declared fields in order.
func (s *Schema[T]) Fields() []Field { return s.fields }

// Lookup reads a field from v.
func (s *Schema[T]) Lookup(v T, name string) (any, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.accessors[i].Get(v), true
}

// AsList converts a typed slice into a field sequence.
func AsList[E any](xs []E) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// AsMap converts a typed map into a keyed field value.
func AsMap[E any](m map[string]E) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
