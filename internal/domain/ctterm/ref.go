package ctterm

import "github.com/kailas-cloud/mdrcore/internal/domain/record"

// CodelistRef places a term in a codelist at an optional position.
type CodelistRef struct {
	CodelistUID string
	Order       *int
}

var codelistRefSchema = record.NewSchema("codelist_ref",
	record.Scalar("codelist_uid", func(r CodelistRef) any { return r.CodelistUID }),
	record.Scalar("order", func(r CodelistRef) any {
		if r.Order == nil {
			return nil
		}
		return *r.Order
	}),
)

// Lookup implements record.Record.
func (r CodelistRef) Lookup(name string) (any, bool) { return codelistRefSchema.Lookup(r, name) }

// Fields implements record.Record.
func (r CodelistRef) Fields() []record.Field { return codelistRefSchema.Fields() }

// Ref is a lightweight pointer to a term used by other items.
type Ref struct {
	TermUID     string
	TermName    string
	CodelistUID string
}

var refSchema = record.NewSchema("term_ref",
	record.Scalar("term_uid", func(r Ref) any { return r.TermUID }),
	record.Scalar("name", func(r Ref) any { return r.TermName }),
	record.Scalar("codelist_uid", func(r Ref) any { return r.CodelistUID }),
)

// Lookup implements record.Record.
func (r Ref) Lookup(name string) (any, bool) { return refSchema.Lookup(r, name) }

// Fields implements record.Record.
func (r Ref) Fields() []record.Field { return refSchema.Fields() }

// UID returns the referenced term uid.
func (r Ref) UID() string { return r.TermUID }

// Name returns the term name, used for header values.
func (r Ref) Name() string { return r.TermName }
