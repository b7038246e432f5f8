// Package ctterm holds controlled terminology terms.
package ctterm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
)

// Kind is the storage and routing name of terms.
const Kind = "ct_term"

// UIDPrefix prefixes generated term uids.
const UIDPrefix = "CTTerm"

// Attributes are the editable properties of a term.
type Attributes struct {
	CatalogueName       string
	Codelists           []CodelistRef
	ConceptID           string
	CodeSubmissionValue string
	NameSubmissionValue string
	NCIPreferredName    string
	Definition          string
	Synonyms            []string
	LibraryName         string
}

func (a Attributes) clone() Attributes {
	a.Codelists = slices.Clone(a.Codelists)
	a.Synonyms = slices.Clone(a.Synonyms)
	return a
}

func (a Attributes) validate() error {
	if strings.TrimSpace(a.CatalogueName) == "" {
		return fmt.Errorf("%w: catalogue_name is required", domain.ErrInvalidSchema)
	}
	if strings.TrimSpace(a.NCIPreferredName) == "" {
		return fmt.Errorf("%w: nci_preferred_name is required", domain.ErrInvalidSchema)
	}
	if strings.TrimSpace(a.LibraryName) == "" {
		return fmt.Errorf("%w: library_name is required", domain.ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(a.Codelists))
	for _, c := range a.Codelists {
		if c.CodelistUID == "" {
			return fmt.Errorf("%w: codelist_uid is required", domain.ErrInvalidSchema)
		}
		if seen[c.CodelistUID] {
			return fmt.Errorf("%w: term listed twice in codelist %s", domain.ErrInvalidSchema, c.CodelistUID)
		}
		seen[c.CodelistUID] = true
		if c.Order != nil && *c.Order < 1 {
			return fmt.Errorf("%w: order in codelist %s must be positive", domain.ErrInvalidSchema, c.CodelistUID)
		}
	}
	return nil
}

// Term is a controlled terminology term (immutable value object).
type Term struct {
	uid   string
	attrs Attributes
	meta  versioning.Metadata
}

// New validates and creates a term without uid or metadata; the library
// service assigns both.
func New(attrs Attributes) (Term, error) {
	if err := attrs.validate(); err != nil {
		return Term{}, err
	}
	return Term{attrs: attrs.clone()}, nil
}

// Reconstruct creates a Term without validation (storage hydration).
func Reconstruct(uid string, attrs Attributes, meta versioning.Metadata) Term {
	return Term{uid: uid, attrs: attrs.clone(), meta: meta}
}

// UID returns the term uid.
func (t Term) UID() string { return t.uid }

// Name returns the NCI preferred name.
func (t Term) Name() string { return t.attrs.NCIPreferredName }

// Attributes returns a copy of the term properties.
func (t Term) Attributes() Attributes { return t.attrs.clone() }

// Meta returns the versioning metadata.
func (t Term) Meta() versioning.Metadata { return t.meta }

// WithUID returns a copy with the given uid.
func (t Term) WithUID(uid string) Term {
	t.uid = uid
	return t
}

// WithMeta returns a copy with the given metadata.
func (t Term) WithMeta(m versioning.Metadata) Term {
	t.meta = m
	return t
}

// Patch is a partial term update. Nil fields are unchanged.
type Patch struct {
	CatalogueName       *string
	Codelists           *[]CodelistRef
	ConceptID           *string
	CodeSubmissionValue *string
	NameSubmissionValue *string
	NCIPreferredName    *string
	Definition          *string
	Synonyms            *[]string
}

// Apply returns t with p applied, validated.
func (t Term) Apply(p Patch) (Term, error) {
	a := t.attrs.clone()
	setString(&a.CatalogueName, p.CatalogueName)
	setString(&a.ConceptID, p.ConceptID)
	setString(&a.CodeSubmissionValue, p.CodeSubmissionValue)
	setString(&a.NameSubmissionValue, p.NameSubmissionValue)
	setString(&a.NCIPreferredName, p.NCIPreferredName)
	setString(&a.Definition, p.Definition)
	if p.Codelists != nil {
		a.Codelists = slices.Clone(*p.Codelists)
	}
	if p.Synonyms != nil {
		a.Synonyms = slices.Clone(*p.Synonyms)
	}
	if err := a.validate(); err != nil {
		return Term{}, err
	}
	t.attrs = a
	return t, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Schema is the accessor table used by filters, sorting and exports.
var Schema = record.NewSchema(Kind, append([]record.Accessor[Term]{
	record.Scalar("term_uid", func(t Term) any { return t.uid }),
	record.Scalar("catalogue_name", func(t Term) any { return t.attrs.CatalogueName }),
	record.List("codelists", func(t Term) any { return record.AsList(t.attrs.Codelists) }),
	record.Scalar("concept_id", func(t Term) any { return t.attrs.ConceptID }),
	record.Scalar("code_submission_value", func(t Term) any { return t.attrs.CodeSubmissionValue }),
	record.Scalar("name_submission_value", func(t Term) any { return t.attrs.NameSubmissionValue }),
	record.Scalar("nci_preferred_name", func(t Term) any { return t.attrs.NCIPreferredName }),
	record.Scalar("definition", func(t Term) any { return t.attrs.Definition }),
	record.List("synonyms", func(t Term) any { return record.AsList(t.attrs.Synonyms) }),
	record.Scalar("library_name", func(t Term) any { return t.attrs.LibraryName }),
}, versioning.Accessors(Term.Meta)...)...)

// Lookup implements record.Record.
func (t Term) Lookup(name string) (any, bool) { return Schema.Lookup(t, name) }

// Fields implements record.Record.
func (t Term) Fields() []record.Field { return Schema.Fields() }
