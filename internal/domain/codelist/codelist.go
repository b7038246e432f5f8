// Package codelist holds controlled terminology codelists.
package codelist

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/naming"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
)

// Kind is the storage and routing name of codelists.
const Kind = "ct_codelist"

// UIDPrefix prefixes generated codelist uids.
const UIDPrefix = "CTCodelist"

// Attributes are the editable properties of a codelist.
type Attributes struct {
	CatalogueName     string
	Name              string
	SubmissionValue   string
	NCIPreferredName  string
	Definition        string
	Extensible        bool
	Synonyms          []string
	ParentCodelistUID string
	LibraryName       string
}

func (a Attributes) validate() error {
	switch {
	case strings.TrimSpace(a.CatalogueName) == "":
		return fmt.Errorf("%w: catalogue_name is required", domain.ErrInvalidSchema)
	case strings.TrimSpace(a.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidSchema)
	case strings.TrimSpace(a.SubmissionValue) == "":
		return fmt.Errorf("%w: submission_value is required", domain.ErrInvalidSchema)
	case strings.TrimSpace(a.LibraryName) == "":
		return fmt.Errorf("%w: library_name is required", domain.ErrInvalidSchema)
	}
	return nil
}

// Codelist is a controlled terminology codelist (immutable value object).
type Codelist struct {
	uid   string
	attrs Attributes
	meta  versioning.Metadata
}

// New validates and creates a codelist. An empty submission value is
// derived from the name.
func New(attrs Attributes, now time.Time) (Codelist, error) {
	attrs.SubmissionValue = naming.InputOrNew(attrs.SubmissionValue, "", attrs.Name, naming.DefaultSeparator, now)
	attrs.Synonyms = slices.Clone(attrs.Synonyms)
	if err := attrs.validate(); err != nil {
		return Codelist{}, err
	}
	return Codelist{attrs: attrs}, nil
}

// Reconstruct creates a Codelist without validation (storage hydration).
func Reconstruct(uid string, attrs Attributes, meta versioning.Metadata) Codelist {
	attrs.Synonyms = slices.Clone(attrs.Synonyms)
	return Codelist{uid: uid, attrs: attrs, meta: meta}
}

// UID returns the codelist uid.
func (c Codelist) UID() string { return c.uid }

// Name returns the codelist name.
func (c Codelist) Name() string { return c.attrs.Name }

// Attributes returns a copy of the codelist properties.
func (c Codelist) Attributes() Attributes {
	a := c.attrs
	a.Synonyms = slices.Clone(a.Synonyms)
	return a
}

// Meta returns the versioning metadata.
func (c Codelist) Meta() versioning.Metadata { return c.meta }

// WithUID returns a copy with the given uid.
func (c Codelist) WithUID(uid string) Codelist {
	c.uid = uid
	return c
}

// WithMeta returns a copy with the given metadata.
func (c Codelist) WithMeta(m versioning.Metadata) Codelist {
	c.meta = m
	return c
}

// Patch is a partial codelist update. Nil fields are unchanged.
type Patch struct {
	CatalogueName     *string
	Name              *string
	SubmissionValue   *string
	NCIPreferredName  *string
	Definition        *string
	Extensible        *bool
	Synonyms          *[]string
	ParentCodelistUID *string
}

// Apply returns c with p applied, validated.
func (c Codelist) Apply(p Patch) (Codelist, error) {
	a := c.Attributes()
	if p.CatalogueName != nil {
		a.CatalogueName = *p.CatalogueName
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.SubmissionValue != nil {
		a.SubmissionValue = *p.SubmissionValue
	}
	if p.NCIPreferredName != nil {
		a.NCIPreferredName = *p.NCIPreferredName
	}
	if p.Definition != nil {
		a.Definition = *p.Definition
	}
	if p.Extensible != nil {
		a.Extensible = *p.Extensible
	}
	if p.Synonyms != nil {
		a.Synonyms = slices.Clone(*p.Synonyms)
	}
	if p.ParentCodelistUID != nil {
		if *p.ParentCodelistUID == c.uid && c.uid != "" {
			return Codelist{}, fmt.Errorf("%w: codelist cannot be its own parent", domain.ErrInvalidSchema)
		}
		a.ParentCodelistUID = *p.ParentCodelistUID
	}
	if err := a.validate(); err != nil {
		return Codelist{}, err
	}
	c.attrs = a
	return c, nil
}

// Schema is the accessor table used by filters, sorting and exports.
var Schema = record.NewSchema(Kind, append([]record.Accessor[Codelist]{
	record.Scalar("codelist_uid", func(c Codelist) any { return c.uid }),
	record.Scalar("catalogue_name", func(c Codelist) any { return c.attrs.CatalogueName }),
	record.Scalar("name", func(c Codelist) any { return c.attrs.Name }),
	record.Scalar("submission_value", func(c Codelist) any { return c.attrs.SubmissionValue }),
	record.Scalar("nci_preferred_name", func(c Codelist) any { return c.attrs.NCIPreferredName }),
	record.Scalar("definition", func(c Codelist) any { return c.attrs.Definition }),
	record.Scalar("extensible", func(c Codelist) any { return c.attrs.Extensible }),
	record.List("synonyms", func(c Codelist) any { return record.AsList(c.attrs.Synonyms) }),
	record.Scalar("parent_codelist_uid", func(c Codelist) any {
		if c.attrs.ParentCodelistUID == "" {
			return nil
		}
		return c.attrs.ParentCodelistUID
	}),
	record.Scalar("library_name", func(c Codelist) any { return c.attrs.LibraryName }),
}, versioning.Accessors(Codelist.Meta)...)...)

// Lookup implements record.Record.
func (c Codelist) Lookup(name string) (any, bool) { return Schema.Lookup(c, name) }

// Fields implements record.Record.
func (c Codelist) Fields() []record.Field { return Schema.Fields() }
