// Package epoch holds study epochs, the ordered phases of a study design.
package epoch

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/ctterm"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
)

// Kind is the storage and routing name of study epochs.
const Kind = "study_epoch"

// UIDPrefix prefixes generated epoch uids.
const UIDPrefix = "StudyEpoch"

// DefaultColor is used when no color hash is given.
const DefaultColor = "#FFFFFF"

// Term roles in CTTerms.
const (
	RoleEpoch        = "epoch"
	RoleEpochType    = "epoch_type"
	RoleEpochSubtype = "epoch_subtype"
)

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Attributes are the editable properties of an epoch.
type Attributes struct {
	StudyUID         string
	EpochName        string
	EpochTypeName    string
	EpochSubtypeName string
	StartRule        string
	EndRule          string
	Description      string
	Order            int
	Duration         *int
	DurationUnit     string
	ColorHash        string
	StudyVisitCount  int
	CTTerms          map[string]ctterm.Ref
}

func (a Attributes) clone() Attributes {
	a.CTTerms = maps.Clone(a.CTTerms)
	if a.Duration != nil {
		d := *a.Duration
		a.Duration = &d
	}
	return a
}

func (a Attributes) validate() error {
	switch {
	case strings.TrimSpace(a.StudyUID) == "":
		return fmt.Errorf("%w: study_uid is required", domain.ErrInvalidSchema)
	case strings.TrimSpace(a.EpochSubtypeName) == "":
		return fmt.Errorf("%w: epoch_subtype_name is required", domain.ErrInvalidSchema)
	case a.Order < 0:
		return fmt.Errorf("%w: order must not be negative", domain.ErrInvalidSchema)
	case a.Duration != nil && *a.Duration < 0:
		return fmt.Errorf("%w: duration must not be negative", domain.ErrInvalidSchema)
	case !colorRegex.MatchString(a.ColorHash):
		return fmt.Errorf("%w: color_hash %q must look like #RRGGBB", domain.ErrInvalidSchema, a.ColorHash)
	case a.StudyVisitCount < 0:
		return fmt.Errorf("%w: study_visit_count must not be negative", domain.ErrInvalidSchema)
	}
	for role, ref := range a.CTTerms {
		if ref.TermUID == "" {
			return fmt.Errorf("%w: ct term for role %q needs a term_uid", domain.ErrInvalidSchema, role)
		}
	}
	return nil
}

// Epoch is a study epoch (immutable value object).
type Epoch struct {
	uid   string
	attrs Attributes
	meta  versioning.Metadata
}

// New validates and creates an epoch. Epoch names default to the names of
// the referenced terms; the color defaults to white.
func New(attrs Attributes) (Epoch, error) {
	attrs = attrs.clone()
	if attrs.ColorHash == "" {
		attrs.ColorHash = DefaultColor
	}
	attrs.fillNamesFromTerms()
	if err := attrs.validate(); err != nil {
		return Epoch{}, err
	}
	return Epoch{attrs: attrs}, nil
}

func (a *Attributes) fillNamesFromTerms() {
	fill := func(dst *string, role string) {
		if *dst == "" {
			if ref, ok := a.CTTerms[role]; ok {
				*dst = ref.TermName
			}
		}
	}
	fill(&a.EpochName, RoleEpoch)
	fill(&a.EpochTypeName, RoleEpochType)
	fill(&a.EpochSubtypeName, RoleEpochSubtype)
}

// Reconstruct creates an Epoch without validation (storage hydration).
func Reconstruct(uid string, attrs Attributes, meta versioning.Metadata) Epoch {
	return Epoch{uid: uid, attrs: attrs.clone(), meta: meta}
}

// UID returns the epoch uid.
func (e Epoch) UID() string { return e.uid }

// Name returns the epoch name.
func (e Epoch) Name() string { return e.attrs.EpochName }

// StudyUID returns the owning study.
func (e Epoch) StudyUID() string { return e.attrs.StudyUID }

// Attributes returns a copy of the epoch properties.
func (e Epoch) Attributes() Attributes { return e.attrs.clone() }

// Meta returns the versioning metadata.
func (e Epoch) Meta() versioning.Metadata { return e.meta }

// WithUID returns a copy with the given uid.
func (e Epoch) WithUID(uid string) Epoch {
	e.uid = uid
	return e
}

// WithMeta returns a copy with the given metadata.
func (e Epoch) WithMeta(m versioning.Metadata) Epoch {
	e.meta = m
	return e
}

// Patch is a partial epoch update. Nil fields are unchanged; the study
// cannot be changed.
type Patch struct {
	EpochSubtypeName *string
	StartRule        *string
	EndRule          *string
	Description      *string
	Order            *int
	Duration         *int
	DurationUnit     *string
	ColorHash        *string
	CTTerms          map[string]*ctterm.Ref
}

// Apply returns e with p applied, validated. A nil entry in CTTerms
// removes that role.
func (e Epoch) Apply(p Patch) (Epoch, error) {
	a := e.attrs.clone()
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.EpochSubtypeName, p.EpochSubtypeName)
	set(&a.StartRule, p.StartRule)
	set(&a.EndRule, p.EndRule)
	set(&a.Description, p.Description)
	set(&a.DurationUnit, p.DurationUnit)
	set(&a.ColorHash, p.ColorHash)
	if p.Order != nil {
		a.Order = *p.Order
	}
	if p.Duration != nil {
		d := *p.Duration
		a.Duration = &d
	}
	if len(p.CTTerms) > 0 && a.CTTerms == nil {
		a.CTTerms = make(map[string]ctterm.Ref, len(p.CTTerms))
	}
	for role, ref := range p.CTTerms {
		if ref == nil {
			delete(a.CTTerms, role)
			continue
		}
		a.CTTerms[role] = *ref
		switch role {
		case RoleEpoch:
			a.EpochName = ref.TermName
		case RoleEpochType:
			a.EpochTypeName = ref.TermName
		case RoleEpochSubtype:
			a.EpochSubtypeName = ref.TermName
		}
	}
	if err := a.validate(); err != nil {
		return Epoch{}, err
	}
	e.attrs = a
	return e, nil
}

// WithVisitCount returns a copy with the number of visits assigned.
func (e Epoch) WithVisitCount(n int) Epoch {
	e.attrs.StudyVisitCount = n
	return e
}

// Schema is the accessor table used by filters, sorting and exports.
var Schema = record.NewSchema(Kind, append([]record.Accessor[Epoch]{
	record.Scalar("uid", func(e Epoch) any { return e.uid }),
	record.Scalar("study_uid", func(e Epoch) any { return e.attrs.StudyUID }),
	record.Scalar("epoch_name", func(e Epoch) any { return e.attrs.EpochName }),
	record.Scalar("epoch_type_name", func(e Epoch) any { return e.attrs.EpochTypeName }),
	record.Scalar("epoch_subtype_name", func(e Epoch) any { return e.attrs.EpochSubtypeName }),
	record.Scalar("start_rule", func(e Epoch) any { return e.attrs.StartRule }),
	record.Scalar("end_rule", func(e Epoch) any { return e.attrs.EndRule }),
	record.Scalar("description", func(e Epoch) any { return e.attrs.Description }),
	record.Scalar("order", func(e Epoch) any { return e.attrs.Order }),
	record.Scalar("duration", func(e Epoch) any {
		if e.attrs.Duration == nil {
			return nil
		}
		return *e.attrs.Duration
	}),
	record.Scalar("duration_unit", func(e Epoch) any { return e.attrs.DurationUnit }),
	record.Scalar("color_hash", func(e Epoch) any { return e.attrs.ColorHash }).Hidden(),
	record.Scalar("study_visit_count", func(e Epoch) any { return e.attrs.StudyVisitCount }),
	record.Keyed("ct_terms", func(e Epoch) any { return record.AsMap(e.attrs.CTTerms) }),
}, versioning.Accessors(Epoch.Meta)...)...)

// Lookup implements record.Record.
func (e Epoch) Lookup(name string) (any, bool) { return Schema.Lookup(e, name) }

// Fields implements record.Record.
func (e Epoch) Fields() []record.Field { return Schema.Fields() }
