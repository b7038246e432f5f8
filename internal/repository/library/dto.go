package library

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain/codelist"
	"github.com/kailas-cloud/mdrcore/internal/domain/ctterm"
	"github.com/kailas-cloud/mdrcore/internal/domain/epoch"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
)

// metaRow is the stored form of versioning.Metadata.
type metaRow struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	ChangeDescription string     `json:"change_description"`
	AuthorUsername    string     `json:"author_username"`
}

func metaToRow(m versioning.Metadata) metaRow {
	return metaRow{
		Status:            m.Status.String(),
		Version:           m.Version.String(),
		StartDate:         m.StartDate.UTC(),
		EndDate:           m.EndDate,
		ChangeDescription: m.ChangeDescription,
		AuthorUsername:    m.AuthorUsername,
	}
}

func metaFromRow(r metaRow) (versioning.Metadata, error) {
	st, err := versioning.ParseStatus(r.Status)
	if err != nil {
		return versioning.Metadata{}, fmt.Errorf("invalid status: %w", err)
	}
	v, err := versioning.ParseVersion(r.Version)
	if err != nil {
		return versioning.Metadata{}, fmt.Errorf("invalid version: %w", err)
	}
	return versioning.Metadata{
		Status:            st,
		Version:           v,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		ChangeDescription: r.ChangeDescription,
		AuthorUsername:    r.AuthorUsername,
	}, nil
}

// --- ct_term ---

type codelistRefRow struct {
	CodelistUID string `json:"codelist_uid"`
	Order       *int   `json:"order,omitempty"`
}

type termRow struct {
	UID                 string           `json:"term_uid"`
	CatalogueName       string           `json:"catalogue_name"`
	Codelists           []codelistRefRow `json:"codelists"`
	ConceptID           string           `json:"concept_id,omitempty"`
	CodeSubmissionValue string           `json:"code_submission_value,omitempty"`
	NameSubmissionValue string           `json:"name_submission_value,omitempty"`
	NCIPreferredName    string           `json:"nci_preferred_name"`
	Definition          string           `json:"definition,omitempty"`
	Synonyms            []string         `json:"synonyms"`
	LibraryName         string           `json:"library_name"`
	Meta                metaRow          `json:"meta"`
}

// TermCodec stores ct_term items.
type TermCodec struct{}

// Encode implements Codec.
func (TermCodec) Encode(t ctterm.Term) ([]byte, error) {
	a := t.Attributes()
	refs := make([]codelistRefRow, len(a.Codelists))
	for i, c := range a.Codelists {
		refs[i] = codelistRefRow{CodelistUID: c.CodelistUID, Order: c.Order}
	}
	return json.Marshal(termRow{
		UID:                 t.UID(),
		CatalogueName:       a.CatalogueName,
		Codelists:           refs,
		ConceptID:           a.ConceptID,
		CodeSubmissionValue: a.CodeSubmissionValue,
		NameSubmissionValue: a.NameSubmissionValue,
		NCIPreferredName:    a.NCIPreferredName,
		Definition:          a.Definition,
		Synonyms:            a.Synonyms,
		LibraryName:         a.LibraryName,
		Meta:                metaToRow(t.Meta()),
	})
}

// Decode implements Codec.
func (TermCodec) Decode(data []byte) (ctterm.Term, error) {
	var row termRow
	if err := json.Unmarshal(data, &row); err != nil {
		return ctterm.Term{}, fmt.Errorf("unmarshal term: %w", err)
	}
	meta, err := metaFromRow(row.Meta)
	if err != nil {
		return ctterm.Term{}, err
	}
	refs := make([]ctterm.CodelistRef, len(row.Codelists))
	for i, c := range row.Codelists {
		refs[i] = ctterm.CodelistRef{CodelistUID: c.CodelistUID, Order: c.Order}
	}
	return ctterm.Reconstruct(row.UID, ctterm.Attributes{
		CatalogueName:       row.CatalogueName,
		Codelists:           refs,
		ConceptID:           row.ConceptID,
		CodeSubmissionValue: row.CodeSubmissionValue,
		NameSubmissionValue: row.NameSubmissionValue,
		NCIPreferredName:    row.NCIPreferredName,
		Definition:          row.Definition,
		Synonyms:            row.Synonyms,
		LibraryName:         row.LibraryName,
	}, meta), nil
}

// --- ct_codelist ---

type codelistRow struct {
	UID               string   `json:"codelist_uid"`
	CatalogueName     string   `json:"catalogue_name"`
	Name              string   `json:"name"`
	SubmissionValue   string   `json:"submission_value"`
	NCIPreferredName  string   `json:"nci_preferred_name,omitempty"`
	Definition        string   `json:"definition,omitempty"`
	Extensible        bool     `json:"extensible"`
	Synonyms          []string `json:"synonyms"`
	ParentCodelistUID string   `json:"parent_codelist_uid,omitempty"`
	LibraryName       string   `json:"library_name"`
	Meta              metaRow  `json:"meta"`
}

// CodelistCodec stores ct_codelist items.
type CodelistCodec struct{}

// Encode implements Codec.
func (CodelistCodec) Encode(c codelist.Codelist) ([]byte, error) {
	a := c.Attributes()
	return json.Marshal(codelistRow{
		UID:               c.UID(),
		CatalogueName:     a.CatalogueName,
		Name:              a.Name,
		SubmissionValue:   a.SubmissionValue,
		NCIPreferredName:  a.NCIPreferredName,
		Definition:        a.Definition,
		Extensible:        a.Extensible,
		Synonyms:          a.Synonyms,
		ParentCodelistUID: a.ParentCodelistUID,
		LibraryName:       a.LibraryName,
		Meta:              metaToRow(c.Meta()),
	})
}

// Decode implements Codec.
func (CodelistCodec) Decode(data []byte) (codelist.Codelist, error) {
	var row codelistRow
	if err := json.Unmarshal(data, &row); err != nil {
		return codelist.Codelist{}, fmt.Errorf("unmarshal codelist: %w", err)
	}
	meta, err := metaFromRow(row.Meta)
	if err != nil {
		return codelist.Codelist{}, err
	}
	return codelist.Reconstruct(row.UID, codelist.Attributes{
		CatalogueName:     row.CatalogueName,
		Name:              row.Name,
		SubmissionValue:   row.SubmissionValue,
		NCIPreferredName:  row.NCIPreferredName,
		Definition:        row.Definition,
		Extensible:        row.Extensible,
		Synonyms:          row.Synonyms,
		ParentCodelistUID: row.ParentCodelistUID,
		LibraryName:       row.LibraryName,
	}, meta), nil
}

// --- study_epoch ---

type termRefRow struct {
	TermUID     string `json:"term_uid"`
	Name        string `json:"name"`
	CodelistUID string `json:"codelist_uid,omitempty"`
}

type epochRow struct {
	UID              string                `json:"uid"`
	StudyUID         string                `json:"study_uid"`
	EpochName        string                `json:"epoch_name"`
	EpochTypeName    string                `json:"epoch_type_name"`
	EpochSubtypeName string                `json:"epoch_subtype_name"`
	StartRule        string                `json:"start_rule,omitempty"`
	EndRule          string                `json:"end_rule,omitempty"`
	Description      string                `json:"description,omitempty"`
	Order            int                   `json:"order"`
	Duration         *int                  `json:"duration,omitempty"`
	DurationUnit     string                `json:"duration_unit,omitempty"`
	ColorHash        string                `json:"color_hash"`
	StudyVisitCount  int                   `json:"study_visit_count"`
	CTTerms          map[string]termRefRow `json:"ct_terms"`
	Meta             metaRow               `json:"meta"`
}

// EpochCodec stores study_epoch items.
type EpochCodec struct{}

// Encode implements Codec.
func (EpochCodec) Encode(e epoch.Epoch) ([]byte, error) {
	a := e.Attributes()
	terms := make(map[string]termRefRow, len(a.CTTerms))
	for role, ref := range a.CTTerms {
		terms[role] = termRefRow{TermUID: ref.TermUID, Name: ref.TermName, CodelistUID: ref.CodelistUID}
	}
	return json.Marshal(epochRow{
		UID:              e.UID(),
		StudyUID:         a.StudyUID,
		EpochName:        a.EpochName,
		EpochTypeName:    a.EpochTypeName,
		EpochSubtypeName: a.EpochSubtypeName,
		StartRule:        a.StartRule,
		EndRule:          a.EndRule,
		Description:      a.Description,
		Order:            a.Order,
		Duration:         a.Duration,
		DurationUnit:     a.DurationUnit,
		ColorHash:        a.ColorHash,
		StudyVisitCount:  a.StudyVisitCount,
		CTTerms:          terms,
		Meta:             metaToRow(e.Meta()),
	})
}

// Decode implements Codec.
func (EpochCodec) Decode(data []byte) (epoch.Epoch, error) {
	var row epochRow
	if err := json.Unmarshal(data, &row); err != nil {
		return epoch.Epoch{}, fmt.Errorf("unmarshal epoch: %w", err)
	}
	meta, err := metaFromRow(row.Meta)
	if err != nil {
		return epoch.Epoch{}, err
	}
	terms := make(map[string]ctterm.Ref, len(row.CTTerms))
	for role, ref := range row.CTTerms {
		terms[role] = ctterm.Ref{TermUID: ref.TermUID, TermName: ref.Name, CodelistUID: ref.CodelistUID}
	}
	return epoch.Reconstruct(row.UID, epoch.Attributes{
		StudyUID:         row.StudyUID,
		EpochName:        row.EpochName,
		EpochTypeName:    row.EpochTypeName,
		EpochSubtypeName: row.EpochSubtypeName,
		StartRule:        row.StartRule,
		EndRule:          row.EndRule,
		Description:      row.Description,
		Order:            row.Order,
		Duration:         row.Duration,
		DurationUnit:     row.DurationUnit,
		ColorHash:        row.ColorHash,
		StudyVisitCount:  row.StudyVisitCount,
		CTTerms:          terms,
	}, meta), nil
}
