package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/codelist"
	"github.com/kailas-cloud/mdrcore/internal/domain/ctterm"
	"github.com/kailas-cloud/mdrcore/internal/domain/epoch"
	libraryuc "github.com/kailas-cloud/mdrcore/internal/usecase/library"
)

func decodePayload(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}
	return nil
}

// --- terms ---

type codelistRefPayload struct {
	CodelistUID string `json:"codelist_uid"`
	Order       *int   `json:"order"`
}

type termPayload struct {
	CatalogueName       string               `json:"catalogue_name"`
	Codelists           []codelistRefPayload `json:"codelists"`
	ConceptID           string               `json:"concept_id"`
	CodeSubmissionValue string               `json:"code_submission_value"`
	NameSubmissionValue string               `json:"name_submission_value"`
	NCIPreferredName    string               `json:"nci_preferred_name"`
	Definition          string               `json:"definition"`
	Synonyms            []string             `json:"synonyms"`
	LibraryName         string               `json:"library_name"`
}

type termPatchPayload struct {
	CatalogueName       *string               `json:"catalogue_name"`
	Codelists           *[]codelistRefPayload `json:"codelists"`
	ConceptID           *string               `json:"concept_id"`
	CodeSubmissionValue *string               `json:"code_submission_value"`
	NameSubmissionValue *string               `json:"name_submission_value"`
	NCIPreferredName    *string               `json:"nci_preferred_name"`
	Definition          *string               `json:"definition"`
	Synonyms            *[]string             `json:"synonyms"`
}

func codelistRefs(in []codelistRefPayload) []ctterm.CodelistRef {
	out := make([]ctterm.CodelistRef, len(in))
	for i, c := range in {
		out[i] = ctterm.CodelistRef{CodelistUID: c.CodelistUID, Order: c.Order}
	}
	return out
}

// TermKind reads controlled terminology terms.
func TermKind() Kind[ctterm.Term] {
	return Kind[ctterm.Term]{
		Decode: func(_ *http.Request, body []byte) (ctterm.Term, error) {
			var p termPayload
			if err := decodePayload(body, &p); err != nil {
				return ctterm.Term{}, err
			}
			return ctterm.New(ctterm.Attributes{
				CatalogueName:       p.CatalogueName,
				Codelists:           codelistRefs(p.Codelists),
				ConceptID:           p.ConceptID,
				CodeSubmissionValue: p.CodeSubmissionValue,
				NameSubmissionValue: p.NameSubmissionValue,
				NCIPreferredName:    p.NCIPreferredName,
				Definition:          p.Definition,
				Synonyms:            p.Synonyms,
				LibraryName:         p.LibraryName,
			})
		},
		Patch: func(cur ctterm.Term, body []byte) (ctterm.Term, error) {
			var p termPatchPayload
			if err := decodePayload(body, &p); err != nil {
				return cur, err
			}
			patch := ctterm.Patch{
				CatalogueName:       p.CatalogueName,
				ConceptID:           p.ConceptID,
				CodeSubmissionValue: p.CodeSubmissionValue,
				NameSubmissionValue: p.NameSubmissionValue,
				NCIPreferredName:    p.NCIPreferredName,
				Definition:          p.Definition,
				Synonyms:            p.Synonyms,
			}
			if p.Codelists != nil {
				refs := codelistRefs(*p.Codelists)
				patch.Codelists = &refs
			}
			return cur.Apply(patch)
		},
	}
}

// --- codelists ---

type codelistPayload struct {
	CatalogueName     string   `json:"catalogue_name"`
	Name              string   `json:"name"`
	SubmissionValue   string   `json:"submission_value"`
	NCIPreferredName  string   `json:"nci_preferred_name"`
	Definition        string   `json:"definition"`
	Extensible        bool     `json:"extensible"`
	Synonyms          []string `json:"synonyms"`
	ParentCodelistUID string   `json:"parent_codelist_uid"`
	LibraryName       string   `json:"library_name"`
}

type codelistPatchPayload struct {
	CatalogueName     *string   `json:"catalogue_name"`
	Name              *string   `json:"name"`
	SubmissionValue   *string   `json:"submission_value"`
	NCIPreferredName  *string   `json:"nci_preferred_name"`
	Definition        *string   `json:"definition"`
	Extensible        *bool     `json:"extensible"`
	Synonyms          *[]string `json:"synonyms"`
	ParentCodelistUID *string   `json:"parent_codelist_uid"`
}

// CodelistKind reads codelists. now stamps derived submission values.
func CodelistKind(now func() time.Time) Kind[codelist.Codelist] {
	return Kind[codelist.Codelist]{
		Decode: func(_ *http.Request, body []byte) (codelist.Codelist, error) {
			var p codelistPayload
			if err := decodePayload(body, &p); err != nil {
				return codelist.Codelist{}, err
			}
			return codelist.New(codelist.Attributes{
				CatalogueName:     p.CatalogueName,
				Name:              p.Name,
				SubmissionValue:   p.SubmissionValue,
				NCIPreferredName:  p.NCIPreferredName,
				Definition:        p.Definition,
				Extensible:        p.Extensible,
				Synonyms:          p.Synonyms,
				ParentCodelistUID: p.ParentCodelistUID,
				LibraryName:       p.LibraryName,
			}, now())
		},
		Patch: func(cur codelist.Codelist, body []byte) (codelist.Codelist, error) {
			var p codelistPatchPayload
			if err := decodePayload(body, &p); err != nil {
				return cur, err
			}
			return cur.Apply(codelist.Patch{
				CatalogueName:     p.CatalogueName,
				Name:              p.Name,
				SubmissionValue:   p.SubmissionValue,
				NCIPreferredName:  p.NCIPreferredName,
				Definition:        p.Definition,
				Extensible:        p.Extensible,
				Synonyms:          p.Synonyms,
				ParentCodelistUID: p.ParentCodelistUID,
			})
		},
	}
}

// --- study epochs ---

type termRefPayload struct {
	TermUID     string `json:"term_uid"`
	Name        string `json:"name"`
	CodelistUID string `json:"codelist_uid"`
}

func (p termRefPayload) ref() ctterm.Ref {
	return ctterm.Ref{TermUID: p.TermUID, TermName: p.Name, CodelistUID: p.CodelistUID}
}

type epochPayload struct {
	EpochSubtypeName string                    `json:"epoch_subtype_name"`
	StartRule        string                    `json:"start_rule"`
	EndRule          string                    `json:"end_rule"`
	Description      string                    `json:"description"`
	Order            int                       `json:"order"`
	Duration         *int                      `json:"duration"`
	DurationUnit     string                    `json:"duration_unit"`
	ColorHash        string                    `json:"color_hash"`
	CTTerms          map[string]termRefPayload `json:"ct_terms"`
}

type epochPatchPayload struct {
	EpochSubtypeName *string                    `json:"epoch_subtype_name"`
	StartRule        *string                    `json:"start_rule"`
	EndRule          *string                    `json:"end_rule"`
	Description      *string                    `json:"description"`
	Order            *int                       `json:"order"`
	Duration         *int                       `json:"duration"`
	DurationUnit     *string                    `json:"duration_unit"`
	ColorHash        *string                    `json:"color_hash"`
	CTTerms          map[string]*termRefPayload `json:"ct_terms"`
}

// EpochKind reads the epochs of the study named by the study_uid path parameter.
func EpochKind() Kind[epoch.Epoch] {
	return Kind[epoch.Epoch]{
		Decode: func(r *http.Request, body []byte) (epoch.Epoch, error) {
			var p epochPayload
			if err := decodePayload(body, &p); err != nil {
				return epoch.Epoch{}, err
			}
			terms := make(map[string]ctterm.Ref, len(p.CTTerms))
			for role, t := range p.CTTerms {
				terms[role] = t.ref()
			}
			return epoch.New(epoch.Attributes{
				StudyUID:         chi.URLParam(r, "study_uid"),
				EpochSubtypeName: p.EpochSubtypeName,
				StartRule:        p.StartRule,
				EndRule:          p.EndRule,
				Description:      p.Description,
				Order:            p.Order,
				Duration:         p.Duration,
				DurationUnit:     p.DurationUnit,
				ColorHash:        p.ColorHash,
				CTTerms:          terms,
			})
		},
		Patch: func(cur epoch.Epoch, body []byte) (epoch.Epoch, error) {
			var p epochPatchPayload
			if err := decodePayload(body, &p); err != nil {
				return cur, err
			}
			var terms map[string]*ctterm.Ref
			if len(p.CTTerms) > 0 {
				terms = make(map[string]*ctterm.Ref, len(p.CTTerms))
				for role, t := range p.CTTerms {
					if t == nil {
						terms[role] = nil
						continue
					}
					ref := t.ref()
					terms[role] = &ref
				}
			}
			return cur.Apply(epoch.Patch{
				EpochSubtypeName: p.EpochSubtypeName,
				StartRule:        p.StartRule,
				EndRule:          p.EndRule,
				Description:      p.Description,
				Order:            p.Order,
				Duration:         p.Duration,
				DurationUnit:     p.DurationUnit,
				ColorHash:        p.ColorHash,
				CTTerms:          terms,
			})
		},
		Scope: func(r *http.Request) libraryuc.Scope[epoch.Epoch] {
			study := chi.URLParam(r, "study_uid")
			return func(e epoch.Epoch) bool { return e.StudyUID() == study }
		},
	}
}
