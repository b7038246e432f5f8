package codelist

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain"
)

var now = time.Unix(1700000000, 0)

func attrs() Attributes {
	return Attributes{
		CatalogueName:    "SDTM CT",
		Name:             "No Yes Response",
		SubmissionValue:  "NY",
		NCIPreferredName: "CDISC SDTM Yes No Unknown or Not Applicable Response Terminology",
		Extensible:       false,
		Synonyms:         []string{"No Yes Response"},
		LibraryName:      "CDISC",
	}
}

func TestNew(t *testing.T) {
	c, err := New(attrs(), now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Attributes().SubmissionValue != "NY" || c.Name() != "No Yes Response" {
		t.Errorf("unexpected codelist %+v", c.Attributes())
	}
}

func TestNew_DerivesSubmissionValue(t *testing.T) {
	a := attrs()
	a.SubmissionValue = ""
	c, err := New(a, now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Attributes().SubmissionValue; got != "NYR.1700000000" {
		t.Errorf("submission value = %q", got)
	}
}

func TestNew_Validation(t *testing.T) {
	for name, mutate := range map[string]func(*Attributes){
		"missing catalogue": func(a *Attributes) { a.CatalogueName = "" },
		"missing name":      func(a *Attributes) { a.Name = "" },
		"missing library":   func(a *Attributes) { a.LibraryName = "" },
	} {
		a := attrs()
		mutate(&a)
		if _, err := New(a, now); !errors.Is(err, domain.ErrInvalidSchema) {
			t.Errorf("%s: expected ErrInvalidSchema, got %v", name, err)
		}
	}
}

func TestApply(t *testing.T) {
	c, _ := New(attrs(), now)
	c = c.WithUID("CTCodelist_000001")
	yes := true

	patched, err := c.Apply(Patch{Extensible: &yes})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v, _ := patched.Lookup("extensible"); v != true {
		t.Errorf("extensible = %v", v)
	}

	self := "CTCodelist_000001"
	if _, err := c.Apply(Patch{ParentCodelistUID: &self}); !errors.Is(err, domain.ErrInvalidSchema) {
		t.Errorf("expected ErrInvalidSchema for self parent, got %v", err)
	}
}

func TestLookup_ParentNilWhenUnset(t *testing.T) {
	c, _ := New(attrs(), now)
	if v, ok := c.Lookup("parent_codelist_uid"); !ok || v != nil {
		t.Errorf("parent_codelist_uid = %v, %v", v, ok)
	}
}
