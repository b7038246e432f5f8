// Package fields parses the include/exclude fields mini-language and shapes
// records down to the selected fields.
//
// A directive string is a comma separated list of dotted paths, each
// optionally prefixed with "+" (include, the default) or "-" (exclude).
// Exclusion wins over inclusion. A node with no includes lets every field
// that is not excluded through; a single include closes it to the listed
// fields.
package fields

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/kailas-cloud/mdrcore/internal/domain"
)

// Directive is one node of the parsed fields tree.
type Directive struct {
	included map[string]struct{}
	excluded map[string]struct{}
	children map[string]*Directive
}

var anything = &Directive{}

// Anything returns the directive that includes every field.
func Anything() *Directive { return anything }

// Parse parses a fields directive string. Whitespace is ignored and empty
// tokens are skipped; an empty string yields Anything.
func Parse(s string) *Directive {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	include := make(map[string]struct{})
	exclude := make(map[string]struct{})
	for _, tok := range strings.Split(s, ",") {
		if tok == "" {
			continue
		}
		excluded := tok[0] == '-'
		if tok[0] == '-' || tok[0] == '+' {
			tok = tok[1:]
		}
		if tok == "" {
			continue
		}
		if excluded {
			exclude[tok] = struct{}{}
		} else {
			include[tok] = struct{}{}
		}
	}
	if len(include) == 0 && len(exclude) == 0 {
		return anything
	}
	return build(include, exclude)
}

func build(include, exclude map[string]struct{}) *Directive {
	d := &Directive{
		included: make(map[string]struct{}),
		excluded: make(map[string]struct{}),
		children: make(map[string]*Directive),
	}
	nestedInclude := make(map[string]map[string]struct{})
	nestedExclude := make(map[string]map[string]struct{})

	for spec := range include {
		if _, ok := exclude[spec]; ok {
			continue
		}
		head, rest, nested := strings.Cut(spec, ".")
		// Including a subfield includes its parent.
		d.included[head] = struct{}{}
		if nested {
			addTo(nestedInclude, head, rest)
		}
	}
	for spec := range exclude {
		head, rest, nested := strings.Cut(spec, ".")
		if !nested {
			d.excluded[head] = struct{}{}
			continue
		}
		addTo(nestedExclude, head, rest)
	}

	for name := range nestedInclude {
		d.children[name] = nil
	}
	for name := range nestedExclude {
		d.children[name] = nil
	}
	for name := range d.children {
		inc, exc := nestedInclude[name], nestedExclude[name]
		if inc == nil {
			inc = map[string]struct{}{}
		}
		if exc == nil {
			exc = map[string]struct{}{}
		}
		d.children[name] = build(inc, exc)
	}
	return d
}

func addTo(m map[string]map[string]struct{}, key, value string) {
	if m[key] == nil {
		m[key] = make(map[string]struct{})
	}
	m[key][value] = struct{}{}
}

// Included reports whether the dotted path is selected. A nested path is
// selected only when every ancestor is.
func (d *Directive) Included(path string) bool {
	if head, rest, nested := strings.Cut(path, "."); nested && head != "" {
		if !d.Included(head) {
			return false
		}
		child, err := d.Children(head)
		if err != nil {
			return false
		}
		return child.Included(rest)
	}
	if _, ok := d.excluded[path]; ok {
		return false
	}
	if len(d.included) == 0 {
		return true
	}
	_, ok := d.included[path]
	return ok
}

// Children returns the directive that applies below path. Asking for the
// children of a field that is not included fails with
// ErrInvalidFieldsDirectiveState.
func (d *Directive) Children(path string) (*Directive, error) {
	if head, rest, nested := strings.Cut(path, "."); nested && head != "" {
		if !d.Included(head) {
			return nil, notIncluded(path)
		}
		child, ok := d.children[head]
		if !ok {
			return anything, nil
		}
		return child.Children(rest)
	}
	if !d.Included(path) {
		return nil, notIncluded(path)
	}
	child, ok := d.children[path]
	if !ok {
		return anything, nil
	}
	return child, nil
}

func notIncluded(path string) error {
	return fmt.Errorf("%w: cannot get fields directive for children of %q which is not included",
		domain.ErrInvalidFieldsDirectiveState, path)
}

// IsAnything reports whether d lets every field through at every depth.
func (d *Directive) IsAnything() bool {
	return len(d.included) == 0 && len(d.excluded) == 0 && len(d.children) == 0
}

// String renders d back into directive syntax, sorted.
func (d *Directive) String() string {
	var tokens []string
	d.tokens("", &tokens)
	slices.Sort(tokens)
	return strings.Join(tokens, ",")
}

func (d *Directive) tokens(prefix string, out *[]string) {
	for name := range d.included {
		if child, ok := d.children[name]; ok && len(child.included) > 0 {
			continue
		}
		*out = append(*out, "+"+prefix+name)
	}
	for name := range d.excluded {
		*out = append(*out, "-"+prefix+name)
	}
	for name, child := range d.children {
		child.tokens(prefix+name+".", out)
	}
}
