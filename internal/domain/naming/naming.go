// Package naming generates identifiers and default names for library items.
package naming

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// DefaultSeparator joins generated initials and the timestamp.
const DefaultSeparator = "."

// InputOrNew returns input when it is set. Otherwise it builds
// prefix + initials(outputField) + sep + unix seconds of now.
//
// Initials are the first letter of every word; a single word contributes
// every second character instead, upper-cased.
func InputOrNew(input, prefix, outputField, sep string, now time.Time) string {
	if input != "" {
		return input
	}
	return fmt.Sprintf("%s%s%s%d", prefix, Initials(outputField), sep, now.Unix())
}

// Initials abbreviates s as described in InputOrNew.
func Initials(s string) string {
	words := strings.FieldsFunc(s, unicode.IsSpace)
	var b strings.Builder
	if len(words) > 1 {
		for _, w := range words {
			r := []rune(w)
			b.WriteRune(r[0])
		}
		return b.String()
	}
	for i, r := range []rune(s) {
		if i%2 == 0 {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// Counter hands out monotonically increasing numbers per sequence name.
type Counter interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Sequence formats uids like "CTTerm_000001" from a Counter.
type Sequence struct {
	counter Counter
	prefix  string
}

// NewSequence creates a uid sequence named after prefix.
func NewSequence(counter Counter, prefix string) *Sequence {
	return &Sequence{counter: counter, prefix: prefix}
}

// Next returns the next uid.
func (s *Sequence) Next(ctx context.Context) (string, error) {
	n, err := s.counter.Next(ctx, s.prefix)
	if err != nil {
		return "", fmt.Errorf("next %s uid: %w", s.prefix, err)
	}
	return Format(s.prefix, n), nil
}

// Format renders a uid from prefix and sequence number.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s_%06d", prefix, n)
}
