// Package versioning implements the Draft/Final/Retired lifecycle shared by
// every library item.
package versioning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain"
)

// Status is the lifecycle state of an item version.
type Status string

// Lifecycle states.
const (
	StatusDraft   Status = "Draft"
	StatusFinal   Status = "Final"
	StatusRetired Status = "Retired"
)

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusDraft, StatusFinal, StatusRetired} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", domain.ErrInvalidSchema, s)
}

// EnumValue exposes the status as a plain string to filters.
func (s Status) EnumValue() any { return string(s) }

// String returns the status name.
func (s Status) String() string { return string(s) }

// Action names reported in possible_actions.
const (
	ActionApprove    = "approve"
	ActionDelete     = "delete"
	ActionEdit       = "edit"
	ActionInactivate = "inactivate"
	ActionNewVersion = "new_version"
	ActionReactivate = "reactivate"
)

// Version is a "major.minor" item version.
type Version struct {
	Major int
	Minor int
}

// ParseVersion parses "major.minor".
func ParseVersion(s string) (Version, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return Version{}, fmt.Errorf("%w: version %q must be major.minor", domain.ErrInvalidSchema, s)
	}
	ma, err := strconv.Atoi(major)
	if err != nil || ma < 0 {
		return Version{}, fmt.Errorf("%w: invalid major version in %q", domain.ErrInvalidSchema, s)
	}
	mi, err := strconv.Atoi(minor)
	if err != nil || mi < 0 {
		return Version{}, fmt.Errorf("%w: invalid minor version in %q", domain.ErrInvalidSchema, s)
	}
	return Version{Major: ma, Minor: mi}, nil
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// NextMinor returns the next draft version.
func (v Version) NextMinor() Version { return Version{Major: v.Major, Minor: v.Minor + 1} }

// NextMajor returns the next final version.
func (v Version) NextMajor() Version { return Version{Major: v.Major + 1} }

// Metadata is the versioning state carried by every item snapshot.
type Metadata struct {
	Status            Status
	Version           Version
	StartDate         time.Time
	EndDate           *time.Time
	ChangeDescription string
	AuthorUsername    string
}

// Create returns the metadata of a brand new item: Draft 0.1.
func Create(author, description string, now time.Time) Metadata {
	if description == "" {
		description = "Initial version"
	}
	return Metadata{
		Status:            StatusDraft,
		Version:           Version{Major: 0, Minor: 1},
		StartDate:         now,
		ChangeDescription: description,
		AuthorUsername:    author,
	}
}

// EditDraft records an edit of a draft, bumping the minor version.
func (m Metadata) EditDraft(author, description string, now time.Time) (Metadata, error) {
	if m.Status != StatusDraft {
		return Metadata{}, transitionError(ActionEdit, m.Status)
	}
	if strings.TrimSpace(description) == "" {
		return Metadata{}, fmt.Errorf("%w: change_description is required to edit a draft", domain.ErrInvalidSchema)
	}
	return m.next(StatusDraft, m.Version.NextMinor(), author, description, now), nil
}

// Approve finalizes a draft as the next major version.
func (m Metadata) Approve(author string, now time.Time) (Metadata, error) {
	if m.Status != StatusDraft {
		return Metadata{}, transitionError(ActionApprove, m.Status)
	}
	return m.next(StatusFinal, m.Version.NextMajor(), author, "Approved version", now), nil
}

// NewVersion opens a new draft from a final version.
func (m Metadata) NewVersion(author, description string, now time.Time) (Metadata, error) {
	if m.Status != StatusFinal {
		return Metadata{}, transitionError(ActionNewVersion, m.Status)
	}
	if description == "" {
		description = "New draft created"
	}
	return m.next(StatusDraft, m.Version.NextMinor(), author, description, now), nil
}

// Inactivate retires a final version.
func (m Metadata) Inactivate(author string, now time.Time) (Metadata, error) {
	if m.Status != StatusFinal {
		return Metadata{}, transitionError(ActionInactivate, m.Status)
	}
	return m.next(StatusRetired, m.Version, author, "Inactivated version", now), nil
}

// Reactivate brings a retired version back to final.
func (m Metadata) Reactivate(author string, now time.Time) (Metadata, error) {
	if m.Status != StatusRetired {
		return Metadata{}, transitionError(ActionReactivate, m.Status)
	}
	return m.next(StatusFinal, m.Version, author, "Reactivated version", now), nil
}

// Deletable reports whether the item was never approved.
func (m Metadata) Deletable() bool {
	return m.Status == StatusDraft && m.Version.Major == 0
}

func (m Metadata) next(st Status, v Version, author, description string, now time.Time) Metadata {
	return Metadata{
		Status:            st,
		Version:           v,
		StartDate:         now,
		ChangeDescription: description,
		AuthorUsername:    author,
	}
}

// Close returns m with its end date set, for the snapshot it supersedes.
func (m Metadata) Close(at time.Time) Metadata {
	m.EndDate = &at
	return m
}

func transitionError(action string, st Status) error {
	return fmt.Errorf("%w: cannot %s an item in status %s", domain.ErrInvalidTransition, action, st)
}

// PossibleActions lists the lifecycle actions allowed from m, sorted.
func (m Metadata) PossibleActions() []string {
	switch m.Status {
	case StatusDraft:
		if m.Deletable() {
			return []string{ActionApprove, ActionDelete, ActionEdit}
		}
		return []string{ActionApprove, ActionEdit}
	case StatusFinal:
		return []string{ActionInactivate, ActionNewVersion}
	case StatusRetired:
		return []string{ActionReactivate}
	default:
		return nil
	}
}
