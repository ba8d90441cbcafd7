package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyRoster     = errors.New("group roster cannot be empty")
	ErrEmptyMemberID   = errors.New("empty member id")
	ErrDuplicateMember = errors.New("duplicate member id")
)

// Group is a fixed roster of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Members is the roster of member identifiers, in creation order.
	// The roster is non-empty and contains no duplicates.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Validate checks the roster invariants: at least one member, no blank ids,
// no duplicates.
func (g *Group) Validate() error {
	if len(g.Members) == 0 {
		return ErrEmptyRoster
	}
	seen := make(map[string]struct{}, len(g.Members))
	for _, id := range g.Members {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyMemberID
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateMember, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// HasMember reports whether id is on the roster.
func (g *Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}
