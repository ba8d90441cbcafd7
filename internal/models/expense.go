package models

import (
	"errors"
	"fmt"

	"github.com/nkathuria/settleup/internal/calculator"
	"github.com/nkathuria/settleup/internal/money"
)

var (
	ErrMissingPayer   = errors.New("expense payer is required")
	ErrSharesMismatch = errors.New("expense shares do not sum to total")
	ErrNoShares       = errors.New("expense has no shares")
)

// Expense is an immutable record of one payment. The payer covered Total on
// behalf of the share holders; each share was fixed at creation time by the
// split calculator so that the amounts sum exactly to Total.
//
// The payer must be on the group's roster but does not have to hold a share:
// someone can pay for a dinner they did not eat. (Whether the product wants
// to force self-inclusion is a policy choice; the data model does not.)
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid the total.
	PayerID string

	// Total is the full amount paid, always positive.
	Total money.Money

	// Policy is the split rule the shares were derived with.
	Policy calculator.SplitPolicy

	// Shares lists each participant's owed portion, in the order the
	// participants were given when the expense was recorded.
	Shares []calculator.Share

	// Description is an optional free-text note.
	Description string

	// Active is false once the expense has been soft-deleted; inactive
	// expenses are excluded from balance computations.
	Active bool

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Validate checks the record's internal consistency. A failure here after
// creation indicates corrupted data, not bad client input.
func (e *Expense) Validate() error {
	if e.PayerID == "" {
		return ErrMissingPayer
	}
	if !e.Total.IsPositive() {
		return fmt.Errorf("%w: total %s", calculator.ErrInvalidAmount, e.Total)
	}
	if len(e.Shares) == 0 {
		return ErrNoShares
	}
	sum := money.Zero
	seen := make(map[string]struct{}, len(e.Shares))
	for _, s := range e.Shares {
		if _, ok := seen[s.MemberID]; ok {
			return fmt.Errorf("%w: %q", calculator.ErrDuplicateParticipant, s.MemberID)
		}
		seen[s.MemberID] = struct{}{}
		sum = sum.Add(s.Amount)
	}
	if sum != e.Total {
		return fmt.Errorf("%w: shares sum to %s, total is %s", ErrSharesMismatch, sum, e.Total)
	}
	return nil
}

// Participants returns the share holders' ids in share order.
func (e *Expense) Participants() []string {
	ids := make([]string, len(e.Shares))
	for i, s := range e.Shares {
		ids[i] = s.MemberID
	}
	return ids
}
