package calculator

import (
	"fmt"

	"github.com/nkathuria/settleup/internal/money"
)

// Expense carries the minimal expense information needed for balance
// calculations. Shares were fixed when the expense was recorded, so their
// sum is expected to equal Total.
type Expense struct {
	PayerID string
	Total   money.Money
	Shares  []Share
	Active  bool
}

// ComputeBalances folds the expense history into each roster member's net
// position: positive means the group owes them, negative means they owe the
// group. Inactive (soft-deleted) expenses are skipped.
//
// Every member referenced by an expense must be on the roster; an unknown id
// is a data-integrity fault of the caller and fails with ErrUnknownMember
// rather than silently growing the result.
//
// The fold is read-only and deterministic: the same inputs always produce
// the same mapping, and for a self-consistent expense set (every expense's
// shares summing to its total) the balances sum to exactly zero.
func ComputeBalances(roster []string, expenses []Expense) (map[string]money.Money, error) {
	balances := make(map[string]money.Money, len(roster))
	for _, id := range roster {
		balances[id] = money.Zero
	}

	for _, exp := range expenses {
		if !exp.Active {
			continue
		}
		payer, ok := balances[exp.PayerID]
		if !ok {
			return nil, fmt.Errorf("%w: payer %q not on roster", ErrUnknownMember, exp.PayerID)
		}
		balances[exp.PayerID] = payer.Add(exp.Total)

		for _, share := range exp.Shares {
			bal, ok := balances[share.MemberID]
			if !ok {
				return nil, fmt.Errorf("%w: participant %q not on roster", ErrUnknownMember, share.MemberID)
			}
			balances[share.MemberID] = bal.Sub(share.Amount)
		}
	}

	return balances, nil
}
