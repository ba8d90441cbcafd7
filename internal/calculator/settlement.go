package calculator

import (
	"fmt"

	"github.com/nkathuria/settleup/internal/money"
)

// Transfer is one point-to-point payment in a settlement plan.
type Transfer struct {
	From   string
	To     string
	Amount money.Money
}

// party is a creditor's or debtor's remaining position while planning.
// remaining is kept positive for both sides.
type party struct {
	id        string
	remaining money.Money
}

// PlanSettlements produces an ordered list of transfers that drives every
// balance to zero. It repeatedly matches the creditor with the largest
// remaining surplus against the debtor with the largest remaining deficit
// and settles the smaller of the two, so the plan never exceeds
// creditors+debtors-1 transfers. Ties are broken by lexicographic member id
// to keep the output reproducible.
//
// Balances must sum to exactly zero; a non-zero sum means some upstream
// expense's shares did not add up to its total, and fails with
// ErrUnbalancedLedger instead of producing a partial plan.
func PlanSettlements(balances map[string]money.Money) ([]Transfer, error) {
	sum := money.Zero
	var creditors, debtors []party
	for id, bal := range balances {
		sum = sum.Add(bal)
		switch {
		case bal.IsPositive():
			creditors = append(creditors, party{id: id, remaining: bal})
		case bal.IsNegative():
			debtors = append(debtors, party{id: id, remaining: bal.Neg()})
		}
	}
	if !sum.IsZero() {
		return nil, fmt.Errorf("%w: balances sum to %s, want 0.00", ErrUnbalancedLedger, sum)
	}

	var plan []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)
		creditor := &creditors[ci]
		debtor := &debtors[di]

		amount := money.Min(creditor.remaining, debtor.remaining)
		plan = append(plan, Transfer{From: debtor.id, To: creditor.id, Amount: amount})

		creditor.remaining = creditor.remaining.Sub(amount)
		debtor.remaining = debtor.remaining.Sub(amount)
		if creditor.remaining.IsZero() {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtor.remaining.IsZero() {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	return plan, nil
}

// largest returns the index of the party with the biggest remaining amount,
// preferring the lexicographically smaller id on equal amounts.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		switch parties[i].remaining.Cmp(parties[best].remaining) {
		case 1:
			best = i
		case 0:
			if parties[i].id < parties[best].id {
				best = i
			}
		}
	}
	return best
}
