// Package calculator holds the pure computations behind the service: fixing
// each participant's share when an expense is recorded, folding an expense
// history into per-member net balances, and planning the transfers that
// settle those balances. Nothing here touches storage or mutates its inputs.
package calculator

import (
	"errors"
	"fmt"

	"github.com/nkathuria/settleup/internal/money"
)

// SplitPolicy selects how an expense total is divided among participants.
type SplitPolicy string

const (
	// SplitEqual divides the total evenly, remainder cents to the first
	// participants in the given order.
	SplitEqual SplitPolicy = "EQUAL"
	// SplitPercent is a reserved tag for percentage-based splits; it is not
	// implemented and is rejected with ErrUnsupportedSplitPolicy.
	SplitPercent SplitPolicy = "PERCENT"
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrNoParticipants         = errors.New("no participants")
	ErrDuplicateParticipant   = errors.New("duplicate participant")
	ErrUnsupportedSplitPolicy = errors.New("unsupported split policy")
	ErrUnknownMember          = errors.New("unknown member")
	ErrUnbalancedLedger       = errors.New("unbalanced ledger")
)

// Share is one participant's owed portion of an expense.
type Share struct {
	MemberID string
	Amount   money.Money
}

// ComputeShares fixes each participant's owed share of total under the given
// policy. The returned slice is parallel to participants, and the share
// amounts always sum exactly to total.
func ComputeShares(total money.Money, participants []string, policy SplitPolicy) ([]Share, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be positive, got %s", ErrInvalidAmount, total)
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	seen := make(map[string]struct{}, len(participants))
	for _, id := range participants {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, id)
		}
		seen[id] = struct{}{}
	}

	switch policy {
	case SplitEqual:
		parts, err := total.SplitEven(len(participants))
		if err != nil {
			return nil, err
		}
		shares := make([]Share, len(participants))
		for i, id := range participants {
			shares[i] = Share{MemberID: id, Amount: parts[i]}
		}
		return shares, nil
	case SplitPercent:
		// Reserved: would require per-participant percentages summing to 100.
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSplitPolicy, policy)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSplitPolicy, policy)
	}
}
