package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nkathuria/settleup/internal/calculator"
	"github.com/nkathuria/settleup/internal/events"
	"github.com/nkathuria/settleup/internal/models"
	"github.com/nkathuria/settleup/internal/money"
	"github.com/nkathuria/settleup/internal/storage"
)

var (
	// ErrDuplicateExpense is returned when an identical active expense
	// (same group, payer, total, participant set) already exists.
	ErrDuplicateExpense = errors.New("duplicate expense")
	// ErrWrongGroup is returned when an expense id does not belong to the
	// group named in the request.
	ErrWrongGroup = errors.New("expense does not belong to group")
)

// MemberBalance is one member's net position in display order.
type MemberBalance struct {
	MemberID string
	Net      money.Money
}

// ExpenseService records expenses and answers balance and settlement
// queries. Balances and settlement plans are recomputed from the active
// expense history on every call; they are never cached or persisted, so a
// new expense invalidates nothing.
type ExpenseService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend and event publisher.
func NewExpenseService(store storage.Store, publisher events.Publisher) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher}
}

// CreateExpense validates, splits, and persists a new expense. The
// participants' shares are fixed here, at creation time, and never
// recomputed. The payer must be on the group's roster but does not have to
// be a participant.
func (s *ExpenseService) CreateExpense(ctx context.Context, groupID, payerID string, total money.Money, participants []string, policy calculator.SplitPolicy, description string) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.HasMember(payerID) {
		return nil, fmt.Errorf("%w: payer %q not on roster", calculator.ErrUnknownMember, payerID)
	}
	for _, id := range participants {
		if !group.HasMember(id) {
			return nil, fmt.Errorf("%w: participant %q not on roster", calculator.ErrUnknownMember, id)
		}
	}

	shares, err := calculator.ComputeShares(total, participants, policy)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     groupID,
		PayerID:     payerID,
		Total:       total,
		Policy:      policy,
		Shares:      shares,
		Description: description,
		Active:      true,
	}

	dup, err := s.store.FindDuplicateExpense(ctx, expense)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: payer %q already recorded %s for the same participants", ErrDuplicateExpense, payerID, total)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"group_id", groupID,
		"payer_id", payerID,
		"total", total.String(),
		"participants_count", len(participants),
	)

	// Best effort: a lost event never fails the request.
	if err := s.publisher.ExpenseCreated(ctx, events.NewExpenseCreatedMessage(expense)); err != nil {
		slog.Warn("Failed to publish expense event", "expense_id", expense.ID, "error", err)
	}

	return expense, nil
}

// DeleteExpense soft-deletes an expense after checking it belongs to the
// given group. Balances recomputed afterwards no longer include it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, groupID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.GroupID != groupID {
		return fmt.Errorf("%w: expense %s", ErrWrongGroup, expenseID)
	}

	if err := s.store.DeactivateExpense(ctx, expenseID); err != nil {
		return err
	}
	slog.Info("Expense deactivated", "expense_id", expenseID, "group_id", groupID)
	return nil
}

// GetBalances recomputes every roster member's net position from the
// group's active expense history. Members are returned in roster order.
func (s *ExpenseService) GetBalances(ctx context.Context, groupID string) ([]MemberBalance, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.activeExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := calculator.ComputeBalances(group.Members, expenses)
	if err != nil {
		return nil, err
	}

	result := make([]MemberBalance, len(group.Members))
	for i, id := range group.Members {
		result[i] = MemberBalance{MemberID: id, Net: balances[id]}
	}
	return result, nil
}

// GetSettlements recomputes balances and derives the minimal transfer plan
// that would settle them. An unbalanced ledger here means stored shares no
// longer sum to their expense totals; that is corrupted data, not client
// input, and is logged loudly before being surfaced.
func (s *ExpenseService) GetSettlements(ctx context.Context, groupID string) ([]calculator.Transfer, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.activeExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := calculator.ComputeBalances(group.Members, expenses)
	if err != nil {
		return nil, err
	}

	plan, err := calculator.PlanSettlements(balances)
	if err != nil {
		if errors.Is(err, calculator.ErrUnbalancedLedger) {
			slog.Error("Data integrity alarm: group ledger does not balance",
				"group_id", groupID,
				"error", err,
			)
		}
		return nil, err
	}
	return plan, nil
}

// activeExpenses loads a group's active expenses in calculator form.
func (s *ExpenseService) activeExpenses(ctx context.Context, groupID string) ([]calculator.Expense, error) {
	records, err := s.store.ListActiveExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses := make([]calculator.Expense, len(records))
	for i, rec := range records {
		expenses[i] = calculator.Expense{
			PayerID: rec.PayerID,
			Total:   rec.Total,
			Shares:  rec.Shares,
			Active:  rec.Active,
		}
	}
	return expenses, nil
}
