package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkathuria/settleup/internal/calculator"
	"github.com/nkathuria/settleup/internal/models"
	"github.com/nkathuria/settleup/internal/money"
	"github.com/nkathuria/settleup/internal/storage"
)

// CreateExpense persists a new expense and its shares in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, total_cents, policy, description, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Total.Cents,
		string(expense.Policy), expense.Description, expense.Active, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, share := range expense.Shares {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member_id, amount_cents, position) VALUES (?, ?, ?, ?)",
			expense.ID, share.MemberID, share.Amount.Cents, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.scanExpenseRow(s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, total_cents, policy, description, active, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadShares(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListActiveExpenses retrieves a group's active expenses, newest first.
func (s *SQLiteStore) ListActiveExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, total_cents, policy, description, active, created_at
		 FROM expenses WHERE group_id = ? AND active = 1 ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := s.scanExpenseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadShares(ctx, expense); err != nil {
			return nil, err
		}
	}

	return expenses, nil
}

// DeactivateExpense soft-deletes an expense.
func (s *SQLiteStore) DeactivateExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET active = 0 WHERE id = ?",
		expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivate result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// FindDuplicateExpense reports whether an active expense with the same
// group, payer, total, and participant set already exists.
func (s *SQLiteStore) FindDuplicateExpense(ctx context.Context, expense *models.Expense) (bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM expenses
		 WHERE group_id = ? AND payer_id = ? AND total_cents = ? AND active = 1`,
		expense.GroupID, expense.PayerID, expense.Total.Cents,
	)
	if err != nil {
		return false, fmt.Errorf("failed to query candidate duplicates: %w", err)
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return false, fmt.Errorf("failed to scan candidate duplicate: %w", err)
		}
		candidates = append(candidates, id)
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to iterate candidate duplicates: %w", err)
	}

	want := make(map[string]struct{}, len(expense.Shares))
	for _, share := range expense.Shares {
		want[share.MemberID] = struct{}{}
	}

	for _, id := range candidates {
		candidate := &models.Expense{ID: id}
		if err := s.loadShares(ctx, candidate); err != nil {
			return false, err
		}
		if len(candidate.Shares) != len(want) {
			continue
		}
		same := true
		for _, share := range candidate.Shares {
			if _, ok := want[share.MemberID]; !ok {
				same = false
				break
			}
		}
		if same {
			return true, nil
		}
	}

	return false, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanExpenseRow(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var totalCents int64
	var policy string
	err := row.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &totalCents,
		&policy, &expense.Description, &expense.Active, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}
	expense.Total = money.FromCents(totalCents)
	expense.Policy = calculator.SplitPolicy(policy)
	return expense, nil
}

func (s *SQLiteStore) loadShares(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, amount_cents FROM expense_shares WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	expense.Shares = nil
	for rows.Next() {
		var memberID string
		var cents int64
		if err := rows.Scan(&memberID, &cents); err != nil {
			return fmt.Errorf("failed to scan expense share: %w", err)
		}
		expense.Shares = append(expense.Shares, calculator.Share{
			MemberID: memberID,
			Amount:   money.FromCents(cents),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return nil
}
