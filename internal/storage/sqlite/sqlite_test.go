package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkathuria/settleup/internal/calculator"
	"github.com/nkathuria/settleup/internal/models"
	"github.com/nkathuria/settleup/internal/money"
	"github.com/nkathuria/settleup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testExpense(groupID, payer, total string, participants ...string) *models.Expense {
	amount := money.MustParse(total)
	shares, err := calculator.ComputeShares(amount, participants, calculator.SplitEqual)
	if err != nil {
		panic(err)
	}
	return &models.Expense{
		GroupID: groupID,
		PayerID: payer,
		Total:   amount,
		Policy:  calculator.SplitEqual,
		Shares:  shares,
		Active:  true,
	}
}

func TestGroupRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{
		Name:    "Roommates",
		Members: []string{"carla", "alice", "bob"},
	}
	require.NoError(t, store.CreateGroup(ctx, group))
	assert.NotEmpty(t, group.ID)
	assert.NotZero(t, group.CreatedAt)

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.Name, got.Name)
	// Roster order must survive the round trip; share remainder
	// distribution depends on it.
	assert.Equal(t, []string{"carla", "alice", "bob"}, got.Members)
}

func TestGetGroupNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetGroup(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.Group{Name: "Trip", Members: []string{"a", "b"}, CreatedAt: 100}
	second := &models.Group{Name: "Flat", Members: []string{"c", "d"}, CreatedAt: 200}
	require.NoError(t, store.CreateGroup(ctx, first))
	require.NoError(t, store.CreateGroup(ctx, second))

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Flat", groups[0].Name)
	assert.Equal(t, []string{"c", "d"}, groups[0].Members)
	assert.Equal(t, "Trip", groups[1].Name)
}

func TestExpenseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Dinner", Members: []string{"alice", "bob", "carol"}}
	require.NoError(t, store.CreateGroup(ctx, group))

	expense := testExpense(group.ID, "alice", "100.00", "alice", "bob", "carol")
	expense.Description = "sushi"
	require.NoError(t, store.CreateExpense(ctx, expense))
	assert.NotEmpty(t, expense.ID)

	got, err := store.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.GroupID)
	assert.Equal(t, "alice", got.PayerID)
	assert.Equal(t, money.MustParse("100.00"), got.Total)
	assert.Equal(t, calculator.SplitEqual, got.Policy)
	assert.Equal(t, "sushi", got.Description)
	assert.True(t, got.Active)
	require.Len(t, got.Shares, 3)
	// Share order and exact cent amounts must survive storage.
	assert.Equal(t, calculator.Share{MemberID: "alice", Amount: money.MustParse("33.34")}, got.Shares[0])
	assert.Equal(t, calculator.Share{MemberID: "bob", Amount: money.MustParse("33.33")}, got.Shares[1])
	assert.Equal(t, calculator.Share{MemberID: "carol", Amount: money.MustParse("33.33")}, got.Shares[2])
	assert.NoError(t, got.Validate())
}

func TestListActiveExpensesExcludesDeactivated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Flat", Members: []string{"alice", "bob"}}
	require.NoError(t, store.CreateGroup(ctx, group))

	kept := testExpense(group.ID, "alice", "10.00", "alice", "bob")
	kept.CreatedAt = 100
	dropped := testExpense(group.ID, "bob", "20.00", "alice", "bob")
	dropped.CreatedAt = 200
	require.NoError(t, store.CreateExpense(ctx, kept))
	require.NoError(t, store.CreateExpense(ctx, dropped))

	require.NoError(t, store.DeactivateExpense(ctx, dropped.ID))

	expenses, err := store.ListActiveExpenses(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, kept.ID, expenses[0].ID)

	// The record itself survives, flagged inactive.
	got, err := store.GetExpense(ctx, dropped.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestListActiveExpensesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Flat", Members: []string{"alice", "bob"}}
	require.NoError(t, store.CreateGroup(ctx, group))

	older := testExpense(group.ID, "alice", "10.00", "alice", "bob")
	older.CreatedAt = 100
	newer := testExpense(group.ID, "bob", "20.00", "alice", "bob")
	newer.CreatedAt = 200
	require.NoError(t, store.CreateExpense(ctx, older))
	require.NoError(t, store.CreateExpense(ctx, newer))

	expenses, err := store.ListActiveExpenses(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, newer.ID, expenses[0].ID)
	assert.Equal(t, older.ID, expenses[1].ID)
}

func TestDeactivateExpenseNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeactivateExpense(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindDuplicateExpense(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Flat", Members: []string{"alice", "bob", "carol"}}
	require.NoError(t, store.CreateGroup(ctx, group))

	existing := testExpense(group.ID, "alice", "30.00", "alice", "bob")
	require.NoError(t, store.CreateExpense(ctx, existing))

	t.Run("same payer, total, and participant set", func(t *testing.T) {
		dup := testExpense(group.ID, "alice", "30.00", "bob", "alice")
		found, err := store.FindDuplicateExpense(ctx, dup)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("different total", func(t *testing.T) {
		other := testExpense(group.ID, "alice", "31.00", "alice", "bob")
		found, err := store.FindDuplicateExpense(ctx, other)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("different participant set", func(t *testing.T) {
		other := testExpense(group.ID, "alice", "30.00", "alice", "bob", "carol")
		found, err := store.FindDuplicateExpense(ctx, other)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("deactivated original no longer counts", func(t *testing.T) {
		require.NoError(t, store.DeactivateExpense(ctx, existing.ID))
		dup := testExpense(group.ID, "alice", "30.00", "alice", "bob")
		found, err := store.FindDuplicateExpense(ctx, dup)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
