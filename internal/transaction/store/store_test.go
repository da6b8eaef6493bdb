package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/database/dbtest"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	db := dbtest.New(t)
	dbtest.Seed(t, db,
		`INSERT INTO organizations (id, name, address, created_at, updated_at)
		 VALUES (1, 'Komunalna', 'Saharova 13', '2026-01-01 00:00:00+00:00', '2026-01-01 00:00:00+00:00')`,
		`INSERT INTO tasks (id, title, description, deadline_date, task_status, budget, approved_budget,
			organization_id, created_at, updated_at)
		 VALUES (1, 'Repair road', '', '2026-06-30 00:00:00+00:00', 'OPEN', 100000, 80000, 1,
			'2026-01-01 00:00:00+00:00', '2026-01-01 00:00:00+00:00')`,
		`INSERT INTO tasks (id, title, description, deadline_date, task_status, budget, approved_budget,
			organization_id, created_at, updated_at)
		 VALUES (2, 'Paint bridge', '', '2026-06-30 00:00:00+00:00', 'OPEN', 5000, 5000, 1,
			'2026-01-01 00:00:00+00:00', '2026-01-01 00:00:00+00:00')`,
	)

	return store.New(db, database.SQLite)
}

func entry(taskID, current, delta int64, at time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		TaskID:            taskID,
		CurrentBudget:     current,
		TransactionBudget: delta,
		CreatedAt:         at,
		UpdatedAt:         at,
	}
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	in := entry(1, 75000, -5000, base.Add(250*time.Millisecond))
	require.NoError(t, s.CreateTransaction(ctx, in))
	require.NotZero(t, in.ID)

	got, err := s.GetTransaction(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestStore_Create_UnknownTask(t *testing.T) {
	s := newStore(t)

	err := s.CreateTransaction(context.Background(), entry(99, 1, 1, base))

	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
}

func TestStore_Get_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetTransaction(context.Background(), 404)

	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	in := entry(1, 75000, -5000, base)
	require.NoError(t, s.CreateTransaction(ctx, in))

	upd := &transaction.Transaction{
		ID:                in.ID,
		TaskID:            2,
		CurrentBudget:     70000,
		TransactionBudget: -10000,
		UpdatedAt:         base.Add(time.Hour),
	}
	require.NoError(t, s.UpdateTransaction(ctx, upd))

	got, err := s.GetTransaction(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TaskID, "task reference must not change")
	assert.Equal(t, int64(70000), got.CurrentBudget)
	assert.Equal(t, int64(-10000), got.TransactionBudget)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), got.UpdatedAt)
}

func TestStore_Update_NotFound(t *testing.T) {
	s := newStore(t)

	err := s.UpdateTransaction(context.Background(), &transaction.Transaction{ID: 404, UpdatedAt: base})

	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestStore_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	in := entry(1, 75000, -5000, base)
	require.NoError(t, s.CreateTransaction(ctx, in))

	require.NoError(t, s.DeleteTransaction(ctx, in.ID))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, in.ID), transaction.ErrNotFound)
}

func TestStore_ListByTask(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := entry(1, 75000, -5000, base)
	other := entry(2, 4000, -1000, base.Add(time.Second))
	second := entry(1, 70000, -5000, base.Add(2*time.Second))

	for _, tx := range []*transaction.Transaction{first, other, second} {
		require.NoError(t, s.CreateTransaction(ctx, tx))
	}

	got, err := s.ListByTask(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	empty, err := s.ListByTask(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStore_ListByTaskCreatedBetween(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for i := range 4 {
		require.NoError(t, s.CreateTransaction(ctx, entry(1, int64(80000-i*1000), -1000, base.Add(time.Duration(i)*24*time.Hour))))
	}

	got, err := s.ListByTaskCreatedBetween(ctx, 1, base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(79000), got[0].CurrentBudget)
	assert.Equal(t, int64(78000), got[1].CurrentBudget)
}
