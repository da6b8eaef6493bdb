package facade_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/database/dbtest"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
	orgstore "github.com/MrJamesThe3rd/smartcity/internal/organization/store"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
	taskstore "github.com/MrJamesThe3rd/smartcity/internal/task/store"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
	txstore "github.com/MrJamesThe3rd/smartcity/internal/transaction/store"
)

const (
	adminID      int64 = 1
	supervisorID int64 = 2
	userID       int64 = 3
	outsiderID   int64 = 4
)

type fixture struct {
	f          *facade.Facade
	orgID      int64
	admin      *access.Caller
	supervisor *access.Caller
	user       *access.Caller
	outsider   *access.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	db := dbtest.New(t)

	tasks := task.NewService(taskstore.New(db, database.SQLite))
	orgs := organization.NewService(orgstore.New(db, database.SQLite))
	ledger := transaction.NewService(txstore.New(db, database.SQLite), tasks)
	f := facade.New(tasks, ledger, orgs, access.NewResolver(access.DefaultPolicy()))

	fx := &fixture{f: f}

	admin, err := f.Caller(ctx, adminID)
	require.NoError(t, err)

	org, err := f.CreateOrganization(ctx, admin, organization.CreateParams{Name: "Komunalna", Address: "Saharova 13"})
	require.NoError(t, err)
	fx.orgID = org.ID

	fx.admin = caller(t, f, adminID)
	require.NoError(t, f.AddMember(ctx, fx.admin, org.ID, supervisorID, access.RoleSupervisor))
	require.NoError(t, f.AddMember(ctx, fx.admin, org.ID, userID, access.RoleUser))

	fx.supervisor = caller(t, f, supervisorID)
	fx.user = caller(t, f, userID)
	fx.outsider = caller(t, f, outsiderID)

	return fx
}

func caller(t *testing.T, f *facade.Facade, id int64) *access.Caller {
	t.Helper()

	c, err := f.Caller(context.Background(), id)
	require.NoError(t, err)

	return c
}

func (fx *fixture) newTask(t *testing.T, budget, approved int64) *task.Task {
	t.Helper()

	tk, err := fx.f.CreateTask(context.Background(), fx.supervisor, task.CreateParams{
		Title:          "Repair road",
		Description:    "Pothole on the main street",
		Deadline:       time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Budget:         budget,
		ApprovedBudget: approved,
		OrganizationID: fx.orgID,
	})
	require.NoError(t, err)

	return tk
}

func TestParseTime(t *testing.T) {
	got, err := facade.ParseTime("2026-03-01T09:30:00.250")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 250e6, time.UTC), got)

	for _, bad := range []string{"", "2026-03-01", "2026-03-01T09:30:00", "2026-03-01 09:30:00.250", "01-03-2026T09:30:00.250"} {
		_, err := facade.ParseTime(bad)
		assert.ErrorIs(t, err, apperr.ErrValidation, bad)
	}
}

func TestTransaction_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	in := transaction.CreateParams{TaskID: tk.ID, CurrentBudget: 75000, TransactionBudget: -5000}
	created, err := fx.f.CreateTransaction(ctx, fx.supervisor, in)
	require.NoError(t, err)

	got, err := fx.f.GetTransaction(ctx, fx.user, created.ID)
	require.NoError(t, err)

	assert.Equal(t, in.TaskID, got.TaskID)
	assert.Equal(t, in.CurrentBudget, got.CurrentBudget)
	assert.Equal(t, in.TransactionBudget, got.TransactionBudget)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestTransaction_RunningBalanceScenario(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	first, err := fx.f.AppendTransaction(ctx, fx.supervisor, tk.ID, -5000)
	require.NoError(t, err)
	assert.Equal(t, int64(75000), first.CurrentBudget)

	second, err := fx.f.AppendTransaction(ctx, fx.supervisor, tk.ID, -5000)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), second.CurrentBudget)

	ledger, err := fx.f.ListTransactionsByTask(ctx, fx.user, tk.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, []int64{75000, 70000}, []int64{ledger[0].CurrentBudget, ledger[1].CurrentBudget})

	st, err := fx.f.AuditLedger(ctx, fx.user, tk.ID)
	require.NoError(t, err)
	assert.True(t, st.Reconciliation.Consistent())
	assert.Equal(t, int64(70000), st.Reconciliation.ClosingBalance)
}

func TestTransaction_CreateAgainstMissingTask(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	_, err := fx.f.CreateTransaction(ctx, fx.admin, transaction.CreateParams{TaskID: tk.ID + 100, CurrentBudget: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = fx.f.CreateTransaction(ctx, fx.admin, transaction.CreateParams{CurrentBudget: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	ledger, err := fx.f.ListTransactionsByTask(ctx, fx.admin, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestTransaction_UpdateUsesPathID(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	a, err := fx.f.AppendTransaction(ctx, fx.supervisor, tk.ID, -5000)
	require.NoError(t, err)
	b, err := fx.f.AppendTransaction(ctx, fx.supervisor, tk.ID, -5000)
	require.NoError(t, err)

	got, err := fx.f.UpdateTransaction(ctx, fx.supervisor, a.ID, transaction.UpdateParams{
		ID: b.ID, CurrentBudget: 74000, TransactionBudget: -6000,
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, tk.ID, got.TaskID)
	assert.Equal(t, int64(74000), got.CurrentBudget)

	untouched, err := fx.f.GetTransaction(ctx, fx.user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), untouched.CurrentBudget)

	st, err := fx.f.AuditLedger(ctx, fx.user, tk.ID)
	require.NoError(t, err)
	require.Len(t, st.Reconciliation.Drifts, 1, "later balances are not recomputed")
	assert.Equal(t, b.ID, st.Reconciliation.Drifts[0].TransactionID)
	assert.Equal(t, int64(69000), st.Reconciliation.Drifts[0].Expected)
}

func TestTransaction_MissingIDs(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	_, err := fx.f.UpdateTransaction(ctx, fx.admin, 404, transaction.UpdateParams{CurrentBudget: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = fx.f.GetTransaction(ctx, fx.admin, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	tk := fx.newTask(t, 100000, 80000)
	tx, err := fx.f.AppendTransaction(ctx, fx.admin, tk.ID, -1)
	require.NoError(t, err)

	require.NoError(t, fx.f.DeleteTransaction(ctx, fx.admin, tx.ID))
	assert.ErrorIs(t, fx.f.DeleteTransaction(ctx, fx.admin, tx.ID), apperr.ErrNotFound)
}

func TestTransaction_ListByTaskIsolation(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.newTask(t, 100000, 80000)
	b := fx.newTask(t, 5000, 5000)

	var want []int64

	for i := range 3 {
		tx, err := fx.f.AppendTransaction(ctx, fx.supervisor, a.ID, int64(-100*(i+1)))
		require.NoError(t, err)

		want = append(want, tx.ID)

		_, err = fx.f.AppendTransaction(ctx, fx.supervisor, b.ID, -1)
		require.NoError(t, err)
	}

	got, err := fx.f.ListTransactionsByTask(ctx, fx.user, a.ID)
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, tx := range got {
		assert.Equal(t, a.ID, tx.TaskID)
		ids = append(ids, tx.ID)
	}

	assert.Equal(t, want, ids)
}

func TestTransaction_ListByDate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	_, err := fx.f.AppendTransaction(ctx, fx.supervisor, tk.ID, -5000)
	require.NoError(t, err)

	now := time.Now().UTC()
	from := now.Add(-time.Hour).Format(facade.TimeLayout)
	to := now.Add(time.Hour).Format(facade.TimeLayout)

	got, err := fx.f.ListTransactionsByDate(ctx, fx.user, tk.ID, from, to)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	inverted, err := fx.f.ListTransactionsByDate(ctx, fx.user, tk.ID, to, from)
	require.NoError(t, err)
	assert.Empty(t, inverted)

	_, err = fx.f.ListTransactionsByDate(ctx, fx.user, tk.ID, "yesterday", to)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTransaction_Authorization(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	tx, err := fx.f.AppendTransaction(ctx, fx.supervisor, tk.ID, -5000)
	require.NoError(t, err)

	_, err = fx.f.CreateTransaction(ctx, fx.user, transaction.CreateParams{TaskID: tk.ID, CurrentBudget: 1})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = fx.f.GetTransaction(ctx, fx.outsider, tx.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = fx.f.ListTransactionsByTask(ctx, fx.outsider, tk.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = fx.f.UpdateTransaction(ctx, fx.user, tx.ID, transaction.UpdateParams{CurrentBudget: 0})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	assert.ErrorIs(t, fx.f.DeleteTransaction(ctx, fx.supervisor, tx.ID), apperr.ErrUnauthorized)

	got, err := fx.f.GetTransaction(ctx, fx.admin, tx.ID)
	require.NoError(t, err, "denied calls leave the entry in place")
	assert.Equal(t, tx.CurrentBudget, got.CurrentBudget)
}

func TestTask_DeleteUnauthorizedKeepsTask(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	err := fx.f.DeleteTask(ctx, fx.user, tk.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	got, err := fx.f.GetTask(ctx, fx.user, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
}

func TestTask_DeleteRefusedWithLedger(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	tx, err := fx.f.AppendTransaction(ctx, fx.supervisor, tk.ID, -5000)
	require.NoError(t, err)

	assert.ErrorIs(t, fx.f.DeleteTask(ctx, fx.admin, tk.ID), apperr.ErrValidation)

	require.NoError(t, fx.f.DeleteTransaction(ctx, fx.admin, tx.ID))
	require.NoError(t, fx.f.DeleteTask(ctx, fx.admin, tk.ID))
	assert.ErrorIs(t, fx.f.DeleteTask(ctx, fx.admin, tk.ID), apperr.ErrNotFound)
}

func TestTask_UpdateAndMissing(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	changed := *tk
	changed.ID = 999
	changed.Status = task.StatusInProgress
	changed.ApprovedBudget = 90000

	got, err := fx.f.UpdateTask(ctx, fx.supervisor, tk.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, int64(90000), got.ApprovedBudget)
	assert.Equal(t, tk.CreatedAt, got.CreatedAt)

	_, err = fx.f.UpdateTask(ctx, fx.admin, 404, changed)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTask_Lists(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	other, err := fx.f.CreateOrganization(ctx, fx.outsider, organization.CreateParams{Name: "Vodokanal"})
	require.NoError(t, err)

	outsider := caller(t, fx.f, outsiderID)
	_, err = fx.f.CreateTask(ctx, outsider, task.CreateParams{
		Title: "Pipe", Deadline: time.Now(), Budget: 10, OrganizationID: other.ID,
	})
	require.NoError(t, err)

	all, err := fx.f.ListTasks(ctx, fx.user)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, tk.ID, all[0].ID)

	mine, err := fx.f.ListTasksByUser(ctx, fx.user, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = fx.f.ListTasksByUser(ctx, fx.user, adminID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = fx.f.ListTasksByOrganization(ctx, fx.user, other.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	now := time.Now().UTC()
	byDate, err := fx.f.ListTasksByDate(ctx, fx.user, fx.orgID,
		now.Add(-time.Hour).Format(facade.TimeLayout), now.Add(time.Hour).Format(facade.TimeLayout))
	require.NoError(t, err)
	assert.Len(t, byDate, 1)
}

func TestImportAndExport(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	tk := fx.newTask(t, 100000, 80000)

	csv := "Data mov.;Descrição;Montante\n01-03-2026;Asfalto;-50,00\n02-03-2026;Sinais;-20,00\n"

	_, err := fx.f.ImportTransactions(ctx, fx.user, tk.ID, strings.NewReader(csv))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	created, err := fx.f.ImportTransactions(ctx, fx.supervisor, tk.ID, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(75000), created[0].CurrentBudget)
	assert.Equal(t, int64(73000), created[1].CurrentBudget)

	_, err = fx.f.ImportTransactions(ctx, fx.supervisor, tk.ID, strings.NewReader("nothing,here\n"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	var buf bytes.Buffer

	name, err := fx.f.ExportLedger(ctx, fx.user, tk.ID, &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "task-"))
	assert.Contains(t, buf.String(), ",-5000,75000,75000,\n")
	assert.Contains(t, buf.String(), ",-2000,73000,73000,\n")
}

func TestOrganization_Members(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	org, err := fx.f.GetOrganization(ctx, fx.user, fx.orgID)
	require.NoError(t, err)
	assert.Len(t, org.Members, 3)

	err = fx.f.AddMember(ctx, fx.supervisor, fx.orgID, outsiderID, access.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	err = fx.f.RemoveMember(ctx, fx.admin, fx.orgID, adminID, access.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, fx.f.RemoveMember(ctx, fx.admin, fx.orgID, userID, access.RoleUser))

	_, err = fx.f.GetOrganization(ctx, caller(t, fx.f, userID), fx.orgID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = fx.f.GetOrganization(ctx, fx.admin, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	visible, err := fx.f.ListOrganizations(ctx, fx.outsider)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestOrganization_DeleteRefusedWithTasks(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.newTask(t, 10, 0)

	assert.ErrorIs(t, fx.f.DeleteOrganization(ctx, fx.admin, fx.orgID), apperr.ErrValidation)

	updated, err := fx.f.UpdateOrganization(ctx, fx.admin, fx.orgID, organization.UpdateParams{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}
