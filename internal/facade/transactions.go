package facade

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/export"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
)

// CreateTransaction adds a ledger entry. A missing task is a validation
// failure reported before authorization, since no organization can be
// resolved for it.
func (f *Facade) CreateTransaction(ctx context.Context, caller *access.Caller, params transaction.CreateParams) (*transaction.Transaction, error) {
	t, err := f.referencedTask(ctx, params.TaskID)
	if err != nil {
		return nil, err
	}

	if err := f.resolver.Require(caller, access.TransactionCreate, t.OrganizationID); err != nil {
		return nil, err
	}

	return f.ledger.Create(ctx, params)
}

// AppendTransaction records delta after the task's current closing balance.
func (f *Facade) AppendTransaction(ctx context.Context, caller *access.Caller, taskID, delta int64) (*transaction.Transaction, error) {
	t, err := f.referencedTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := f.resolver.Require(caller, access.TransactionCreate, t.OrganizationID); err != nil {
		return nil, err
	}

	return f.ledger.Append(ctx, taskID, delta)
}

func (f *Facade) GetTransaction(ctx context.Context, caller *access.Caller, id int64) (*transaction.Transaction, error) {
	tx, err := f.authorizeEntry(ctx, caller, access.TransactionRead, id)
	if err != nil {
		return nil, err
	}

	return tx, nil
}

// UpdateTransaction rewrites the entry named by id; params.ID is ignored.
func (f *Facade) UpdateTransaction(ctx context.Context, caller *access.Caller, id int64, params transaction.UpdateParams) (*transaction.Transaction, error) {
	if _, err := f.authorizeEntry(ctx, caller, access.TransactionUpdate, id); err != nil {
		return nil, err
	}

	params.ID = id

	return f.ledger.Update(ctx, params)
}

func (f *Facade) DeleteTransaction(ctx context.Context, caller *access.Caller, id int64) error {
	if _, err := f.authorizeEntry(ctx, caller, access.TransactionDelete, id); err != nil {
		return err
	}

	return f.ledger.Delete(ctx, id)
}

func (f *Facade) ListTransactionsByTask(ctx context.Context, caller *access.Caller, taskID int64) ([]*transaction.Transaction, error) {
	if _, err := f.authorizeTask(ctx, caller, access.TransactionReadByTask, taskID); err != nil {
		return nil, err
	}

	return f.ledger.ListByTask(ctx, taskID)
}

// ListTransactionsByDate returns the task's entries created within
// [from, to]; both bounds use TimeLayout.
func (f *Facade) ListTransactionsByDate(ctx context.Context, caller *access.Caller, taskID int64, from, to string) ([]*transaction.Transaction, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	if _, err := f.authorizeTask(ctx, caller, access.TransactionReadByTask, taskID); err != nil {
		return nil, err
	}

	return f.ledger.ListByTaskCreatedBetween(ctx, taskID, start, end)
}

func (f *Facade) AuditLedger(ctx context.Context, caller *access.Caller, taskID int64) (*transaction.Statement, error) {
	if _, err := f.authorizeTask(ctx, caller, access.TransactionReadByTask, taskID); err != nil {
		return nil, err
	}

	return f.ledger.Audit(ctx, taskID)
}

// ImportTransactions appends every movement in a CSV file to the task's
// ledger, in file order. The file is parsed completely before anything is
// written; a store failure part way leaves the earlier entries in place.
func (f *Facade) ImportTransactions(ctx context.Context, caller *access.Caller, taskID int64, r io.Reader) ([]*transaction.Transaction, error) {
	t, err := f.referencedTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := f.resolver.Require(caller, access.TransactionCreate, t.OrganizationID); err != nil {
		return nil, err
	}

	entries, err := f.parser.Parse(r)
	if err != nil {
		return nil, apperr.Validation("transaction.import", "%v", err)
	}

	deltas := make([]int64, len(entries))
	for i, e := range entries {
		deltas[i] = e.Delta
	}

	return f.ledger.AppendMany(ctx, taskID, deltas)
}

// ExportLedger writes the task's reconciled ledger to w as CSV and returns
// the suggested file name.
func (f *Facade) ExportLedger(ctx context.Context, caller *access.Caller, taskID int64, w io.Writer) (string, error) {
	st, err := f.AuditLedger(ctx, caller, taskID)
	if err != nil {
		return "", err
	}

	if err := export.WriteStatement(w, st); err != nil {
		return "", apperr.Storage("transaction.export", err)
	}

	return export.Filename(taskID, task.Now()), nil
}

// referencedTask resolves the task an entry is written against. Missing or
// unknown tasks are validation failures.
func (f *Facade) referencedTask(ctx context.Context, taskID int64) (*task.Task, error) {
	if taskID <= 0 {
		return nil, apperr.Validation("transaction.create", "task reference is required")
	}

	t, err := f.taskOwner(ctx, taskID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.Validation("transaction.create", "task %d does not exist", taskID)
	}

	return t, err
}

// authorizeEntry resolves entry -> task -> organization and checks op.
func (f *Facade) authorizeEntry(ctx context.Context, caller *access.Caller, op access.Operation, id int64) (*transaction.Transaction, error) {
	tx, err := f.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := f.authorizeTask(ctx, caller, op, tx.TaskID); err != nil {
		return nil, err
	}

	return tx, nil
}

func (f *Facade) authorizeTask(ctx context.Context, caller *access.Caller, op access.Operation, taskID int64) (*task.Task, error) {
	t, err := f.taskOwner(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := f.resolver.Require(caller, op, t.OrganizationID); err != nil {
		return nil, err
	}

	return t, nil
}
