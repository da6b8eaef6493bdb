package transaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	ListByTask(ctx context.Context, taskID int64) ([]*Transaction, error)
	ListByTaskCreatedBetween(ctx context.Context, taskID int64, from, to time.Time) ([]*Transaction, error)
}

// TaskResolver looks tasks up in the task registry.
type TaskResolver interface {
	Get(ctx context.Context, id int64) (*task.Task, error)
}

// Service is the budget ledger engine. It checks structure on create only;
// updates and deletes never re-derive the running balance of later entries.
// Use Audit to find entries that drifted.
type Service struct {
	repo      Repository
	tasks     TaskResolver
	validator *Validator
}

func NewService(repo Repository, tasks TaskResolver) *Service {
	return &Service{
		repo:      repo,
		tasks:     tasks,
		validator: NewValidator(tasks),
	}
}

type CreateParams struct {
	TaskID            int64
	CurrentBudget     int64
	TransactionBudget int64
}

type UpdateParams struct {
	ID                int64
	CurrentBudget     int64
	TransactionBudget int64
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if _, err := s.validator.ValidateReferencedTask(ctx, params.TaskID); err != nil {
		return nil, err
	}

	return s.insert(ctx, params)
}

func (s *Service) insert(ctx context.Context, params CreateParams) (*Transaction, error) {
	now := task.Now()
	tx := &Transaction{
		TaskID:            params.TaskID,
		CurrentBudget:     params.CurrentBudget,
		TransactionBudget: params.TransactionBudget,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, storageFault("transaction.create", tx, err)
	}

	if tx.ID == 0 {
		return nil, storageFault("transaction.create", tx, errors.New("insert returned no id"))
	}

	return tx, nil
}

// Append records delta against the task's closing balance: the new entry's
// CurrentBudget is the last entry's CurrentBudget (or the approved budget
// for an empty ledger) plus delta.
func (s *Service) Append(ctx context.Context, taskID, delta int64) (*Transaction, error) {
	txs, err := s.AppendMany(ctx, taskID, []int64{delta})
	if err != nil {
		return nil, err
	}

	return txs[0], nil
}

// AppendMany appends deltas in order, carrying the running balance forward
// from a single read of the ledger. It stops at the first store failure;
// entries written before it stay.
func (s *Service) AppendMany(ctx context.Context, taskID int64, deltas []int64) ([]*Transaction, error) {
	t, err := s.validator.ValidateReferencedTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	txs, err := s.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	balance := Reconcile(t.ApprovedBudget, txs).ClosingBalance
	created := make([]*Transaction, 0, len(deltas))

	for _, delta := range deltas {
		balance += delta

		tx, err := s.insert(ctx, CreateParams{
			TaskID:            taskID,
			CurrentBudget:     balance,
			TransactionBudget: delta,
		})
		if err != nil {
			return nil, err
		}

		created = append(created, tx)
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, classify("transaction.get", id, err)
	}

	return tx, nil
}

// Update rewrites the budget fields of an entry. The task reference is
// never changed. The returned entry is the stored row.
func (s *Service) Update(ctx context.Context, params UpdateParams) (*Transaction, error) {
	tx := &Transaction{
		ID:                params.ID,
		CurrentBudget:     params.CurrentBudget,
		TransactionBudget: params.TransactionBudget,
		UpdatedAt:         task.Now(),
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, classify("transaction.update", params.ID, err)
	}

	stored, err := s.repo.GetTransaction(ctx, params.ID)
	if err != nil {
		return nil, classify("transaction.update", params.ID, err)
	}

	return stored, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return classify("transaction.delete", id, err)
	}

	return nil
}

// ListByTask returns the task's ledger, oldest entry first. An unknown task
// has an empty ledger.
func (s *Service) ListByTask(ctx context.Context, taskID int64) ([]*Transaction, error) {
	txs, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		slog.Error("listing transactions by task", "op", "transaction.list_by_task", "task_id", taskID, "error", err)
		return nil, apperr.Storage("transaction.list_by_task", err)
	}

	return txs, nil
}

// ListByTaskCreatedBetween returns the entries created within [from, to],
// oldest first. An inverted range yields no entries.
func (s *Service) ListByTaskCreatedBetween(ctx context.Context, taskID int64, from, to time.Time) ([]*Transaction, error) {
	if from.After(to) {
		return []*Transaction{}, nil
	}

	txs, err := s.repo.ListByTaskCreatedBetween(ctx, taskID, from.UTC(), to.UTC())
	if err != nil {
		slog.Error("listing transactions by date", "op", "transaction.list_by_date",
			"task_id", taskID, "from", from, "to", to, "error", err)

		return nil, apperr.Storage("transaction.list_by_date", err)
	}

	return txs, nil
}

// Statement is a task together with its ledger and reconciliation.
type Statement struct {
	Task           *task.Task
	Transactions   []*Transaction
	Reconciliation Reconciliation
}

// Audit reconciles the ledger of a task against its approved budget. It
// reports drift but never rewrites entries.
func (s *Service) Audit(ctx context.Context, taskID int64) (*Statement, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	txs, err := s.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	rec := Reconcile(t.ApprovedBudget, txs)
	if !rec.Consistent() {
		slog.Warn("ledger drift detected", "task_id", taskID, "drifts", len(rec.Drifts))
	}

	return &Statement{Task: t, Transactions: txs, Reconciliation: rec}, nil
}

func classify(op string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		slog.Error("transaction not found", "op", op, "transaction_id", id)
		return apperr.NotFound(op, "transaction %d not found", id)
	}

	slog.Error("transaction store failure", "op", op, "transaction_id", id, "error", err)

	return apperr.Storage(op, err)
}

func storageFault(op string, tx *Transaction, err error) error {
	slog.Error("transaction store failure", "op", op, "transaction", tx, "error", err)
	return apperr.Storage(op, err)
}
