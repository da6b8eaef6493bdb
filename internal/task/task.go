package task

import (
	"errors"
	"log/slog"
	"time"
)

var (
	ErrNotFound = errors.New("task not found")
	// ErrHasTransactions is returned by DeleteTask while ledger entries still
	// reference the task.
	ErrHasTransactions = errors.New("task has ledger entries")
	// ErrUnknownOrganization is returned by CreateTask and UpdateTask when
	// the organization reference does not resolve.
	ErrUnknownOrganization = errors.New("organization does not exist")
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}

	return false
}

// Task is a public works item owned by an organization. Budgets are in
// minor currency units.
type Task struct {
	ID             int64
	Title          string
	Description    string
	Deadline       time.Time
	Status         Status
	Budget         int64
	ApprovedBudget int64
	OrganizationID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LogValue keeps titles and descriptions out of the logs.
func (t *Task) LogValue() slog.Value {
	if t == nil {
		return slog.AnyValue(nil)
	}

	return slog.GroupValue(
		slog.Int64("id", t.ID),
		slog.Int64("organization_id", t.OrganizationID),
		slog.String("status", string(t.Status)),
		slog.Int64("budget", t.Budget),
		slog.Int64("approved_budget", t.ApprovedBudget),
	)
}
