package task

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=task
type Repository interface {
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, id int64) error

	ListTasks(ctx context.Context) ([]*Task, error)
	ListByOrganization(ctx context.Context, orgID int64) ([]*Task, error)
	ListByUser(ctx context.Context, userID int64) ([]*Task, error)
	ListCreatedBetween(ctx context.Context, orgID int64, from, to time.Time) ([]*Task, error)
}

// Service is the task registry.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title          string
	Description    string
	Deadline       time.Time
	Status         Status
	Budget         int64
	ApprovedBudget int64
	OrganizationID int64
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Task, error) {
	now := Now()
	t := &Task{
		Title:          params.Title,
		Description:    params.Description,
		Deadline:       DateOnly(params.Deadline),
		Status:         params.Status,
		Budget:         params.Budget,
		ApprovedBudget: params.ApprovedBudget,
		OrganizationID: params.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if t.Status == "" {
		t.Status = StatusOpen
	}

	if err := validate("task.create", t); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		if errors.Is(err, ErrUnknownOrganization) {
			return nil, unknownOrganization("task.create", t.OrganizationID)
		}

		return nil, storageFault("task.create", t, err)
	}

	if t.ID == 0 {
		return nil, storageFault("task.create", t, errors.New("insert returned no id"))
	}

	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, classify("task.get", id, err)
	}

	return t, nil
}

// Update persists every mutable field of t, keyed by t.ID, and returns the
// row as stored afterwards.
func (s *Service) Update(ctx context.Context, t *Task) (*Task, error) {
	if err := validate("task.update", t); err != nil {
		return nil, err
	}

	updated := *t
	updated.Deadline = DateOnly(t.Deadline)
	updated.UpdatedAt = Now()

	if err := s.repo.UpdateTask(ctx, &updated); err != nil {
		if errors.Is(err, ErrUnknownOrganization) {
			return nil, unknownOrganization("task.update", t.OrganizationID)
		}

		return nil, classify("task.update", t.ID, err)
	}

	stored, err := s.repo.GetTask(ctx, t.ID)
	if err != nil {
		return nil, classify("task.update", t.ID, err)
	}

	return stored, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeleteTask(ctx, id)
	if errors.Is(err, ErrHasTransactions) {
		slog.Warn("refusing to delete task with ledger entries", "op", "task.delete", "task_id", id)
		return apperr.Validation("task.delete", "task %d has ledger entries", id)
	}

	if err != nil {
		return classify("task.delete", id, err)
	}

	return nil
}

func (s *Service) List(ctx context.Context) ([]*Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, classify("task.list", 0, err)
	}

	return tasks, nil
}

func (s *Service) ListByOrganization(ctx context.Context, orgID int64) ([]*Task, error) {
	tasks, err := s.repo.ListByOrganization(ctx, orgID)
	if err != nil {
		slog.Error("listing tasks by organization", "op", "task.list_by_organization", "organization_id", orgID, "error", err)
		return nil, apperr.Storage("task.list_by_organization", err)
	}

	return tasks, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Task, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("listing tasks by user", "op", "task.list_by_user", "user_id", userID, "error", err)
		return nil, apperr.Storage("task.list_by_user", err)
	}

	return tasks, nil
}

// ListCreatedBetween returns the organization's tasks created within
// [from, to], oldest first. An inverted range yields no tasks.
func (s *Service) ListCreatedBetween(ctx context.Context, orgID int64, from, to time.Time) ([]*Task, error) {
	if from.After(to) {
		return []*Task{}, nil
	}

	tasks, err := s.repo.ListCreatedBetween(ctx, orgID, from.UTC(), to.UTC())
	if err != nil {
		slog.Error("listing tasks by date", "op", "task.list_created_between",
			"organization_id", orgID, "from", from, "to", to, "error", err)

		return nil, apperr.Storage("task.list_created_between", err)
	}

	return tasks, nil
}

// Now is the timestamp written to created/updated columns: UTC, truncated
// to the millisecond precision the API exposes.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// DateOnly drops the clock part of a deadline.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validate(op string, t *Task) error {
	switch {
	case strings.TrimSpace(t.Title) == "":
		return apperr.Validation(op, "title is required")
	case !t.Status.Valid():
		return apperr.Validation(op, "unknown status %q", t.Status)
	case t.Deadline.IsZero():
		return apperr.Validation(op, "deadline is required")
	case t.Budget < 0:
		return apperr.Validation(op, "budget must not be negative")
	case t.ApprovedBudget < 0:
		return apperr.Validation(op, "approved budget must not be negative")
	case t.ApprovedBudget > t.Budget:
		return apperr.Validation(op, "approved budget exceeds budget")
	case t.OrganizationID <= 0:
		return apperr.Validation(op, "organization is required")
	}

	return nil
}

func classify(op string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		slog.Error("task not found", "op", op, "task_id", id)
		return apperr.NotFound(op, "task %d not found", id)
	}

	slog.Error("task store failure", "op", op, "task_id", id, "error", err)

	return apperr.Storage(op, err)
}

func unknownOrganization(op string, orgID int64) error {
	slog.Warn("task references unknown organization", "op", op, "organization_id", orgID)
	return apperr.Validation(op, "organization %d does not exist", orgID)
}

func storageFault(op string, t *Task, err error) error {
	slog.Error("task store failure", "op", op, "task", t, "error", err)
	return apperr.Storage(op, err)
}
