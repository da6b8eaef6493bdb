package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
)

const taskColumns = `id, title, description, deadline_date, task_status, budget, approved_budget,
	organization_id, created_at, updated_at`

const (
	sqlCreate = `
		INSERT INTO tasks (title, description, deadline_date, task_status, budget, approved_budget,
			organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	sqlGetByID = `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	sqlListAll = `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at ASC, id ASC`

	sqlListByOrganization = `SELECT ` + taskColumns + ` FROM tasks
		WHERE organization_id = ?
		ORDER BY created_at ASC, id ASC`

	sqlListByUser = `SELECT ` + taskColumns + ` FROM tasks
		WHERE organization_id IN (SELECT organization_id FROM organization_members WHERE user_id = ?)
		ORDER BY created_at ASC, id ASC`

	sqlListCreatedBetween = `SELECT ` + taskColumns + ` FROM tasks
		WHERE organization_id = ? AND created_at BETWEEN ? AND ?
		ORDER BY created_at ASC, id ASC`

	sqlUpdate = `
		UPDATE tasks
		SET title = ?, description = ?, deadline_date = ?, task_status = ?, budget = ?,
			approved_budget = ?, organization_id = ?, updated_at = ?
		WHERE id = ?`

	sqlDelete = `DELETE FROM tasks WHERE id = ?`
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask reads a row in taskColumns order.
func scanTask(s scanner) (*task.Task, error) {
	var (
		t      task.Task
		status string
	)

	if err := s.Scan(
		&t.ID, &t.Title, &t.Description, &t.Deadline, &status, &t.Budget, &t.ApprovedBudget,
		&t.OrganizationID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	t.Deadline = t.Deadline.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()

	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(sqlCreate),
		t.Title,
		t.Description,
		t.Deadline,
		t.Status,
		t.Budget,
		t.ApprovedBudget,
		t.OrganizationID,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return task.ErrUnknownOrganization
		}

		return fmt.Errorf("creating task: %w", err)
	}

	return nil
}

func (s *Store) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, s.dialect.Rebind(sqlGetByID), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, task.ErrNotFound
		}

		return nil, fmt.Errorf("getting task: %w", err)
	}

	return t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]*task.Task, error) {
	return s.list(ctx, sqlListAll)
}

func (s *Store) ListByOrganization(ctx context.Context, orgID int64) ([]*task.Task, error) {
	return s.list(ctx, sqlListByOrganization, orgID)
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.list(ctx, sqlListByUser, userID)
}

func (s *Store) ListCreatedBetween(ctx context.Context, orgID int64, from, to time.Time) ([]*task.Task, error) {
	return s.list(ctx, sqlListCreatedBetween, orgID, from, to)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlUpdate),
		t.Title,
		t.Description,
		t.Deadline,
		t.Status,
		t.Budget,
		t.ApprovedBudget,
		t.OrganizationID,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return task.ErrUnknownOrganization
		}

		return fmt.Errorf("updating task: %w", err)
	}

	return expectRow(res, "updating task")
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlDelete), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return task.ErrHasTransactions
		}

		return fmt.Errorf("deleting task: %w", err)
	}

	return expectRow(res, "deleting task")
}

func expectRow(res sql.Result, action string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	if n == 0 {
		return task.ErrNotFound
	}

	return nil
}
