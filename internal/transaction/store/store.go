package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
)

const transactionColumns = `id, task_id, current_budget, transaction_budget, created_at, updated_at`

const (
	sqlCreate = `
		INSERT INTO transactions (task_id, current_budget, transaction_budget, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`

	sqlGetByID = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	sqlListByTask = `SELECT ` + transactionColumns + ` FROM transactions
		WHERE task_id = ?
		ORDER BY created_at ASC, id ASC`

	sqlListByTaskCreatedBetween = `SELECT ` + transactionColumns + ` FROM transactions
		WHERE task_id = ? AND created_at BETWEEN ? AND ?
		ORDER BY created_at ASC, id ASC`

	// task_id is immutable.
	sqlUpdate = `
		UPDATE transactions
		SET current_budget = ?, transaction_budget = ?, updated_at = ?
		WHERE id = ?`

	sqlDelete = `DELETE FROM transactions WHERE id = ?`
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

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	if err := s.Scan(
		&tx.ID, &tx.TaskID, &tx.CurrentBudget, &tx.TransactionBudget, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.UpdatedAt = tx.UpdatedAt.UTC()

	return &tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(sqlCreate),
		tx.TaskID,
		tx.CurrentBudget,
		tx.TransactionBudget,
		tx.CreatedAt,
		tx.UpdatedAt,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (*transaction.Transaction, error) {
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, s.dialect.Rebind(sqlGetByID), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListByTask(ctx context.Context, taskID int64) ([]*transaction.Transaction, error) {
	return s.list(ctx, sqlListByTask, taskID)
}

func (s *Store) ListByTaskCreatedBetween(ctx context.Context, taskID int64, from, to time.Time) ([]*transaction.Transaction, error) {
	return s.list(ctx, sqlListByTaskCreatedBetween, taskID, from, to)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlUpdate),
		tx.CurrentBudget,
		tx.TransactionBudget,
		tx.UpdatedAt,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return expectRow(res, "updating transaction")
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlDelete), id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return expectRow(res, "deleting transaction")
}

func expectRow(res sql.Result, action string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}
