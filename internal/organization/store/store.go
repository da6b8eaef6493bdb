package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
)

const organizationColumns = `id, name, address, created_at, updated_at`

const (
	sqlCreate = `
		INSERT INTO organizations (name, address, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	sqlGetByID = `SELECT ` + organizationColumns + ` FROM organizations WHERE id = ?`

	sqlListAll = `SELECT ` + organizationColumns + ` FROM organizations ORDER BY id ASC`

	sqlUpdate = `UPDATE organizations SET name = ?, address = ?, updated_at = ? WHERE id = ?`

	sqlDelete = `DELETE FROM organizations WHERE id = ?`

	sqlAddMember = `
		INSERT INTO organization_members (organization_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (organization_id, user_id, role) DO NOTHING`

	sqlRemoveMember = `DELETE FROM organization_members WHERE organization_id = ? AND user_id = ? AND role = ?`

	sqlListMembers = `
		SELECT user_id, role, created_at FROM organization_members
		WHERE organization_id = ?
		ORDER BY user_id ASC, role ASC`

	sqlListMemberships = `
		SELECT organization_id, role FROM organization_members
		WHERE user_id = ?
		ORDER BY organization_id ASC, role ASC`
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

func scanOrganization(s scanner) (*organization.Organization, error) {
	var o organization.Organization

	if err := s.Scan(&o.ID, &o.Name, &o.Address, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}

	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()

	return &o, nil
}

func (s *Store) CreateOrganization(ctx context.Context, org *organization.Organization) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, s.dialect.Rebind(sqlCreate),
		org.Name, org.Address, org.CreatedAt, org.UpdatedAt,
	).Scan(&org.ID)
	if err != nil {
		return fmt.Errorf("creating organization: %w", err)
	}

	for _, m := range org.Members {
		if _, err = tx.ExecContext(ctx, s.dialect.Rebind(sqlAddMember),
			org.ID, m.UserID, string(m.Role), m.CreatedAt,
		); err != nil {
			return fmt.Errorf("adding member: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing organization: %w", err)
	}

	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id int64) (*organization.Organization, error) {
	org, err := scanOrganization(s.db.QueryRowContext(ctx, s.dialect.Rebind(sqlGetByID), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, organization.ErrNotFound
		}

		return nil, fmt.Errorf("getting organization: %w", err)
	}

	if org.Members, err = s.listMembers(ctx, id); err != nil {
		return nil, err
	}

	return org, nil
}

// ListOrganizations returns every organization without its members.
func (s *Store) ListOrganizations(ctx context.Context) ([]*organization.Organization, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(sqlListAll))
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	orgs := []*organization.Organization{}

	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}

		orgs = append(orgs, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organization rows: %w", err)
	}

	return orgs, nil
}

func (s *Store) listMembers(ctx context.Context, orgID int64) ([]organization.Member, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(sqlListMembers), orgID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	members := []organization.Member{}

	for rows.Next() {
		var (
			m    organization.Member
			role string
		)

		if err := rows.Scan(&m.UserID, &role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}

		m.Role = access.Role(role)
		m.CreatedAt = m.CreatedAt.UTC()
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating member rows: %w", err)
	}

	return members, nil
}

func (s *Store) UpdateOrganization(ctx context.Context, org *organization.Organization) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlUpdate), org.Name, org.Address, org.UpdatedAt, org.ID)
	if err != nil {
		return fmt.Errorf("updating organization: %w", err)
	}

	return expectRow(res, "updating organization", organization.ErrNotFound)
}

func (s *Store) DeleteOrganization(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlDelete), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return organization.ErrHasTasks
		}

		return fmt.Errorf("deleting organization: %w", err)
	}

	return expectRow(res, "deleting organization", organization.ErrNotFound)
}

func (s *Store) AddMember(ctx context.Context, orgID int64, m organization.Member) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlAddMember), orgID, m.UserID, string(m.Role), m.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return organization.ErrNotFound
		}

		return fmt.Errorf("adding member: %w", err)
	}

	return nil
}

func (s *Store) RemoveMember(ctx context.Context, orgID, userID int64, role access.Role) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(sqlRemoveMember), orgID, userID, string(role))
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}

	return expectRow(res, "removing member", organization.ErrMemberNotFound)
}

func (s *Store) ListMemberships(ctx context.Context, userID int64) ([]organization.Membership, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(sqlListMemberships), userID)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}
	defer rows.Close()

	var ms []organization.Membership

	for rows.Next() {
		var (
			m    organization.Membership
			role string
		)

		if err := rows.Scan(&m.OrganizationID, &role); err != nil {
			return nil, fmt.Errorf("scanning membership: %w", err)
		}

		m.Role = access.Role(role)
		ms = append(ms, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating membership rows: %w", err)
	}

	return ms, nil
}

func expectRow(res sql.Result, action string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}
