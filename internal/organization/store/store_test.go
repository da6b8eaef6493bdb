package store_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/database/dbtest"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
	"github.com/MrJamesThe3rd/smartcity/internal/organization/store"
)

var now = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func newOrg(s *store.Store, t *testing.T, creator int64) *organization.Organization {
	t.Helper()

	org := &organization.Organization{
		Name:      "Komunalna",
		Address:   "Saharova 13",
		Members:   []organization.Member{{UserID: creator, Role: access.RoleAdmin, CreatedAt: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateOrganization(context.Background(), org))
	require.NotZero(t, org.ID)

	return org
}

func TestStore_CreateAndGet(t *testing.T) {
	s := store.New(dbtest.New(t), database.SQLite)
	org := newOrg(s, t, 10)

	got, err := s.GetOrganization(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, org, got)
}

func TestStore_Get_NotFound(t *testing.T) {
	s := store.New(dbtest.New(t), database.SQLite)

	_, err := s.GetOrganization(context.Background(), 404)

	assert.ErrorIs(t, err, organization.ErrNotFound)
}

func TestStore_UpdateAndList(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.New(t), database.SQLite)
	org := newOrg(s, t, 10)

	org.Name = "Vodokanal"
	org.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, s.UpdateOrganization(ctx, org))

	orgs, err := s.ListOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Vodokanal", orgs[0].Name)
	assert.Equal(t, now.Add(time.Hour), orgs[0].UpdatedAt)

	err = s.UpdateOrganization(ctx, &organization.Organization{ID: 404, Name: "x", UpdatedAt: now})
	assert.ErrorIs(t, err, organization.ErrNotFound)
}

func TestStore_Members(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.New(t), database.SQLite)
	org := newOrg(s, t, 10)

	sup := organization.Member{UserID: 10, Role: access.RoleSupervisor, CreatedAt: now}
	require.NoError(t, s.AddMember(ctx, org.ID, sup))
	require.NoError(t, s.AddMember(ctx, org.ID, sup), "granting a held role is a no-op")
	require.NoError(t, s.AddMember(ctx, org.ID, organization.Member{UserID: 11, Role: access.RoleUser, CreatedAt: now}))

	ms, err := s.ListMemberships(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []organization.Membership{
		{OrganizationID: org.ID, Role: access.RoleAdmin},
		{OrganizationID: org.ID, Role: access.RoleSupervisor},
	}, ms)

	assert.ErrorIs(t, s.AddMember(ctx, 404, sup), organization.ErrNotFound)

	require.NoError(t, s.RemoveMember(ctx, org.ID, 11, access.RoleUser))
	assert.ErrorIs(t, s.RemoveMember(ctx, org.ID, 11, access.RoleUser), organization.ErrMemberNotFound)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	s := store.New(db, database.SQLite)

	empty := newOrg(s, t, 10)
	require.NoError(t, s.DeleteOrganization(ctx, empty.ID))
	assert.ErrorIs(t, s.DeleteOrganization(ctx, empty.ID), organization.ErrNotFound)

	ms, err := s.ListMemberships(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ms, "memberships are removed with the organization")

	owner := newOrg(s, t, 10)
	dbtest.Seed(t, db, `INSERT INTO tasks (title, description, deadline_date, task_status, budget, approved_budget,
			organization_id, created_at, updated_at)
		 VALUES ('Repair road', '', '2026-06-30 00:00:00+00:00', 'OPEN', 100, 0, `+itoa(owner.ID)+`,
			'2026-01-01 00:00:00+00:00', '2026-01-01 00:00:00+00:00')`)

	assert.ErrorIs(t, s.DeleteOrganization(ctx, owner.ID), organization.ErrHasTasks)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
