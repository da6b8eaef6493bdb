package access_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
)

func TestResolver_Authorize(t *testing.T) {
	caller := &access.Caller{
		UserID: 10,
		Memberships: map[int64][]access.Role{
			1: {access.RoleUser},
			2: {access.RoleUser, access.RoleSupervisor},
		},
	}

	tests := []struct {
		name     string
		caller   *access.Caller
		required []access.Role
		orgID    int64
		want     bool
	}{
		{name: "HeldRole", caller: caller, required: []access.Role{access.RoleUser}, orgID: 1, want: true},
		{name: "AnyOfSeveral", caller: caller, required: []access.Role{access.RoleAdmin, access.RoleSupervisor}, orgID: 2, want: true},
		{name: "RoleInOtherOrganization", caller: caller, required: []access.Role{access.RoleSupervisor}, orgID: 1, want: false},
		{name: "NotAMember", caller: caller, required: []access.Role{access.RoleUser}, orgID: 3, want: false},
		{name: "NothingRequired", caller: caller, required: nil, orgID: 1, want: false},
		{name: "NilCaller", caller: nil, required: []access.Role{access.RoleUser}, orgID: 1, want: false},
	}

	r := access.NewResolver(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Authorize(tt.caller, tt.required, tt.orgID))
		})
	}
}

func TestResolver_Require(t *testing.T) {
	r := access.NewResolver(access.DefaultPolicy())
	user := &access.Caller{UserID: 5, Memberships: map[int64][]access.Role{1: {access.RoleUser}}}

	require.NoError(t, r.Require(user, access.TransactionRead, 1))

	err := r.Require(user, access.TransactionDelete, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		return path
	}

	t.Run("EmptyPathIsDefault", func(t *testing.T) {
		p, err := access.LoadPolicy("")
		require.NoError(t, err)
		assert.Equal(t, access.DefaultPolicy(), p)
	})

	t.Run("Override", func(t *testing.T) {
		p, err := access.LoadPolicy(write("ok.yaml", "transaction.delete: [admin, SUPERVISOR, ADMIN]\n"))
		require.NoError(t, err)
		assert.Equal(t, []access.Role{access.RoleAdmin, access.RoleSupervisor}, p[access.TransactionDelete])
		assert.Equal(t, access.DefaultPolicy()[access.TaskRead], p[access.TaskRead])
	})

	t.Run("UnknownOperation", func(t *testing.T) {
		_, err := access.LoadPolicy(write("op.yaml", "transaction.burn: [ADMIN]\n"))
		assert.ErrorContains(t, err, "unknown operation")
	})

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := access.LoadPolicy(write("role.yaml", "task.read: [MAYOR]\n"))
		assert.ErrorContains(t, err, "unknown role")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := access.LoadPolicy(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}
