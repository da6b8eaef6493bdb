// Package access decides whether a caller may run an operation against
// resources owned by an organization. It is the only package that looks at
// roles.
package access

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleUser       Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleUser:
		return true
	}

	return false
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}

	return r, nil
}

type Operation string

const (
	TransactionCreate     Operation = "transaction.create"
	TransactionRead       Operation = "transaction.read"
	TransactionUpdate     Operation = "transaction.update"
	TransactionDelete     Operation = "transaction.delete"
	TransactionReadByTask Operation = "transaction.read_by_task"

	TaskCreate Operation = "task.create"
	TaskRead   Operation = "task.read"
	TaskUpdate Operation = "task.update"
	TaskDelete Operation = "task.delete"

	OrganizationRead    Operation = "organization.read"
	OrganizationUpdate  Operation = "organization.update"
	OrganizationDelete  Operation = "organization.delete"
	OrganizationMembers Operation = "organization.members"
)

var operations = []Operation{
	TransactionCreate, TransactionRead, TransactionUpdate, TransactionDelete, TransactionReadByTask,
	TaskCreate, TaskRead, TaskUpdate, TaskDelete,
	OrganizationRead, OrganizationUpdate, OrganizationDelete, OrganizationMembers,
}

func (op Operation) Valid() bool {
	for _, known := range operations {
		if op == known {
			return true
		}
	}

	return false
}

// Caller is an authenticated user and the roles they hold, keyed by
// organization id.
type Caller struct {
	UserID      int64
	Memberships map[int64][]Role
}

// RolesIn returns the roles the caller holds in orgID.
func (c *Caller) RolesIn(orgID int64) []Role {
	if c == nil {
		return nil
	}

	return c.Memberships[orgID]
}

// Organizations returns the ids of every organization the caller belongs to.
func (c *Caller) Organizations() []int64 {
	if c == nil {
		return nil
	}

	ids := make([]int64, 0, len(c.Memberships))
	for id := range c.Memberships {
		ids = append(ids, id)
	}

	return ids
}
