package access

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Policy maps every operation to the roles allowed to run it.
type Policy map[Operation][]Role

// DefaultPolicy lets every member read, supervisors write ledger entries and
// tasks, and reserves deletes and organization management to admins.
func DefaultPolicy() Policy {
	everyone := []Role{RoleAdmin, RoleSupervisor, RoleUser}
	writers := []Role{RoleAdmin, RoleSupervisor}
	admins := []Role{RoleAdmin}

	return Policy{
		TransactionCreate:     writers,
		TransactionRead:       everyone,
		TransactionUpdate:     writers,
		TransactionDelete:     admins,
		TransactionReadByTask: everyone,

		TaskCreate: writers,
		TaskRead:   everyone,
		TaskUpdate: writers,
		TaskDelete: admins,

		OrganizationRead:    everyone,
		OrganizationUpdate:  admins,
		OrganizationDelete:  admins,
		OrganizationMembers: admins,
	}
}

// LoadPolicy reads a YAML document of the form
//
//	transaction.delete: [ADMIN]
//	task.update: [ADMIN, SUPERVISOR]
//
// on top of DefaultPolicy. An empty path returns the default. Unknown
// operations or roles are rejected.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roles file: %w", err)
	}

	return mergePolicy(policy, data)
}

func mergePolicy(policy Policy, data []byte) (Policy, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing roles file: %w", err)
	}

	for name, roleNames := range raw {
		op := Operation(name)
		if !op.Valid() {
			return nil, fmt.Errorf("roles file: unknown operation %q", name)
		}

		roles := make([]Role, 0, len(roleNames))

		for _, rn := range roleNames {
			r, err := ParseRole(rn)
			if err != nil {
				return nil, fmt.Errorf("roles file: operation %s: %w", name, err)
			}

			if !slices.Contains(roles, r) {
				roles = append(roles, r)
			}
		}

		policy[op] = roles
	}

	return policy, nil
}
