package facade

import (
	"context"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
)

// CreateOrganization is open to any authenticated caller, who becomes the
// organization's first admin.
func (f *Facade) CreateOrganization(ctx context.Context, caller *access.Caller, params organization.CreateParams) (*organization.Organization, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("organization.create", "authentication required")
	}

	return f.orgs.Create(ctx, params, caller.UserID)
}

func (f *Facade) GetOrganization(ctx context.Context, caller *access.Caller, id int64) (*organization.Organization, error) {
	return f.authorizeOrganization(ctx, caller, access.OrganizationRead, id)
}

// ListOrganizations returns the organizations the caller may read.
func (f *Facade) ListOrganizations(ctx context.Context, caller *access.Caller) ([]*organization.Organization, error) {
	orgs, err := f.orgs.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*organization.Organization, 0, len(orgs))
	for _, o := range orgs {
		if f.resolver.Allowed(caller, access.OrganizationRead, o.ID) {
			out = append(out, o)
		}
	}

	return out, nil
}

func (f *Facade) UpdateOrganization(ctx context.Context, caller *access.Caller, id int64, params organization.UpdateParams) (*organization.Organization, error) {
	if _, err := f.authorizeOrganization(ctx, caller, access.OrganizationUpdate, id); err != nil {
		return nil, err
	}

	params.ID = id

	return f.orgs.Update(ctx, params)
}

func (f *Facade) DeleteOrganization(ctx context.Context, caller *access.Caller, id int64) error {
	if _, err := f.authorizeOrganization(ctx, caller, access.OrganizationDelete, id); err != nil {
		return err
	}

	return f.orgs.Delete(ctx, id)
}

func (f *Facade) AddMember(ctx context.Context, caller *access.Caller, orgID, userID int64, role access.Role) error {
	if _, err := f.authorizeOrganization(ctx, caller, access.OrganizationMembers, orgID); err != nil {
		return err
	}

	return f.orgs.AddMember(ctx, orgID, userID, role)
}

// RemoveMember revokes one role. The last admin of an organization cannot
// be removed.
func (f *Facade) RemoveMember(ctx context.Context, caller *access.Caller, orgID, userID int64, role access.Role) error {
	org, err := f.authorizeOrganization(ctx, caller, access.OrganizationMembers, orgID)
	if err != nil {
		return err
	}

	if role == access.RoleAdmin && lastAdmin(org, userID) {
		return apperr.Validation("organization.remove_member", "organization %d needs at least one admin", orgID)
	}

	return f.orgs.RemoveMember(ctx, orgID, userID, role)
}

func (f *Facade) authorizeOrganization(ctx context.Context, caller *access.Caller, op access.Operation, id int64) (*organization.Organization, error) {
	org, err := f.orgs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := f.resolver.Require(caller, op, id); err != nil {
		return nil, err
	}

	return org, nil
}

func lastAdmin(org *organization.Organization, userID int64) bool {
	held := false
	others := 0

	for _, m := range org.Members {
		if m.Role != access.RoleAdmin {
			continue
		}

		if m.UserID == userID {
			held = true
		} else {
			others++
		}
	}

	return held && others == 0
}
