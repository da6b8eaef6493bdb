package organization

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=organization
type Repository interface {
	// CreateOrganization stores org together with its initial members.
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id int64) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]*Organization, error)
	UpdateOrganization(ctx context.Context, org *Organization) error
	DeleteOrganization(ctx context.Context, id int64) error

	AddMember(ctx context.Context, orgID int64, member Member) error
	RemoveMember(ctx context.Context, orgID, userID int64, role access.Role) error
	ListMemberships(ctx context.Context, userID int64) ([]Membership, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name    string
	Address string
}

// Create stores a new organization. The creator becomes its first ADMIN.
func (s *Service) Create(ctx context.Context, params CreateParams, creatorID int64) (*Organization, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apperr.Validation("organization.create", "name is required")
	}

	if creatorID <= 0 {
		return nil, apperr.Validation("organization.create", "creator is required")
	}

	now := task.Now()
	org := &Organization{
		Name:      strings.TrimSpace(params.Name),
		Address:   params.Address,
		Members:   []Member{{UserID: creatorID, Role: access.RoleAdmin, CreatedAt: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		slog.Error("creating organization", "op", "organization.create", "error", err)
		return nil, apperr.Storage("organization.create", err)
	}

	return org, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, classify("organization.get", id, err)
	}

	return org, nil
}

func (s *Service) List(ctx context.Context) ([]*Organization, error) {
	orgs, err := s.repo.ListOrganizations(ctx)
	if err != nil {
		slog.Error("listing organizations", "op", "organization.list", "error", err)
		return nil, apperr.Storage("organization.list", err)
	}

	return orgs, nil
}

type UpdateParams struct {
	ID      int64
	Name    string
	Address string
}

func (s *Service) Update(ctx context.Context, params UpdateParams) (*Organization, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apperr.Validation("organization.update", "name is required")
	}

	org := &Organization{
		ID:        params.ID,
		Name:      strings.TrimSpace(params.Name),
		Address:   params.Address,
		UpdatedAt: task.Now(),
	}

	if err := s.repo.UpdateOrganization(ctx, org); err != nil {
		return nil, classify("organization.update", params.ID, err)
	}

	return s.Get(ctx, params.ID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeleteOrganization(ctx, id)
	if errors.Is(err, ErrHasTasks) {
		slog.Warn("refusing to delete organization with tasks", "op", "organization.delete", "organization_id", id)
		return apperr.Validation("organization.delete", "organization %d still owns tasks", id)
	}

	if err != nil {
		return classify("organization.delete", id, err)
	}

	return nil
}

// AddMember grants role to userID. Granting a role the user already holds
// is a no-op.
func (s *Service) AddMember(ctx context.Context, orgID, userID int64, role access.Role) error {
	if userID <= 0 {
		return apperr.Validation("organization.add_member", "user is required")
	}

	if !role.Valid() {
		return apperr.Validation("organization.add_member", "unknown role %q", role)
	}

	m := Member{UserID: userID, Role: role, CreatedAt: task.Now()}
	if err := s.repo.AddMember(ctx, orgID, m); err != nil {
		return classify("organization.add_member", orgID, err)
	}

	return nil
}

func (s *Service) RemoveMember(ctx context.Context, orgID, userID int64, role access.Role) error {
	err := s.repo.RemoveMember(ctx, orgID, userID, role)
	if errors.Is(err, ErrMemberNotFound) {
		return apperr.NotFound("organization.remove_member",
			"user %d has no %s role in organization %d", userID, role, orgID)
	}

	if err != nil {
		return classify("organization.remove_member", orgID, err)
	}

	return nil
}

// Caller builds the access identity of userID from their memberships.
func (s *Service) Caller(ctx context.Context, userID int64) (*access.Caller, error) {
	ms, err := s.repo.ListMemberships(ctx, userID)
	if err != nil {
		slog.Error("loading memberships", "op", "organization.memberships", "user_id", userID, "error", err)
		return nil, apperr.Storage("organization.memberships", err)
	}

	caller := &access.Caller{UserID: userID, Memberships: make(map[int64][]access.Role, len(ms))}
	for _, m := range ms {
		caller.Memberships[m.OrganizationID] = append(caller.Memberships[m.OrganizationID], m.Role)
	}

	return caller, nil
}

func classify(op string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		slog.Error("organization not found", "op", op, "organization_id", id)
		return apperr.NotFound(op, "organization %d not found", id)
	}

	slog.Error("organization store failure", "op", op, "organization_id", id, "error", err)

	return apperr.Storage(op, err)
}
