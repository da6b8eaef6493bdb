package organization

import (
	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
)

type memberResponse struct {
	UserID int64       `json:"userId"`
	Role   access.Role `json:"role"`
}

type organizationResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	Members     []memberResponse `json:"members,omitempty"`
	CreatedDate string           `json:"createdDate"`
	UpdatedDate string           `json:"updatedDate"`
}

func toResponse(o *organization.Organization) organizationResponse {
	resp := organizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		Address:     o.Address,
		CreatedDate: o.CreatedAt.UTC().Format(facade.TimeLayout),
		UpdatedDate: o.UpdatedAt.UTC().Format(facade.TimeLayout),
	}

	for _, m := range o.Members {
		resp.Members = append(resp.Members, memberResponse{UserID: m.UserID, Role: m.Role})
	}

	return resp
}
