package organization

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/http/auth"
	"github.com/MrJamesThe3rd/smartcity/internal/http/respond"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
)

type Handler struct {
	f *facade.Facade
}

func NewHandler(f *facade.Facade) *Handler {
	return &Handler{f: f}
}

func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Post("/{id}/members", h.addMember)
	})

	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Delete("/{id}/members/{userId}/{role}", h.removeMember)
}

type organizationRequest struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"max=500"`

	CreatedDate string `json:"createdDate"`
	UpdatedDate string `json:"updatedDate"`
}

type memberRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Role   string `json:"role" validate:"required,oneof=ADMIN SUPERVISOR USER admin supervisor user"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	org, err := h.f.CreateOrganization(r.Context(), auth.CallerFrom(r.Context()), organization.CreateParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(org))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	org, err := h.f.GetOrganization(r.Context(), auth.CallerFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(org))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.f.ListOrganizations(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]organizationResponse, len(orgs))
	for i, o := range orgs {
		resp[i] = toResponse(o)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req organizationRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	org, err := h.f.UpdateOrganization(r.Context(), auth.CallerFrom(r.Context()), id, organization.UpdateParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(org))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.f.DeleteOrganization(r.Context(), auth.CallerFrom(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, true)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req memberRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	role, err := access.ParseRole(req.Role)
	if err != nil {
		respond.Error(w, r, apperr.Validation("organization.add_member", "%v", err))
		return
	}

	if err := h.f.AddMember(r.Context(), auth.CallerFrom(r.Context()), id, req.UserID, role); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, true)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	userID, err := respond.ID(r, "userId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	role, err := access.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("organization.remove_member", "%v", err))
		return
	}

	if err := h.f.RemoveMember(r.Context(), auth.CallerFrom(r.Context()), id, userID, role); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, true)
}
