package task

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/http/auth"
	"github.com/MrJamesThe3rd/smartcity/internal/http/respond"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
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
	})

	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/organizationId/{orgId}", h.listByOrganization)
	r.Get("/organizationId/{orgId}/date", h.listByDate)
	r.Get("/userId/{userId}", h.listByUser)
}

type taskRequest struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title" validate:"required,max=255"`
	Description    string      `json:"description" validate:"max=4000"`
	Deadline       string      `json:"deadlineDate" validate:"required"`
	Status         task.Status `json:"taskStatus" validate:"omitempty,oneof=OPEN IN_PROGRESS DONE CANCELLED"`
	Budget         int64       `json:"budget" validate:"gte=0"`
	ApprovedBudget int64       `json:"approvedBudget" validate:"gte=0,ltefield=Budget"`
	OrganizationID int64       `json:"organizationId" validate:"required,gt=0"`

	CreatedDate string `json:"createdDate"`
	UpdatedDate string `json:"updatedDate"`
}

// deadline accepts a plain date or a full timestamp.
func (req taskRequest) deadline() (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, req.Deadline); err == nil {
		return d, nil
	}

	return facade.ParseTime(req.Deadline)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	deadline, err := req.deadline()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.f.CreateTask(r.Context(), auth.CallerFrom(r.Context()), task.CreateParams{
		Title:          req.Title,
		Description:    req.Description,
		Deadline:       deadline,
		Status:         req.Status,
		Budget:         req.Budget,
		ApprovedBudget: req.ApprovedBudget,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(t))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.f.GetTask(r.Context(), auth.CallerFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req taskRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	deadline, err := req.deadline()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Status == "" {
		respond.Error(w, r, apperr.Validation("task.update", "taskStatus is required"))
		return
	}

	t, err := h.f.UpdateTask(r.Context(), auth.CallerFrom(r.Context()), id, task.Task{
		Title:          req.Title,
		Description:    req.Description,
		Deadline:       deadline,
		Status:         req.Status,
		Budget:         req.Budget,
		ApprovedBudget: req.ApprovedBudget,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.f.DeleteTask(r.Context(), auth.CallerFrom(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.f.ListTasks(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(tasks))
}

func (h *Handler) listByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := respond.ID(r, "orgId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tasks, err := h.f.ListTasksByOrganization(r.Context(), auth.CallerFrom(r.Context()), orgID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(tasks))
}

func (h *Handler) listByDate(w http.ResponseWriter, r *http.Request) {
	orgID, err := respond.ID(r, "orgId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()

	tasks, err := h.f.ListTasksByDate(r.Context(), auth.CallerFrom(r.Context()), orgID, q.Get("from"), q.Get("to"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(tasks))
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.ID(r, "userId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tasks, err := h.f.ListTasksByUser(r.Context(), auth.CallerFrom(r.Context()), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(tasks))
}
