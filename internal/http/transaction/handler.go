package transaction

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/http/auth"
	"github.com/MrJamesThe3rd/smartcity/internal/http/respond"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
)

const maxUploadSize = 10 << 20

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

	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)

	r.Route("/taskId/{taskId}", func(r chi.Router) {
		r.Get("/", h.listByTask)
		r.Get("/date", h.listByDate)
		r.Get("/audit", h.audit)
		r.Get("/export", h.export)
		r.With(middleware.AllowContentType("multipart/form-data")).Post("/import", h.importCSV)
	})
}

// transactionRequest mirrors the response shape; id and dates are ignored.
type transactionRequest struct {
	ID                int64 `json:"id"`
	TaskID            int64 `json:"taskId"`
	CurrentBudget     int64 `json:"currentBudget"`
	TransactionBudget int64 `json:"transactionBudget"`

	CreatedDate string `json:"createdDate"`
	UpdatedDate string `json:"updatedDate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.f.CreateTransaction(r.Context(), auth.CallerFrom(r.Context()), transaction.CreateParams{
		TaskID:            req.TaskID,
		CurrentBudget:     req.CurrentBudget,
		TransactionBudget: req.TransactionBudget,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.f.GetTransaction(r.Context(), auth.CallerFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req transactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.f.UpdateTransaction(r.Context(), auth.CallerFrom(r.Context()), id, transaction.UpdateParams{
		CurrentBudget:     req.CurrentBudget,
		TransactionBudget: req.TransactionBudget,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.f.DeleteTransaction(r.Context(), auth.CallerFrom(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, true)
}

func (h *Handler) listByTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := respond.ID(r, "taskId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.f.ListTransactionsByTask(r.Context(), auth.CallerFrom(r.Context()), taskID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) listByDate(w http.ResponseWriter, r *http.Request) {
	taskID, err := respond.ID(r, "taskId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()

	txs, err := h.f.ListTransactionsByDate(r.Context(), auth.CallerFrom(r.Context()), taskID, q.Get("from"), q.Get("to"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) audit(w http.ResponseWriter, r *http.Request) {
	taskID, err := respond.ID(r, "taskId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	st, err := h.f.AuditLedger(r.Context(), auth.CallerFrom(r.Context()), taskID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toAuditResponse(st))
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	taskID, err := respond.ID(r, "taskId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, apperr.Validation("transaction.import", "failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Validation("transaction.import", "missing file"))
		return
	}
	defer file.Close()

	txs, err := h.f.ImportTransactions(r.Context(), auth.CallerFrom(r.Context()), taskID, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponseList(txs))
}

// export buffers the statement so failures still get a JSON error body.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	taskID, err := respond.ID(r, "taskId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer

	name, err := h.f.ExportLedger(r.Context(), auth.CallerFrom(r.Context()), taskID, &buf)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = buf.WriteTo(w)
}
