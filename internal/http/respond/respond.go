// Package respond writes JSON responses and maps classified errors to
// HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	}

	return http.StatusInternalServerError
}

// Error writes err with the status of its kind. Storage failures only
// expose a generic message; the cause goes to the log.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	reqID := middleware.GetReqID(r.Context())

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", reqID, "error", err)
	}

	JSON(w, status, errorResponse{
		Error:     apperr.Message(err),
		Kind:      apperr.KindOf(err).String(),
		RequestID: reqID,
	})
}

// Unauthenticated writes a 401 for a missing or invalid token.
func Unauthenticated(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="smartcity"`)
	JSON(w, http.StatusUnauthorized, errorResponse{
		Error:     msg,
		Kind:      "unauthenticated",
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// Decode reads a JSON body into v and checks its validate tags.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperr.Validation("request.decode", "invalid request body: %v", err)
	}

	if err := validate.Struct(v); err != nil {
		return apperr.Validation("request.decode", "%s", describe(err))
	}

	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}

	return strings.Join(msgs, "; ")
}

// ID reads a positive integer path parameter.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("request.path", "invalid %s %q", name, raw)
	}

	return id, nil
}
