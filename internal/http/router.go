package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/smartcity/internal/http/auth"
	"github.com/MrJamesThe3rd/smartcity/internal/http/organization"
	"github.com/MrJamesThe3rd/smartcity/internal/http/task"
	"github.com/MrJamesThe3rd/smartcity/internal/http/transaction"
)

const requestIDHeader = "X-Request-ID"

func New(
	allowedOrigins []string,
	authenticator *auth.Authenticator,
	transactionsV1 *transaction.Handler,
	tasksV1 *task.Handler,
	organizationsV1 *organization.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticator.Middleware)

		r.Route("/transactions", transactionsV1.Routes)
		r.Route("/tasks", tasksV1.Routes)
		r.Route("/organizations", organizationsV1.Routes)
	})

	return router
}

// requestID keeps a client supplied X-Request-ID or assigns a UUID, and
// stores it where chi's Logger and respond.Error read it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
