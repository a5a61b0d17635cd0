package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/servicehub-api/internal/api/middleware"
	"github.com/phrazzld/servicehub-api/internal/api/shared"
	"github.com/phrazzld/servicehub-api/internal/service/auth"
)

// RouterDeps holds everything NewRouter wires into handlers.
type RouterDeps struct {
	Users      UserAccounts
	Categories CategoryCatalog
	Onboarding Onboarding
	Lifecycle  Lifecycle
	Ratings    RatingBook
	Actors     middleware.ActorResolver
	JWT        auth.JWTService
	Logger     *slog.Logger
}

// NewRouter builds the HTTP API. Public routes serve anonymous callers; the
// rest require a bearer token and resolve the caller to a domain actor.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	authHandler := NewAuthHandler(deps.Users, log)
	categoryHandler := NewCategoryHandler(deps.Categories)
	providerHandler := NewProviderHandler(deps.Onboarding, deps.Ratings)
	requestHandler := NewRequestHandler(deps.Lifecycle, deps.Ratings)
	authMiddleware := middleware.NewAuthMiddleware(deps.JWT)
	actorMiddleware := middleware.NewActorMiddleware(deps.Actors)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(log))
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Get("/categories", categoryHandler.List)
		r.Get("/categories/{id}", categoryHandler.Get)
		r.Get("/providers", providerHandler.ListProviders)
		r.Get("/providers/{id}", providerHandler.GetProvider)
		r.Get("/providers/{id}/ratings", providerHandler.ListRatings)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(actorMiddleware.ResolveActor)

			r.Get("/me", Me)

			r.Post("/applications", providerHandler.SubmitApplication)
			r.Get("/applications", providerHandler.ListApplications)
			r.Get("/applications/{id}", providerHandler.GetApplication)

			r.Post("/requests", requestHandler.Create)
			r.Get("/requests", requestHandler.List)
			r.Get("/requests/{id}", requestHandler.Get)
			r.Patch("/requests/{id}", requestHandler.Update)
			r.Post("/requests/{id}/accept", requestHandler.Accept)
			r.Post("/requests/{id}/reject", requestHandler.Reject)
			r.Post("/requests/{id}/complete", requestHandler.Complete)
			r.Post("/requests/{id}/cancel", requestHandler.Cancel)
			r.Post("/requests/{id}/rating", requestHandler.Rate)
			r.Get("/requests/{id}/rating", requestHandler.GetRating)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff)

				r.Post("/categories", categoryHandler.Create)
				r.Post("/providers", providerHandler.CreateProvider)
				r.Patch("/providers/{id}/active", providerHandler.SetActive)
				r.Post("/applications/{id}/approve", providerHandler.ApproveApplication)
				r.Post("/applications/{id}/reject", providerHandler.RejectApplication)
				r.Put("/requests/{id}/status", requestHandler.SetStatus)
			})
		})
	})

	return r
}
