package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/api/shared"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// Onboarding is the part of service.ProviderOnboarding the handlers use.
type Onboarding interface {
	Submit(ctx context.Context, actor domain.Actor, categoryIDs []uuid.UUID, taxID, description string) (*domain.ProviderApplication, error)
	Approve(ctx context.Context, applicationID uuid.UUID, reviewer domain.Actor) (*domain.Provider, error)
	Reject(ctx context.Context, applicationID uuid.UUID, reviewer domain.Actor) (*domain.ProviderApplication, error)
	CreateProvider(ctx context.Context, admin domain.Actor, ownerID uuid.UUID, categoryIDs []uuid.UUID, taxID, description string) (*domain.Provider, error)
	SetProviderActive(ctx context.Context, admin domain.Actor, providerID uuid.UUID, active bool) (*domain.Provider, error)
	GetApplication(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) (*domain.ProviderApplication, error)
	ListApplications(ctx context.Context, actor domain.Actor, filter store.ApplicationFilter) ([]*domain.ProviderApplication, error)
	GetProvider(ctx context.Context, providerID uuid.UUID) (*domain.Provider, error)
	ListProviders(ctx context.Context, filter store.ProviderFilter) ([]*domain.Provider, error)
}

// ProviderHandler serves provider profiles and provider applications.
type ProviderHandler struct {
	onboarding Onboarding
	ratings    RatingBook
}

// NewProviderHandler creates a ProviderHandler.
func NewProviderHandler(onboarding Onboarding, ratings RatingBook) *ProviderHandler {
	return &ProviderHandler{onboarding: onboarding, ratings: ratings}
}

// ListProviders handles GET /providers. Deactivated providers are hidden
// unless include_inactive=true.
func (h *ProviderHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	categoryID, err := queryUUID(r, "category")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	providers, err := h.onboarding.ListProviders(r.Context(), store.ProviderFilter{
		CategoryID: categoryID,
		ActiveOnly: r.URL.Query().Get("include_inactive") != "true",
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list providers")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, providers)
}

// GetProvider handles GET /providers/{id}.
func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}
	provider, err := h.onboarding.GetProvider(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get provider")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, provider)
}

// ListRatings handles GET /providers/{id}/ratings.
func (h *ProviderHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	ratings, err := h.ratings.ListProviderRatings(r.Context(), id, p.Limit, p.Offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list ratings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ratings)
}

// CreateProvider handles POST /providers.
func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateProviderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	provider, err := h.onboarding.CreateProvider(r.Context(), actor, req.OwnerID, req.CategoryIDs, req.TaxID, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create provider")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, provider)
}

// SetActive handles PATCH /providers/{id}/active.
func (h *ProviderHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	provider, err := h.onboarding.SetProviderActive(r.Context(), actor, id, *req.Active)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update provider")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, provider)
}

// SubmitApplication handles POST /applications.
func (h *ProviderHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req SubmitApplicationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	app, err := h.onboarding.Submit(r.Context(), actor, req.CategoryIDs, req.TaxID, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit application")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, app)
}

// ListApplications handles GET /applications. Non-staff callers only see
// their own applications.
func (h *ProviderHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	p, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter := store.ApplicationFilter{Limit: p.Limit, Offset: p.Offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.ApplicationStatus(raw)
		switch status {
		case domain.ApplicationStatusPending, domain.ApplicationStatusApproved, domain.ApplicationStatusRejected:
			filter.Status = &status
		default:
			HandleAPIError(w, r, domain.NewValidationError("status", "is not a known application status", domain.ErrValidation), "")
			return
		}
	}
	apps, err := h.onboarding.ListApplications(r.Context(), actor, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list applications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, apps)
}

// GetApplication handles GET /applications/{id}.
func (h *ProviderHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	app, err := h.onboarding.GetApplication(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get application")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, app)
}

// ApproveApplication handles POST /applications/{id}/approve and returns
// the new provider.
func (h *ProviderHandler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	provider, err := h.onboarding.Approve(r.Context(), id, actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to approve application")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, provider)
}

// RejectApplication handles POST /applications/{id}/reject.
func (h *ProviderHandler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	app, err := h.onboarding.Reject(r.Context(), id, actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reject application")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, app)
}
