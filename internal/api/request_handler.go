package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/api/shared"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// Lifecycle is the part of service.RequestLifecycle the handlers use.
type Lifecycle interface {
	Create(ctx context.Context, actor domain.Actor, categoryID uuid.UUID, title, description, address string) (*domain.ServiceRequest, error)
	Accept(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)
	Complete(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)
	Cancel(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)
	SetStatus(ctx context.Context, requestID uuid.UUID, actor domain.Actor, status domain.RequestStatus) (*domain.ServiceRequest, error)
	UpdateDetails(ctx context.Context, requestID uuid.UUID, actor domain.Actor, title, description, address string) (*domain.ServiceRequest, error)
	Get(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)
	ListVisible(ctx context.Context, actor domain.Actor, filter store.RequestFilter) ([]*domain.ServiceRequest, error)
}

// RatingBook is the part of service.RatingSubmission the handlers use.
type RatingBook interface {
	Rate(ctx context.Context, requestID uuid.UUID, actor domain.Actor, score string, comment string) (*domain.Rating, error)
	GetRequestRating(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.Rating, error)
	ListProviderRatings(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*domain.Rating, error)
}

// RequestHandler serves service requests and their ratings.
type RequestHandler struct {
	lifecycle Lifecycle
	ratings   RatingBook
}

// NewRequestHandler creates a RequestHandler.
func NewRequestHandler(lifecycle Lifecycle, ratings RatingBook) *RequestHandler {
	return &RequestHandler{lifecycle: lifecycle, ratings: ratings}
}

// Create handles POST /requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateServiceRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	request, err := h.lifecycle.Create(r.Context(), actor, req.CategoryID, req.Title, req.Description, req.Address)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create request")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, request)
}

// List handles GET /requests. The result is limited to what the caller may see.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	p, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter := store.RequestFilter{Limit: p.Limit, Offset: p.Offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.RequestStatus(raw)
		if !status.Valid() {
			HandleAPIError(w, r, domain.NewValidationError("status", "is not a known request status", domain.ErrValidation), "")
			return
		}
		filter.Status = &status
	}
	requests, err := h.lifecycle.ListVisible(r.Context(), actor, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list requests")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, requests)
}

// Get handles GET /requests/{id}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	request, err := h.lifecycle.Get(r.Context(), id, actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get request")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, request)
}

// Update handles PATCH /requests/{id}.
func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateServiceRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	current, err := h.lifecycle.Get(r.Context(), id, actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update request")
		return
	}
	title, description, address := current.Title, current.Description, current.Address
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Address != nil {
		address = *req.Address
	}
	request, err := h.lifecycle.UpdateDetails(r.Context(), id, actor, title, description, address)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update request")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, request)
}

type transitionFunc func(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)

// transition adapts a lifecycle operation without a body to a handler.
func (h *RequestHandler) transition(fn transitionFunc, fallback string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, id, ok := handleActorAndPathUUID(w, r, "id")
		if !ok {
			return
		}
		request, err := fn(r.Context(), id, actor)
		if err != nil {
			HandleAPIError(w, r, err, fallback)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, request)
	}
}

// Accept handles POST /requests/{id}/accept.
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(h.lifecycle.Accept, "Failed to accept request")(w, r)
}

// Reject handles POST /requests/{id}/reject.
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(h.lifecycle.Reject, "Failed to reject request")(w, r)
}

// Complete handles POST /requests/{id}/complete.
func (h *RequestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(h.lifecycle.Complete, "Failed to complete request")(w, r)
}

// Cancel handles POST /requests/{id}/cancel.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(h.lifecycle.Cancel, "Failed to cancel request")(w, r)
}

// SetStatus handles PUT /requests/{id}/status.
func (h *RequestHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req SetStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	request, err := h.lifecycle.SetStatus(r.Context(), id, actor, domain.RequestStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set request status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, request)
}

// Rate handles POST /requests/{id}/rating.
func (h *RequestHandler) Rate(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req RateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rating, err := h.ratings.Rate(r.Context(), id, actor, req.Score.String(), req.Comment)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rate request")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, rating)
}

// GetRating handles GET /requests/{id}/rating.
func (h *RequestHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := handleActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	rating, err := h.ratings.GetRequestRating(r.Context(), id, actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get rating")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rating)
}

// Me handles GET /me.
func Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MeResponse{
		ID:       actor.ID,
		IsStaff:  actor.IsStaff,
		Provider: actor.Provider,
	})
}
