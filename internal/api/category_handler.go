package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/api/shared"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// CategoryCatalog is the part of service.CategoryService the handlers use.
type CategoryCatalog interface {
	Create(ctx context.Context, actor domain.Actor, name string) (*domain.ServiceCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ServiceCategory, error)
	List(ctx context.Context) ([]*domain.ServiceCategory, error)
}

// CategoryHandler serves the category catalog.
type CategoryHandler struct {
	categories CategoryCatalog
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(categories CategoryCatalog) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, category)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	category, err := h.categories.Create(r.Context(), actor, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, category)
}
