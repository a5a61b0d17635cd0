package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/api/shared"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/service"
	"github.com/phrazzld/servicehub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRoutes(t *testing.T) {
	api := newTestAPI(t)
	plumbing := &domain.ServiceCategory{ID: uuid.New(), Name: "Plumbing"}
	api.categories.listFn = func(context.Context) ([]*domain.ServiceCategory, error) {
		return []*domain.ServiceCategory{plumbing}, nil
	}
	api.categories.getFn = func(_ context.Context, id uuid.UUID) (*domain.ServiceCategory, error) {
		if id == plumbing.ID {
			return plumbing, nil
		}
		return nil, store.ErrCategoryNotFound
	}
	api.categories.createFn = func(_ context.Context, actor domain.Actor, name string) (*domain.ServiceCategory, error) {
		require.True(t, actor.IsStaff)
		return &domain.ServiceCategory{ID: uuid.New(), Name: name}, nil
	}

	rec := api.do(http.MethodGet, "/api/categories", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ServiceCategory](t, rec), 1)

	rec = api.do(http.MethodGet, "/api/categories/"+plumbing.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/categories/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", decode[shared.ErrorResponse](t, rec).Error)

	rec = api.do(http.MethodGet, "/api/categories/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	client := api.client()
	rec = api.do(http.MethodPost, "/api/categories", &client, CreateCategoryRequest{Name: "Towing"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/categories", nil, CreateCategoryRequest{Name: "Towing"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	staff := api.staff()
	rec = api.do(http.MethodPost, "/api/categories", &staff, CreateCategoryRequest{Name: "Towing"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Towing", decode[domain.ServiceCategory](t, rec).Name)
}

func TestProviderRoutes(t *testing.T) {
	api := newTestAPI(t)
	category := uuid.New()
	provider := &domain.Provider{ID: uuid.New(), OwnerID: uuid.New(), TaxID: "123", Stars: 450, Active: true, CategoryIDs: []uuid.UUID{category}}

	var gotFilter store.ProviderFilter
	api.onboarding.listProvidersFn = func(_ context.Context, filter store.ProviderFilter) ([]*domain.Provider, error) {
		gotFilter = filter
		return []*domain.Provider{provider}, nil
	}
	api.onboarding.getProviderFn = func(_ context.Context, id uuid.UUID) (*domain.Provider, error) {
		if id != provider.ID {
			return nil, service.NewServiceError("get_provider", "failed to load provider", store.ErrProviderNotFound)
		}
		return provider, nil
	}
	api.ratings.listFn = func(_ context.Context, providerID uuid.UUID, limit, offset int) ([]*domain.Rating, error) {
		assert.Equal(t, 5, limit)
		assert.Equal(t, 10, offset)
		return []*domain.Rating{{ID: uuid.New(), ProviderID: providerID, Score: 500}}, nil
	}

	rec := api.do(http.MethodGet, fmt.Sprintf("/api/providers?category=%s&limit=20", category), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotFilter.ActiveOnly)
	assert.Equal(t, 20, gotFilter.Limit)
	if assert.NotNil(t, gotFilter.CategoryID) {
		assert.Equal(t, category, *gotFilter.CategoryID)
	}
	assert.Contains(t, rec.Body.String(), `"stars":4.50`)

	rec = api.do(http.MethodGet, "/api/providers?include_inactive=true", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotFilter.ActiveOnly)

	rec = api.do(http.MethodGet, "/api/providers?limit=1000", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/providers/"+provider.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/providers/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/providers/"+provider.ID.String()+"/ratings?limit=5&offset=10", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"score":5.00`)
}

func TestProviderAdminRoutes(t *testing.T) {
	api := newTestAPI(t)
	staff := api.staff()
	client := api.client()
	owner := uuid.New()
	category := uuid.New()

	api.onboarding.createProviderFn = func(_ context.Context, admin domain.Actor, ownerID uuid.UUID, categoryIDs []uuid.UUID, taxID, description string) (*domain.Provider, error) {
		if ownerID == owner {
			return nil, service.NewServiceError("create_provider", "owner already a provider", domain.ErrDuplicateProvider)
		}
		return &domain.Provider{ID: uuid.New(), OwnerID: ownerID, TaxID: taxID, CategoryIDs: categoryIDs, Active: true}, nil
	}
	api.onboarding.setActiveFn = func(_ context.Context, admin domain.Actor, providerID uuid.UUID, active bool) (*domain.Provider, error) {
		return &domain.Provider{ID: providerID, Active: active}, nil
	}

	body := CreateProviderRequest{OwnerID: uuid.New(), CategoryIDs: []uuid.UUID{category}, TaxID: "999"}
	rec := api.do(http.MethodPost, "/api/providers", &staff, body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodPost, "/api/providers", &client, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body.OwnerID = owner
	rec = api.do(http.MethodPost, "/api/providers", &staff, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/providers", &staff, CreateProviderRequest{OwnerID: uuid.New(), TaxID: "999"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := uuid.NewString()
	rec = api.do(http.MethodPatch, "/api/providers/"+id+"/active", &staff, `{"active":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.Provider](t, rec).Active)

	rec = api.do(http.MethodPatch, "/api/providers/"+id+"/active", &staff, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationRoutes(t *testing.T) {
	api := newTestAPI(t)
	staff := api.staff()
	applicant := api.client()
	category := uuid.New()
	app := &domain.ProviderApplication{
		ID: uuid.New(), ApplicantID: applicant.ID, CategoryIDs: []uuid.UUID{category},
		TaxID: "123", Status: domain.ApplicationStatusPending, CreatedAt: time.Now().UTC(),
	}

	api.onboarding.submitFn = func(_ context.Context, actor domain.Actor, categoryIDs []uuid.UUID, taxID, _ string) (*domain.ProviderApplication, error) {
		if taxID == app.TaxID {
			return nil, service.NewServiceError("submit_application", "duplicate", domain.ErrDuplicateApplication)
		}
		return &domain.ProviderApplication{ID: uuid.New(), ApplicantID: actor.ID, CategoryIDs: categoryIDs, TaxID: taxID, Status: domain.ApplicationStatusPending}, nil
	}
	var gotFilter store.ApplicationFilter
	api.onboarding.listApplicationsFn = func(_ context.Context, _ domain.Actor, filter store.ApplicationFilter) ([]*domain.ProviderApplication, error) {
		gotFilter = filter
		return []*domain.ProviderApplication{app}, nil
	}
	api.onboarding.getApplicationFn = func(_ context.Context, actor domain.Actor, id uuid.UUID) (*domain.ProviderApplication, error) {
		if !actor.IsStaff && actor.ID != app.ApplicantID {
			return nil, store.ErrApplicationNotFound
		}
		return app, nil
	}
	approvals := 0
	api.onboarding.approveFn = func(_ context.Context, id uuid.UUID, reviewer domain.Actor) (*domain.Provider, error) {
		approvals++
		if approvals > 1 {
			return nil, service.NewServiceError("approve_application", "already reviewed", domain.ErrAlreadyReviewed)
		}
		return &domain.Provider{ID: uuid.New(), OwnerID: app.ApplicantID, Active: true}, nil
	}
	api.onboarding.rejectFn = func(_ context.Context, id uuid.UUID, reviewer domain.Actor) (*domain.ProviderApplication, error) {
		return nil, service.NewServiceError("reject_application", "already reviewed", domain.ErrAlreadyReviewed)
	}

	rec := api.do(http.MethodPost, "/api/applications", &applicant, SubmitApplicationRequest{CategoryIDs: []uuid.UUID{category}, TaxID: "456"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodPost, "/api/applications", &applicant, SubmitApplicationRequest{CategoryIDs: []uuid.UUID{category}, TaxID: "123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodGet, "/api/applications?status=pending", &applicant, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, gotFilter.Status) {
		assert.Equal(t, domain.ApplicationStatusPending, *gotFilter.Status)
	}

	rec = api.do(http.MethodGet, "/api/applications?status=archived", &applicant, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	other := api.client()
	rec = api.do(http.MethodGet, "/api/applications/"+app.ID.String(), &other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/applications/"+app.ID.String()+"/approve", &applicant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, approvals)

	rec = api.do(http.MethodPost, "/api/applications/"+app.ID.String()+"/approve", &staff, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodPost, "/api/applications/"+app.ID.String()+"/approve", &staff, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Application has already been reviewed", decode[shared.ErrorResponse](t, rec).Error)

	rec = api.do(http.MethodPost, "/api/applications/"+app.ID.String()+"/reject", &staff, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
