package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/mocks"
	"github.com/phrazzld/servicehub-api/internal/service"
	"github.com/phrazzld/servicehub-api/internal/service/auth"
	"github.com/phrazzld/servicehub-api/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	registerFn func(ctx context.Context, reg service.Registration) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*service.TokenPair, error)
	refreshFn  func(ctx context.Context, token string) (*service.TokenPair, error)
}

func (f *fakeUsers) Register(ctx context.Context, reg service.Registration) (*domain.User, error) {
	return f.registerFn(ctx, reg)
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*service.TokenPair, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeUsers) Refresh(ctx context.Context, token string) (*service.TokenPair, error) {
	return f.refreshFn(ctx, token)
}

type fakeCategories struct {
	createFn func(ctx context.Context, actor domain.Actor, name string) (*domain.ServiceCategory, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.ServiceCategory, error)
	listFn   func(ctx context.Context) ([]*domain.ServiceCategory, error)
}

func (f *fakeCategories) Create(ctx context.Context, actor domain.Actor, name string) (*domain.ServiceCategory, error) {
	return f.createFn(ctx, actor, name)
}

func (f *fakeCategories) Get(ctx context.Context, id uuid.UUID) (*domain.ServiceCategory, error) {
	return f.getFn(ctx, id)
}

func (f *fakeCategories) List(ctx context.Context) ([]*domain.ServiceCategory, error) {
	return f.listFn(ctx)
}

type fakeOnboarding struct {
	submitFn           func(ctx context.Context, actor domain.Actor, categoryIDs []uuid.UUID, taxID, description string) (*domain.ProviderApplication, error)
	approveFn          func(ctx context.Context, applicationID uuid.UUID, reviewer domain.Actor) (*domain.Provider, error)
	rejectFn           func(ctx context.Context, applicationID uuid.UUID, reviewer domain.Actor) (*domain.ProviderApplication, error)
	createProviderFn   func(ctx context.Context, admin domain.Actor, ownerID uuid.UUID, categoryIDs []uuid.UUID, taxID, description string) (*domain.Provider, error)
	setActiveFn        func(ctx context.Context, admin domain.Actor, providerID uuid.UUID, active bool) (*domain.Provider, error)
	getApplicationFn   func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.ProviderApplication, error)
	listApplicationsFn func(ctx context.Context, actor domain.Actor, filter store.ApplicationFilter) ([]*domain.ProviderApplication, error)
	getProviderFn      func(ctx context.Context, id uuid.UUID) (*domain.Provider, error)
	listProvidersFn    func(ctx context.Context, filter store.ProviderFilter) ([]*domain.Provider, error)
}

func (f *fakeOnboarding) Submit(ctx context.Context, actor domain.Actor, categoryIDs []uuid.UUID, taxID, description string) (*domain.ProviderApplication, error) {
	return f.submitFn(ctx, actor, categoryIDs, taxID, description)
}

func (f *fakeOnboarding) Approve(ctx context.Context, applicationID uuid.UUID, reviewer domain.Actor) (*domain.Provider, error) {
	return f.approveFn(ctx, applicationID, reviewer)
}

func (f *fakeOnboarding) Reject(ctx context.Context, applicationID uuid.UUID, reviewer domain.Actor) (*domain.ProviderApplication, error) {
	return f.rejectFn(ctx, applicationID, reviewer)
}

func (f *fakeOnboarding) CreateProvider(ctx context.Context, admin domain.Actor, ownerID uuid.UUID, categoryIDs []uuid.UUID, taxID, description string) (*domain.Provider, error) {
	return f.createProviderFn(ctx, admin, ownerID, categoryIDs, taxID, description)
}

func (f *fakeOnboarding) SetProviderActive(ctx context.Context, admin domain.Actor, providerID uuid.UUID, active bool) (*domain.Provider, error) {
	return f.setActiveFn(ctx, admin, providerID, active)
}

func (f *fakeOnboarding) GetApplication(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.ProviderApplication, error) {
	return f.getApplicationFn(ctx, actor, id)
}

func (f *fakeOnboarding) ListApplications(ctx context.Context, actor domain.Actor, filter store.ApplicationFilter) ([]*domain.ProviderApplication, error) {
	return f.listApplicationsFn(ctx, actor, filter)
}

func (f *fakeOnboarding) GetProvider(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	return f.getProviderFn(ctx, id)
}

func (f *fakeOnboarding) ListProviders(ctx context.Context, filter store.ProviderFilter) ([]*domain.Provider, error) {
	return f.listProvidersFn(ctx, filter)
}

type fakeLifecycle struct {
	createFn     func(ctx context.Context, actor domain.Actor, categoryID uuid.UUID, title, description, address string) (*domain.ServiceRequest, error)
	transitionFn func(op string, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)
	setStatusFn  func(ctx context.Context, requestID uuid.UUID, actor domain.Actor, status domain.RequestStatus) (*domain.ServiceRequest, error)
	updateFn     func(ctx context.Context, requestID uuid.UUID, actor domain.Actor, title, description, address string) (*domain.ServiceRequest, error)
	getFn        func(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error)
	listFn       func(ctx context.Context, actor domain.Actor, filter store.RequestFilter) ([]*domain.ServiceRequest, error)
}

func (f *fakeLifecycle) Create(ctx context.Context, actor domain.Actor, categoryID uuid.UUID, title, description, address string) (*domain.ServiceRequest, error) {
	return f.createFn(ctx, actor, categoryID, title, description, address)
}

func (f *fakeLifecycle) Accept(_ context.Context, id uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error) {
	return f.transitionFn("accept", id, actor)
}

func (f *fakeLifecycle) Reject(_ context.Context, id uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error) {
	return f.transitionFn("reject", id, actor)
}

func (f *fakeLifecycle) Complete(_ context.Context, id uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error) {
	return f.transitionFn("complete", id, actor)
}

func (f *fakeLifecycle) Cancel(_ context.Context, id uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error) {
	return f.transitionFn("cancel", id, actor)
}

func (f *fakeLifecycle) SetStatus(ctx context.Context, id uuid.UUID, actor domain.Actor, status domain.RequestStatus) (*domain.ServiceRequest, error) {
	return f.setStatusFn(ctx, id, actor, status)
}

func (f *fakeLifecycle) UpdateDetails(ctx context.Context, id uuid.UUID, actor domain.Actor, title, description, address string) (*domain.ServiceRequest, error) {
	return f.updateFn(ctx, id, actor, title, description, address)
}

func (f *fakeLifecycle) Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.ServiceRequest, error) {
	return f.getFn(ctx, id, actor)
}

func (f *fakeLifecycle) ListVisible(ctx context.Context, actor domain.Actor, filter store.RequestFilter) ([]*domain.ServiceRequest, error) {
	return f.listFn(ctx, actor, filter)
}

type fakeRatings struct {
	rateFn func(ctx context.Context, requestID uuid.UUID, actor domain.Actor, score, comment string) (*domain.Rating, error)
	getFn  func(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.Rating, error)
	listFn func(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*domain.Rating, error)
}

func (f *fakeRatings) Rate(ctx context.Context, requestID uuid.UUID, actor domain.Actor, score, comment string) (*domain.Rating, error) {
	return f.rateFn(ctx, requestID, actor, score, comment)
}

func (f *fakeRatings) GetRequestRating(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.Rating, error) {
	return f.getFn(ctx, requestID, actor)
}

func (f *fakeRatings) ListProviderRatings(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*domain.Rating, error) {
	return f.listFn(ctx, providerID, limit, offset)
}

type actorTable map[uuid.UUID]domain.Actor

func (t actorTable) Resolve(_ context.Context, userID uuid.UUID) (domain.Actor, error) {
	actor, ok := t[userID]
	if !ok {
		return domain.Actor{}, store.ErrUserNotFound
	}
	return actor, nil
}

// testAPI serves the real router over fakes. Bearer tokens are the user id
// of a registered actor.
type testAPI struct {
	t          *testing.T
	handler    http.Handler
	actors     actorTable
	users      *fakeUsers
	categories *fakeCategories
	onboarding *fakeOnboarding
	lifecycle  *fakeLifecycle
	ratings    *fakeRatings
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	a := &testAPI{
		t:          t,
		actors:     actorTable{},
		users:      &fakeUsers{},
		categories: &fakeCategories{},
		onboarding: &fakeOnboarding{},
		lifecycle:  &fakeLifecycle{},
		ratings:    &fakeRatings{},
	}
	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			id, err := uuid.Parse(token)
			if err != nil {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: id, TokenType: auth.TokenTypeAccess}, nil
		},
	}
	a.handler = NewRouter(RouterDeps{
		Users:      a.users,
		Categories: a.categories,
		Onboarding: a.onboarding,
		Lifecycle:  a.lifecycle,
		Ratings:    a.ratings,
		Actors:     a.actors,
		JWT:        jwt,
	})
	return a
}

func (a *testAPI) addActor(actor domain.Actor) domain.Actor {
	a.actors[actor.ID] = actor
	return actor
}

func (a *testAPI) client() domain.Actor {
	return a.addActor(domain.Actor{ID: uuid.New()})
}

func (a *testAPI) staff() domain.Actor {
	return a.addActor(domain.Actor{ID: uuid.New(), IsStaff: true})
}

func (a *testAPI) provider(categories ...uuid.UUID) domain.Actor {
	owner := uuid.New()
	return a.addActor(domain.Actor{ID: owner, Provider: &domain.Provider{
		ID: uuid.New(), OwnerID: owner, TaxID: "12345", Active: true, CategoryIDs: categories,
	}})
}

// do sends a request; as may be nil for anonymous calls. body is encoded as
// JSON unless it is already a string.
func (a *testAPI) do(method, path string, as *domain.Actor, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+as.ID.String())
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleRequest(client uuid.UUID, category uuid.UUID) *domain.ServiceRequest {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.ServiceRequest{
		ID:          uuid.New(),
		ClientID:    client,
		CategoryID:  category,
		Title:       "Leaking sink",
		Address:     "Rua A, 1",
		Status:      domain.RequestStatusPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}
}
