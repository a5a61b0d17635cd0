package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// UserStore is a testify mock of store.UserStore.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.User)
	return v, args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	v, _ := args.Get(0).(*domain.User)
	return v, args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// WithTx returns the receiver.
func (m *UserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}

// CategoryStore is a testify mock of store.CategoryStore.
type CategoryStore struct {
	mock.Mock
}

var _ store.CategoryStore = (*CategoryStore)(nil)

func (m *CategoryStore) Create(ctx context.Context, category *domain.ServiceCategory) error {
	return m.Called(ctx, category).Error(0)
}

func (m *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceCategory, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ServiceCategory)
	return v, args.Error(1)
}

func (m *CategoryStore) GetByName(ctx context.Context, name string) (*domain.ServiceCategory, error) {
	args := m.Called(ctx, name)
	v, _ := args.Get(0).(*domain.ServiceCategory)
	return v, args.Error(1)
}

func (m *CategoryStore) List(ctx context.Context) ([]*domain.ServiceCategory, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*domain.ServiceCategory)
	return v, args.Error(1)
}

// WithTx returns the receiver.
func (m *CategoryStore) WithTx(*sql.Tx) store.CategoryStore {
	return m
}

// ProviderStore is a testify mock of store.ProviderStore.
type ProviderStore struct {
	mock.Mock
}

var _ store.ProviderStore = (*ProviderStore)(nil)

func (m *ProviderStore) Create(ctx context.Context, provider *domain.Provider) error {
	return m.Called(ctx, provider).Error(0)
}

func (m *ProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.Provider)
	return v, args.Error(1)
}

func (m *ProviderStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.Provider)
	return v, args.Error(1)
}

func (m *ProviderStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Provider, error) {
	args := m.Called(ctx, ownerID)
	v, _ := args.Get(0).(*domain.Provider)
	return v, args.Error(1)
}

func (m *ProviderStore) List(ctx context.Context, filter store.ProviderFilter) ([]*domain.Provider, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*domain.Provider)
	return v, args.Error(1)
}

func (m *ProviderStore) UpdateStars(ctx context.Context, id uuid.UUID, stars domain.Stars) error {
	return m.Called(ctx, id, stars).Error(0)
}

func (m *ProviderStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

// WithTx returns the receiver.
func (m *ProviderStore) WithTx(*sql.Tx) store.ProviderStore {
	return m
}

// ApplicationStore is a testify mock of store.ApplicationStore.
type ApplicationStore struct {
	mock.Mock
}

var _ store.ApplicationStore = (*ApplicationStore)(nil)

func (m *ApplicationStore) Create(ctx context.Context, app *domain.ProviderApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *ApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderApplication, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ProviderApplication)
	return v, args.Error(1)
}

func (m *ApplicationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProviderApplication, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ProviderApplication)
	return v, args.Error(1)
}

func (m *ApplicationStore) UpdateReview(ctx context.Context, app *domain.ProviderApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *ApplicationStore) List(ctx context.Context, filter store.ApplicationFilter) ([]*domain.ProviderApplication, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*domain.ProviderApplication)
	return v, args.Error(1)
}

// WithTx returns the receiver.
func (m *ApplicationStore) WithTx(*sql.Tx) store.ApplicationStore {
	return m
}

// RequestStore is a testify mock of store.RequestStore.
type RequestStore struct {
	mock.Mock
}

var _ store.RequestStore = (*RequestStore)(nil)

func (m *RequestStore) Create(ctx context.Context, request *domain.ServiceRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *RequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ServiceRequest)
	return v, args.Error(1)
}

func (m *RequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ServiceRequest)
	return v, args.Error(1)
}

func (m *RequestStore) Update(ctx context.Context, request *domain.ServiceRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *RequestStore) ListVisible(ctx context.Context, scope store.RequestScope, filter store.RequestFilter) ([]*domain.ServiceRequest, error) {
	args := m.Called(ctx, scope, filter)
	v, _ := args.Get(0).([]*domain.ServiceRequest)
	return v, args.Error(1)
}

// WithTx returns the receiver.
func (m *RequestStore) WithTx(*sql.Tx) store.RequestStore {
	return m
}

// RatingStore is a testify mock of store.RatingStore.
type RatingStore struct {
	mock.Mock
}

var _ store.RatingStore = (*RatingStore)(nil)

func (m *RatingStore) Create(ctx context.Context, rating *domain.Rating) error {
	return m.Called(ctx, rating).Error(0)
}

func (m *RatingStore) GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.Rating, error) {
	args := m.Called(ctx, requestID)
	v, _ := args.Get(0).(*domain.Rating)
	return v, args.Error(1)
}

func (m *RatingStore) ListScoresByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Stars, error) {
	args := m.Called(ctx, providerID)
	v, _ := args.Get(0).([]domain.Stars)
	return v, args.Error(1)
}

func (m *RatingStore) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*domain.Rating, error) {
	args := m.Called(ctx, providerID, limit, offset)
	v, _ := args.Get(0).([]*domain.Rating)
	return v, args.Error(1)
}

// WithTx returns the receiver.
func (m *RatingStore) WithTx(*sql.Tx) store.RatingStore {
	return m
}
