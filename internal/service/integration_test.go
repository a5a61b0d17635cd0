//go:build integration

package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/config"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/platform/postgres"
	"github.com/phrazzld/servicehub-api/internal/service"
	"github.com/phrazzld/servicehub-api/internal/store"
	"github.com/phrazzld/servicehub-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stack is the service layer over a migrated, empty database.
type stack struct {
	users      store.UserStore
	categories store.CategoryStore
	providers  store.ProviderStore
	onboarding *service.ProviderOnboarding
	lifecycle  *service.RequestLifecycle
	ratings    *service.RatingSubmission
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db := testdb.Open(t)

	tx := service.NewTransactor(db, config.LifecycleConfig{
		RetryAttempts:   5,
		RetryInitial:    10 * time.Millisecond,
		RetryMaxBackoff: 100 * time.Millisecond,
	}, testLogger, postgres.LockTimeout(2*time.Second))

	s := &stack{
		users:      postgres.NewPostgresUserStore(db, bcrypt.MinCost),
		categories: postgres.NewPostgresCategoryStore(db, testLogger),
		providers:  postgres.NewPostgresProviderStore(db, testLogger),
	}
	applications := postgres.NewPostgresApplicationStore(db, testLogger)
	requests := postgres.NewPostgresRequestStore(db, testLogger)
	ratings := postgres.NewPostgresRatingStore(db, testLogger)

	var err error
	s.onboarding, err = service.NewProviderOnboarding(applications, s.providers, tx, nil, testLogger)
	require.NoError(t, err)
	s.lifecycle, err = service.NewRequestLifecycle(requests, tx, nil, testLogger)
	require.NoError(t, err)
	reputation, err := service.NewReputationAggregator(ratings, s.providers, tx, testLogger)
	require.NoError(t, err)
	s.ratings, err = service.NewRatingSubmission(requests, ratings, s.providers, reputation, tx, nil, testLogger)
	require.NoError(t, err)
	return s
}

func (s *stack) user(t *testing.T, staff bool) domain.Actor {
	t.Helper()
	id := uuid.NewString()[:8]
	u, err := domain.NewUser("user-"+id+"@example.com", "user-"+id, "long-enough-password")
	require.NoError(t, err)
	u.IsStaff = staff
	require.NoError(t, s.users.Create(context.Background(), u))
	return domain.Actor{ID: u.ID, IsStaff: staff}
}

func (s *stack) category(t *testing.T, name string) uuid.UUID {
	t.Helper()
	c, err := domain.NewServiceCategory(name)
	require.NoError(t, err)
	require.NoError(t, s.categories.Create(context.Background(), c))
	return c.ID
}

func (s *stack) provider(t *testing.T, admin domain.Actor, taxID string, categories ...uuid.UUID) domain.Actor {
	t.Helper()
	owner := s.user(t, false)
	p, err := s.onboarding.CreateProvider(context.Background(), admin, owner.ID, categories, taxID, "")
	require.NoError(t, err)
	owner.Provider = p
	return owner
}

// completed walks a new request through accept and complete.
func (s *stack) completed(t *testing.T, client, provider domain.Actor, category uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	r, err := s.lifecycle.Create(ctx, client, category, "Fix the sink", "", "Rua A, 1")
	require.NoError(t, err)
	_, err = s.lifecycle.Accept(ctx, r.ID, provider)
	require.NoError(t, err)
	_, err = s.lifecycle.Complete(ctx, r.ID, provider)
	require.NoError(t, err)
	return r.ID
}

func TestIntegration_ConcurrentAcceptHasOneWinner(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := s.user(t, true)
	client := s.user(t, false)
	plumbing := s.category(t, "Plumbing")

	const contenders = 8
	providers := make([]domain.Actor, contenders)
	for i := range providers {
		providers[i] = s.provider(t, admin, fmt.Sprintf("tax-%d", i), plumbing)
	}
	request, err := s.lifecycle.Create(ctx, client, plumbing, "Burst pipe", "", "Rua A, 1")
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		winner []uuid.UUID
		losers int
	)
	start := make(chan struct{})
	for _, p := range providers {
		wg.Add(1)
		go func(p domain.Actor) {
			defer wg.Done()
			<-start
			_, err := s.lifecycle.Accept(ctx, request.ID, p)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winner = append(winner, p.ProviderID())
			case errors.Is(err, domain.ErrAlreadyAssigned):
				losers++
			default:
				t.Errorf("unexpected accept error: %v", err)
			}
		}(p)
	}
	close(start)
	wg.Wait()

	require.Len(t, winner, 1)
	assert.Equal(t, contenders-1, losers)

	got, err := s.lifecycle.Get(ctx, request.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInProgress, got.Status)
	require.NotNil(t, got.ProviderID)
	assert.Equal(t, winner[0], *got.ProviderID)
}

func TestIntegration_ConcurrentApproveCreatesOneProvider(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	reviewers := []domain.Actor{s.user(t, true), s.user(t, true), s.user(t, true)}
	applicant := s.user(t, false)
	cleaning := s.category(t, "Cleaning")

	app, err := s.onboarding.Submit(ctx, applicant, []uuid.UUID{cleaning}, "12345678901", "")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, reviewer := range reviewers {
		wg.Add(1)
		go func(reviewer domain.Actor) {
			defer wg.Done()
			_, err := s.onboarding.Approve(ctx, app.ID, reviewer)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if !errors.Is(err, domain.ErrAlreadyReviewed) && !errors.Is(err, domain.ErrDuplicateProvider) {
				t.Errorf("unexpected approve error: %v", err)
			}
		}(reviewer)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	p, err := s.providers.GetByOwner(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{cleaning}, p.CategoryIDs)
	assert.Equal(t, domain.Stars(0), p.Stars)
}

func TestIntegration_StarsTrackMeanOfRatings(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := s.user(t, true)
	painting := s.category(t, "Painting")
	provider := s.provider(t, admin, "98765", painting)

	scores := []string{"5", "4.5", "3.25", "4", "2.75", "5.00"}
	requestIDs := make([]uuid.UUID, len(scores))
	clients := make([]domain.Actor, len(scores))
	for i := range scores {
		clients[i] = s.user(t, false)
		requestIDs[i] = s.completed(t, clients[i], provider, painting)
	}

	var wg sync.WaitGroup
	for i, score := range scores {
		wg.Add(1)
		go func(i int, score string) {
			defer wg.Done()
			_, err := s.ratings.Rate(ctx, requestIDs[i], clients[i], score, "")
			assert.NoError(t, err)
		}(i, score)
	}
	wg.Wait()

	parsed := make([]domain.Stars, len(scores))
	for i, score := range scores {
		var err error
		parsed[i], err = domain.ParseStars(score)
		require.NoError(t, err)
	}
	p, err := s.providers.GetByID(ctx, provider.ProviderID())
	require.NoError(t, err)
	assert.Equal(t, domain.MeanStars(parsed), p.Stars)
	assert.Equal(t, "4.08", p.Stars.String())
}

func TestIntegration_ConcurrentApprovalsForOneApplicant(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	reviewer := s.user(t, true)
	applicant := s.user(t, false)
	carpentry := s.category(t, "Carpentry")

	first, err := s.onboarding.Submit(ctx, applicant, []uuid.UUID{carpentry}, "11111111111", "")
	require.NoError(t, err)
	second, err := s.onboarding.Submit(ctx, applicant, []uuid.UUID{carpentry}, "22222222222", "")
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, app := range []*domain.ProviderApplication{first, second} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = s.onboarding.Approve(ctx, id, reviewer)
		}(i, app.ID)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			assert.ErrorIs(t, err, domain.ErrDuplicateProvider)
		}
	}
	assert.Equal(t, 1, failed)

	providers, err := s.onboarding.ListProviders(ctx, store.ProviderFilter{})
	require.NoError(t, err)
	assert.Len(t, providers, 1)
}

func TestIntegration_PlumbingScenario(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := s.user(t, true)
	client := s.user(t, false)
	plumbing := s.category(t, "Plumbing")
	electrical := s.category(t, "Electrical")
	p1 := s.provider(t, admin, "111", plumbing)
	p2 := s.provider(t, admin, "222", electrical)

	r, err := s.lifecycle.Create(ctx, client, plumbing, "Leaking pipe", "", "Rua B, 2")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, r.Status)

	accepted, err := s.lifecycle.Accept(ctx, r.ID, p1)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInProgress, accepted.Status)
	assert.Equal(t, p1.ProviderID(), *accepted.ProviderID)

	rejected, err := s.lifecycle.Reject(ctx, r.ID, p1)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, rejected.Status)
	assert.Nil(t, rejected.ProviderID)

	_, err = s.lifecycle.Accept(ctx, r.ID, p2)
	assert.ErrorIs(t, err, domain.ErrCategoryMismatch)

	_, err = s.ratings.Rate(ctx, r.ID, client, "5", "")
	assert.ErrorIs(t, err, domain.ErrNotCompleted)

	reaccepted, err := s.lifecycle.Accept(ctx, r.ID, p1)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInProgress, reaccepted.Status)

	completed, err := s.lifecycle.SetStatus(ctx, r.ID, admin, domain.RequestStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletionDate)

	_, err = s.lifecycle.Cancel(ctx, r.ID, client)
	assert.ErrorIs(t, err, domain.ErrTerminalState)

	rating, err := s.ratings.Rate(ctx, r.ID, client, "4.5", "quick and friendly")
	require.NoError(t, err)
	assert.Equal(t, p1.ProviderID(), rating.ProviderID)

	p, err := s.providers.GetByID(ctx, p1.ProviderID())
	require.NoError(t, err)
	assert.Equal(t, "4.50", p.Stars.String())

	_, err = s.ratings.Rate(ctx, r.ID, client, "3.0", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyRated)

	ratings, err := s.ratings.ListProviderRatings(ctx, p1.ProviderID(), 10, 0)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, "quick and friendly", ratings[0].Comment)
}
