//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/platform/postgres"
	"github.com/phrazzld/servicehub-api/internal/store"
	"github.com/phrazzld/servicehub-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fixture holds rows created inside one rolled-back transaction.
type fixture struct {
	tx         *sql.Tx
	users      store.UserStore
	categories store.CategoryStore
	providers  store.ProviderStore
	requests   store.RequestStore
	ratings    store.RatingStore
}

func newFixture(tx *sql.Tx) *fixture {
	return &fixture{
		tx:         tx,
		users:      postgres.NewPostgresUserStore(tx, bcrypt.MinCost),
		categories: postgres.NewPostgresCategoryStore(tx, nil),
		providers:  postgres.NewPostgresProviderStore(tx, nil),
		requests:   postgres.NewPostgresRequestStore(tx, nil),
		ratings:    postgres.NewPostgresRatingStore(tx, nil),
	}
}

func (f *fixture) user(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.NewString()[:8]
	u, err := domain.NewUser(id+"@example.com", "user-"+id, "long-enough-password")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) category(t *testing.T, name string) uuid.UUID {
	t.Helper()
	c, err := domain.NewServiceCategory(name)
	require.NoError(t, err)
	require.NoError(t, f.categories.Create(context.Background(), c))
	return c.ID
}

func (f *fixture) provider(t *testing.T, taxID string, categories ...uuid.UUID) *domain.Provider {
	t.Helper()
	p, err := domain.NewProvider(f.user(t), categories, taxID, "")
	require.NoError(t, err)
	require.NoError(t, f.providers.Create(context.Background(), p))
	return p
}

func (f *fixture) request(t *testing.T, client, category uuid.UUID) *domain.ServiceRequest {
	t.Helper()
	r, err := domain.NewServiceRequest(client, category, "Leaking sink", "", "Rua A, 1")
	require.NoError(t, err)
	require.NoError(t, f.requests.Create(context.Background(), r))
	return r
}

func TestPostgresStores_MigrationsApply(t *testing.T) {
	db := testdb.Open(t)

	var tables int
	err := db.QueryRowContext(context.Background(), `
		SELECT count(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN
			('users', 'service_categories', 'providers', 'provider_categories',
			 'provider_applications', 'application_categories', 'service_requests', 'ratings')`,
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 8, tables)
}

func TestRequestStore_ListVisible(t *testing.T) {
	db := testdb.Open(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		f := newFixture(tx)
		plumbing := f.category(t, "Plumbing")
		painting := f.category(t, "Painting")
		plumber := f.provider(t, "111", plumbing)
		painter := f.provider(t, "222", painting)
		client := f.user(t)
		stranger := f.user(t)

		open := f.request(t, client, plumbing)
		held := f.request(t, client, painting)
		require.NoError(t, held.SetStatus(domain.RequestStatusInProgress, time.Now().UTC()))
		held.ProviderID = &painter.ID
		require.NoError(t, f.requests.Update(ctx, held))

		ids := func(scope store.RequestScope) []uuid.UUID {
			rs, err := f.requests.ListVisible(ctx, scope, store.RequestFilter{})
			require.NoError(t, err)
			out := []uuid.UUID{}
			for _, r := range rs {
				out = append(out, r.ID)
			}
			return out
		}

		assert.ElementsMatch(t, []uuid.UUID{open.ID, held.ID}, ids(store.RequestScope{All: true}))
		assert.ElementsMatch(t, []uuid.UUID{open.ID, held.ID}, ids(store.RequestScope{ClientID: client}))
		assert.Empty(t, ids(store.RequestScope{ClientID: stranger}))
		assert.ElementsMatch(t, []uuid.UUID{open.ID}, ids(store.RequestScope{ClientID: plumber.OwnerID, ProviderID: &plumber.ID}))
		assert.ElementsMatch(t, []uuid.UUID{held.ID}, ids(store.RequestScope{ClientID: painter.OwnerID, ProviderID: &painter.ID}))

		status := domain.RequestStatusInProgress
		rs, err := f.requests.ListVisible(ctx, store.RequestScope{All: true}, store.RequestFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, rs, 1)
		assert.Equal(t, held.ID, rs[0].ID)
		assert.Equal(t, painter.ID, *rs[0].ProviderID)
	})
}

func TestProviderStore_ListAndStars(t *testing.T) {
	db := testdb.Open(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		f := newFixture(tx)
		towing := f.category(t, "Towing")
		locksmith := f.category(t, "Locksmith")
		both := f.provider(t, "111", towing, locksmith)
		keys := f.provider(t, "222", locksmith)

		require.NoError(t, f.providers.UpdateStars(ctx, keys.ID, 425))
		require.NoError(t, f.providers.SetActive(ctx, both.ID, false))

		all, err := f.providers.List(ctx, store.ProviderFilter{CategoryID: &locksmith})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, keys.ID, all[0].ID, "higher stars first")
		assert.Equal(t, "4.25", all[0].Stars.String())

		active, err := f.providers.List(ctx, store.ProviderFilter{ActiveOnly: true, CategoryID: &towing})
		require.NoError(t, err)
		assert.Empty(t, active)

		got, err := f.providers.GetByOwner(ctx, both.OwnerID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{towing, locksmith}, got.CategoryIDs)
		assert.False(t, got.Active)

		dup, err := domain.NewProvider(f.user(t), []uuid.UUID{towing}, "111", "")
		require.NoError(t, err)
		assert.ErrorIs(t, f.providers.Create(ctx, dup), store.ErrTaxIDExists)
	})
}

func TestRatingStore_ScoresAndDuplicates(t *testing.T) {
	db := testdb.Open(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		f := newFixture(tx)
		cleaning := f.category(t, "Cleaning")
		p := f.provider(t, "333", cleaning)
		client := f.user(t)

		r := f.request(t, client, cleaning)
		now := time.Now().UTC()
		r.ProviderID = &p.ID
		require.NoError(t, r.SetStatus(domain.RequestStatusCompleted, now))
		require.NoError(t, f.requests.Update(ctx, r))

		rating, err := domain.NewRating(r, client, 375, "tidy")
		require.NoError(t, err)
		require.NoError(t, f.ratings.Create(ctx, rating))

		again, err := domain.NewRating(r, client, 100, "")
		require.NoError(t, err)
		assert.ErrorIs(t, f.ratings.Create(ctx, again), store.ErrRatingExists)
	})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		f := newFixture(tx)
		scores, err := f.ratings.ListScoresByProvider(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, scores)
	})
}
