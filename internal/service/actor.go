package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// ActorResolver builds the domain.Actor for an authenticated user id.
type ActorResolver struct {
	users     store.UserStore
	providers store.ProviderStore
	logger    *slog.Logger
}

// NewActorResolver creates an ActorResolver.
func NewActorResolver(users store.UserStore, providers store.ProviderStore, logger *slog.Logger) (*ActorResolver, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if providers == nil {
		return nil, domain.NewValidationError("providers", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActorResolver{
		users:     users,
		providers: providers,
		logger:    logger.With(slog.String("component", "actor_resolver")),
	}, nil
}

// Resolve loads the user's staff flag and provider profile. A user without a
// provider profile resolves to an actor with a nil Provider.
func (r *ActorResolver) Resolve(ctx context.Context, userID uuid.UUID) (domain.Actor, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Actor{}, NewServiceError("resolve_actor", "failed to load user", err)
	}

	actor := domain.Actor{ID: user.ID, IsStaff: user.IsStaff}
	provider, err := r.providers.GetByOwner(ctx, user.ID)
	switch {
	case err == nil:
		actor.Provider = provider
	case store.IsNotFoundError(err):
	default:
		return domain.Actor{}, NewServiceError("resolve_actor", "failed to load provider profile", err)
	}
	return actor, nil
}
