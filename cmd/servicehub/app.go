package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/servicehub-api/internal/api"
	"github.com/phrazzld/servicehub-api/internal/config"
	"github.com/phrazzld/servicehub-api/internal/events"
	"github.com/phrazzld/servicehub-api/internal/platform/postgres"
	"github.com/phrazzld/servicehub-api/internal/service"
	"github.com/phrazzld/servicehub-api/internal/service/auth"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// application holds the shared dependencies of the serve and seed commands.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore        store.UserStore
	categoryStore    store.CategoryStore
	providerStore    store.ProviderStore
	applicationStore store.ApplicationStore
	requestStore     store.RequestStore
	ratingStore      store.RatingStore

	// Services
	jwtService auth.JWTService
	users      *service.UserService
	categories *service.CategoryService
	actors     *service.ActorResolver
	onboarding *service.ProviderOnboarding
	lifecycle  *service.RequestLifecycle
	reputation *service.ReputationAggregator
	ratings    *service.RatingSubmission

	eventEmitter events.EventEmitter
}

// newApplication wires stores and services over an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost)
	app.categoryStore = postgres.NewPostgresCategoryStore(db, logger)
	app.providerStore = postgres.NewPostgresProviderStore(db, logger)
	app.applicationStore = postgres.NewPostgresApplicationStore(db, logger)
	app.requestStore = postgres.NewPostgresRequestStore(db, logger)
	app.ratingStore = postgres.NewPostgresRatingStore(db, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))
	app.eventEmitter = emitter

	tx := service.NewTransactor(db, cfg.Lifecycle, logger, postgres.LockTimeout(cfg.Database.LockTimeout))

	if app.users, err = service.NewUserService(app.userStore, app.jwtService, auth.NewBcryptVerifier(), logger); err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	if app.categories, err = service.NewCategoryService(app.categoryStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create category service: %w", err)
	}
	if app.actors, err = service.NewActorResolver(app.userStore, app.providerStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create actor resolver: %w", err)
	}
	if app.onboarding, err = service.NewProviderOnboarding(
		app.applicationStore, app.providerStore, tx, app.eventEmitter, logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create provider onboarding: %w", err)
	}
	if app.lifecycle, err = service.NewRequestLifecycle(app.requestStore, tx, app.eventEmitter, logger); err != nil {
		return nil, fmt.Errorf("failed to create request lifecycle: %w", err)
	}
	if app.reputation, err = service.NewReputationAggregator(app.ratingStore, app.providerStore, tx, logger); err != nil {
		return nil, fmt.Errorf("failed to create reputation aggregator: %w", err)
	}
	if app.ratings, err = service.NewRatingSubmission(
		app.requestStore, app.ratingStore, app.providerStore, app.reputation, tx, app.eventEmitter, logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create rating submission: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

func (app *application) routerDeps() api.RouterDeps {
	return api.RouterDeps{
		Users:      app.users,
		Categories: app.categories,
		Onboarding: app.onboarding,
		Lifecycle:  app.lifecycle,
		Ratings:    app.ratings,
		Actors:     app.actors,
		JWT:        app.jwtService,
		Logger:     app.logger,
	}
}
