package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/events"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// ProviderOnboarding turns applications into provider profiles and manages
// provider profiles on behalf of staff.
type ProviderOnboarding struct {
	applications store.ApplicationStore
	providers    store.ProviderStore
	tx           *Transactor
	emitter      events.EventEmitter
	logger       *slog.Logger
	now          func() time.Time
}

// NewProviderOnboarding creates a ProviderOnboarding service.
func NewProviderOnboarding(
	applications store.ApplicationStore,
	providers store.ProviderStore,
	tx *Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*ProviderOnboarding, error) {
	if applications == nil {
		return nil, domain.NewValidationError("applications", "cannot be nil", domain.ErrValidation)
	}
	if providers == nil {
		return nil, domain.NewValidationError("providers", "cannot be nil", domain.ErrValidation)
	}
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderOnboarding{
		applications: applications,
		providers:    providers,
		tx:           tx,
		emitter:      emitter,
		logger:       logger.With(slog.String("component", "provider_onboarding")),
		now:          time.Now,
	}, nil
}

// mapProviderDuplicate turns unique-violation races on the provider table
// into the typed onboarding failure.
func mapProviderDuplicate(err error) error {
	if errors.Is(err, store.ErrProviderExists) || errors.Is(err, store.ErrTaxIDExists) {
		return domain.ErrDuplicateProvider
	}
	return err
}

// Submit files a pending application for the actor. An applicant may hold
// one application per tax id.
func (s *ProviderOnboarding) Submit(
	ctx context.Context,
	actor domain.Actor,
	categoryIDs []uuid.UUID,
	taxID, description string,
) (*domain.ProviderApplication, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	app, err := domain.NewProviderApplication(actor.ID, categoryIDs, taxID, description)
	if err != nil {
		return nil, invalidInput("submit_application", "invalid application", err)
	}

	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, store.ErrApplicationExists) {
			log.Debug("duplicate application", slog.String("applicant_id", actor.ID.String()))
			err = domain.ErrDuplicateApplication
		}
		return nil, NewServiceError("submit_application", "failed to save application", err)
	}

	publish(ctx, s.emitter, s.logger, events.ApplicationSubmitted, app)
	return app, nil
}

// Approve creates the applicant's provider profile and marks the application
// approved, both in one transaction.
func (s *ProviderOnboarding) Approve(
	ctx context.Context,
	applicationID uuid.UUID,
	reviewer domain.Actor,
) (*domain.Provider, error) {
	if !reviewer.IsStaff {
		return nil, NewServiceError("approve_application", "reviewer is not staff", domain.ErrForbidden)
	}

	var (
		app      *domain.ProviderApplication
		provider *domain.Provider
	)
	err := s.tx.Run(ctx, "approve_application", func(ctx context.Context, tx *sql.Tx) error {
		applications := s.applications.WithTx(tx)
		providers := s.providers.WithTx(tx)

		var err error
		app, err = applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if err := app.Approve(reviewer.ID, s.now().UTC()); err != nil {
			return err
		}

		if _, err := providers.GetByOwner(ctx, app.ApplicantID); err == nil {
			return domain.ErrDuplicateProvider
		} else if !errors.Is(err, store.ErrProviderNotFound) {
			return err
		}

		provider, err = app.ToProvider()
		if err != nil {
			return err
		}
		if err := providers.Create(ctx, provider); err != nil {
			return mapProviderDuplicate(err)
		}
		return applications.UpdateReview(ctx, app)
	})
	if err != nil {
		return nil, NewServiceError("approve_application", "failed to approve application", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("application approved",
		slog.String("application_id", applicationID.String()),
		slog.String("provider_id", provider.ID.String()))
	publish(ctx, s.emitter, s.logger, events.ApplicationApproved, app)
	publish(ctx, s.emitter, s.logger, events.ProviderCreated, provider)
	return provider, nil
}

// Reject marks a pending application rejected.
func (s *ProviderOnboarding) Reject(
	ctx context.Context,
	applicationID uuid.UUID,
	reviewer domain.Actor,
) (*domain.ProviderApplication, error) {
	if !reviewer.IsStaff {
		return nil, NewServiceError("reject_application", "reviewer is not staff", domain.ErrForbidden)
	}

	var app *domain.ProviderApplication
	err := s.tx.Run(ctx, "reject_application", func(ctx context.Context, tx *sql.Tx) error {
		applications := s.applications.WithTx(tx)

		var err error
		app, err = applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if err := app.Reject(reviewer.ID, s.now().UTC()); err != nil {
			return err
		}
		return applications.UpdateReview(ctx, app)
	})
	if err != nil {
		return nil, NewServiceError("reject_application", "failed to reject application", err)
	}

	publish(ctx, s.emitter, s.logger, events.ApplicationRejected, app)
	return app, nil
}

// CreateProvider registers a provider profile directly, without an application.
func (s *ProviderOnboarding) CreateProvider(
	ctx context.Context,
	admin domain.Actor,
	ownerID uuid.UUID,
	categoryIDs []uuid.UUID,
	taxID, description string,
) (*domain.Provider, error) {
	if !admin.IsStaff {
		return nil, NewServiceError("create_provider", "actor is not staff", domain.ErrForbidden)
	}

	provider, err := domain.NewProvider(ownerID, categoryIDs, taxID, description)
	if err != nil {
		return nil, invalidInput("create_provider", "invalid provider", err)
	}

	err = s.tx.Run(ctx, "create_provider", func(ctx context.Context, tx *sql.Tx) error {
		return mapProviderDuplicate(s.providers.WithTx(tx).Create(ctx, provider))
	})
	if err != nil {
		return nil, NewServiceError("create_provider", "failed to save provider", err)
	}

	publish(ctx, s.emitter, s.logger, events.ProviderCreated, provider)
	return provider, nil
}

// SetProviderActive activates or deactivates a provider profile.
func (s *ProviderOnboarding) SetProviderActive(
	ctx context.Context,
	admin domain.Actor,
	providerID uuid.UUID,
	active bool,
) (*domain.Provider, error) {
	if !admin.IsStaff {
		return nil, NewServiceError("set_provider_active", "actor is not staff", domain.ErrForbidden)
	}
	if err := s.providers.SetActive(ctx, providerID, active); err != nil {
		return nil, NewServiceError("set_provider_active", "failed to update provider", err)
	}
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, NewServiceError("set_provider_active", "failed to reload provider", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("provider activation changed",
		slog.String("provider_id", providerID.String()),
		slog.Bool("active", active))
	return provider, nil
}

// GetApplication returns an application the actor may view. Applications of
// other identities are reported as not found.
func (s *ProviderOnboarding) GetApplication(
	ctx context.Context,
	actor domain.Actor,
	applicationID uuid.UUID,
) (*domain.ProviderApplication, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, NewServiceError("get_application", "failed to load application", err)
	}
	if !domain.CanView(actor, domain.ApplicationResource{Application: app}) {
		return nil, NewServiceError("get_application", "application not visible", store.ErrApplicationNotFound)
	}
	return app, nil
}

// ListApplications lists every application for staff and the actor's own
// applications for everyone else.
func (s *ProviderOnboarding) ListApplications(
	ctx context.Context,
	actor domain.Actor,
	filter store.ApplicationFilter,
) ([]*domain.ProviderApplication, error) {
	if !actor.IsStaff {
		id := actor.ID
		filter.ApplicantID = &id
	}
	apps, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_applications", "failed to list applications", err)
	}
	return apps, nil
}

// GetProvider returns a provider profile.
func (s *ProviderOnboarding) GetProvider(ctx context.Context, providerID uuid.UUID) (*domain.Provider, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, NewServiceError("get_provider", "failed to load provider", err)
	}
	return provider, nil
}

// ListProviders lists provider profiles, best rated first.
func (s *ProviderOnboarding) ListProviders(ctx context.Context, filter store.ProviderFilter) ([]*domain.Provider, error) {
	providers, err := s.providers.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_providers", "failed to list providers", err)
	}
	return providers, nil
}
