// Package seed fills a fresh database with demo data: the category catalog,
// a staff account, clients, approved providers and open requests. All writes
// go through the services so the data obeys the same rules as API traffic.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/service"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// Categories is the catalog created by every seed run.
var Categories = []string{
	"Plumbing",
	"Electrical",
	"Cleaning",
	"Painting",
	"Carpentry",
	"Towing",
	"Locksmith",
}

// Accounts registers users.
type Accounts interface {
	Register(ctx context.Context, reg service.Registration) (*domain.User, error)
}

// Onboarding files and approves provider applications.
type Onboarding interface {
	Submit(ctx context.Context, actor domain.Actor, categoryIDs []uuid.UUID, taxID, description string) (*domain.ProviderApplication, error)
	Approve(ctx context.Context, applicationID uuid.UUID, reviewer domain.Actor) (*domain.Provider, error)
}

// Lifecycle posts service requests.
type Lifecycle interface {
	Create(ctx context.Context, actor domain.Actor, categoryID uuid.UUID, title, description, address string) (*domain.ServiceRequest, error)
}

// Deps are the collaborators of a Seeder. Clear may be nil when the caller
// never passes Options.Clear.
type Deps struct {
	Accounts   Accounts
	Users      store.UserStore
	Categories store.CategoryStore
	Onboarding Onboarding
	Lifecycle  Lifecycle
	Clear      func(ctx context.Context) error
	Logger     *slog.Logger
}

// Options controls the volume of generated data.
type Options struct {
	Clear               bool
	Users               int
	Providers           int
	RequestsPerCategory int
	AdminEmail          string
	AdminPassword       string
	// RandomSeed makes runs reproducible; zero picks a random seed.
	RandomSeed uint64
}

// DefaultOptions returns the settings used by the seed command.
func DefaultOptions() Options {
	return Options{
		Users:               10,
		Providers:           5,
		RequestsPerCategory: 2,
		AdminEmail:          "admin@servicehub.local",
		AdminPassword:       "servicehub-admin",
	}
}

// Summary counts what a run created.
type Summary struct {
	Categories int
	Users      int
	Providers  int
	Requests   int
}

// Seeder generates demo data.
type Seeder struct {
	deps   Deps
	logger *slog.Logger
}

// New creates a Seeder.
func New(deps Deps) (*Seeder, error) {
	switch {
	case deps.Accounts == nil:
		return nil, errors.New("seed: accounts cannot be nil")
	case deps.Users == nil:
		return nil, errors.New("seed: users cannot be nil")
	case deps.Categories == nil:
		return nil, errors.New("seed: categories cannot be nil")
	case deps.Onboarding == nil:
		return nil, errors.New("seed: onboarding cannot be nil")
	case deps.Lifecycle == nil:
		return nil, errors.New("seed: lifecycle cannot be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{deps: deps, logger: logger.With(slog.String("component", "seed"))}, nil
}

// Run seeds the database. Categories and the admin account are reused when
// they already exist, so repeated runs only add users, providers and
// requests.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users < 0 || opts.Providers < 0 || opts.RequestsPerCategory < 0 {
		return nil, errors.New("seed: counts cannot be negative")
	}
	faker := gofakeit.New(opts.RandomSeed)
	summary := &Summary{}

	if opts.Clear {
		if s.deps.Clear == nil {
			return nil, errors.New("seed: clear requested but no clear function configured")
		}
		if err := s.deps.Clear(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("existing data cleared")
	}

	categories, created, err := s.ensureCategories(ctx)
	if err != nil {
		return nil, err
	}
	summary.Categories = created

	admin, err := s.ensureAdmin(ctx, opts.AdminEmail, opts.AdminPassword)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Actor, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := s.register(ctx, faker, i)
		if err != nil {
			return nil, err
		}
		clients = append(clients, domain.Actor{ID: user.ID})
	}
	summary.Users = len(clients)

	for i := 0; i < opts.Providers; i++ {
		user, err := s.register(ctx, faker, opts.Users+i)
		if err != nil {
			return nil, err
		}
		offered := pickCategories(faker, categories)
		app, err := s.deps.Onboarding.Submit(ctx, domain.Actor{ID: user.ID}, offered,
			faker.Numerify("###########"), faker.Phrase())
		if err != nil {
			return nil, fmt.Errorf("seed: submit application: %w", err)
		}
		if _, err := s.deps.Onboarding.Approve(ctx, app.ID, admin); err != nil {
			return nil, fmt.Errorf("seed: approve application: %w", err)
		}
		summary.Providers++
	}

	if len(clients) == 0 {
		clients = append(clients, admin)
	}
	for _, category := range categories {
		for i := 0; i < opts.RequestsPerCategory; i++ {
			client := clients[faker.IntN(len(clients))]
			title := fmt.Sprintf("%s: %s %s", category.Name, faker.Adjective(), faker.Noun())
			address := fmt.Sprintf("%s, %s", faker.Street(), faker.City())
			if _, err := s.deps.Lifecycle.Create(ctx, client, category.ID, title, faker.Phrase(), address); err != nil {
				return nil, fmt.Errorf("seed: create request: %w", err)
			}
			summary.Requests++
		}
	}

	s.logger.Info("seed completed",
		slog.Int("categories", summary.Categories),
		slog.Int("users", summary.Users),
		slog.Int("providers", summary.Providers),
		slog.Int("requests", summary.Requests))
	return summary, nil
}

func (s *Seeder) ensureCategories(ctx context.Context) ([]*domain.ServiceCategory, int, error) {
	out := make([]*domain.ServiceCategory, 0, len(Categories))
	created := 0
	for _, name := range Categories {
		existing, err := s.deps.Categories.GetByName(ctx, name)
		if err == nil {
			out = append(out, existing)
			continue
		}
		if !errors.Is(err, store.ErrCategoryNotFound) {
			return nil, 0, fmt.Errorf("seed: look up category %q: %w", name, err)
		}
		category, err := domain.NewServiceCategory(name)
		if err != nil {
			return nil, 0, err
		}
		if err := s.deps.Categories.Create(ctx, category); err != nil {
			return nil, 0, fmt.Errorf("seed: create category %q: %w", name, err)
		}
		out = append(out, category)
		created++
	}
	return out, created, nil
}

// ensureAdmin returns the staff actor for email, registering and promoting
// the account when needed.
func (s *Seeder) ensureAdmin(ctx context.Context, email, password string) (domain.Actor, error) {
	user, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return domain.Actor{}, fmt.Errorf("seed: look up admin: %w", err)
		}
		user, err = s.deps.Accounts.Register(ctx, service.Registration{
			Email:     email,
			Username:  "admin",
			Password:  password,
			FirstName: "Service",
			LastName:  "Admin",
		})
		if err != nil {
			return domain.Actor{}, fmt.Errorf("seed: register admin: %w", err)
		}
		s.logger.Info("admin account created", slog.String("user_id", user.ID.String()))
	}
	if !user.IsStaff {
		user.IsStaff = true
		user.Password = ""
		if err := s.deps.Users.Update(ctx, user); err != nil {
			return domain.Actor{}, fmt.Errorf("seed: promote admin: %w", err)
		}
	}
	return domain.Actor{ID: user.ID, IsStaff: true}, nil
}

// register creates a fake user. The index keeps emails unique within a run.
func (s *Seeder) register(ctx context.Context, faker *gofakeit.Faker, index int) (*domain.User, error) {
	first, last := faker.FirstName(), faker.LastName()
	birth := faker.DateRange(
		time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	user, err := s.deps.Accounts.Register(ctx, service.Registration{
		Email:       fmt.Sprintf("%s.%s.%d.%s@example.com", strings.ToLower(first), strings.ToLower(last), index, faker.LetterN(4)),
		Username:    faker.Username(),
		Password:    faker.Password(true, true, true, false, false, 16),
		FirstName:   first,
		LastName:    last,
		PhoneNumber: faker.Phone(),
		Address:     fmt.Sprintf("%s, %s", faker.Street(), faker.City()),
		BirthDate:   &birth,
	})
	if err != nil {
		return nil, fmt.Errorf("seed: register user: %w", err)
	}
	return user, nil
}

// pickCategories returns one to three distinct categories.
func pickCategories(faker *gofakeit.Faker, categories []*domain.ServiceCategory) []uuid.UUID {
	n := 1 + faker.IntN(3)
	if n > len(categories) {
		n = len(categories)
	}
	ids := make([]uuid.UUID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	for i := 0; i < n; i++ {
		j := i + faker.IntN(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:n]
}
