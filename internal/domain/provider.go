package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Provider
var (
	ErrEmptyProviderID      = errors.New("provider ID cannot be empty")
	ErrEmptyProviderOwnerID = errors.New("provider owner ID cannot be empty")
	ErrEmptyTaxID           = errors.New("tax ID cannot be empty")
	ErrTaxIDTooLong         = errors.New("tax ID must be at most 32 characters")
	ErrNoCategories         = errors.New("at least one service category is required")
	ErrInvalidStars         = errors.New("stars must be between 0.00 and 5.00")
)

// Provider is a service-offering identity. Each owner has at most one.
// Stars are only written by the reputation aggregator or by admin actions.
type Provider struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Description string      `json:"description"`
	TaxID       string      `json:"tax_id"`
	Stars       Stars       `json:"stars"`
	Active      bool        `json:"active"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewProvider creates an active Provider with zero stars.
func NewProvider(ownerID uuid.UUID, categoryIDs []uuid.UUID, taxID, description string) (*Provider, error) {
	now := time.Now().UTC()
	p := &Provider{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Description: description,
		TaxID:       strings.TrimSpace(taxID),
		Stars:       0,
		Active:      true,
		CategoryIDs: dedupeIDs(categoryIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the Provider has valid data.
func (p *Provider) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProviderID
	}
	if p.OwnerID == uuid.Nil {
		return ErrEmptyProviderOwnerID
	}
	if err := validateTaxID(p.TaxID); err != nil {
		return err
	}
	if len(p.CategoryIDs) == 0 {
		return ErrNoCategories
	}
	if !p.Stars.Valid() {
		return ErrInvalidStars
	}
	return nil
}

// Offers reports whether the provider offers the given category.
func (p *Provider) Offers(categoryID uuid.UUID) bool {
	return slices.Contains(p.CategoryIDs, categoryID)
}

func validateTaxID(taxID string) error {
	if taxID == "" {
		return ErrEmptyTaxID
	}
	if len(taxID) > 32 {
		return ErrTaxIDTooLong
	}
	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
