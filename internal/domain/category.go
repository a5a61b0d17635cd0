package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for ServiceCategory
var (
	ErrEmptyCategoryID   = errors.New("category ID cannot be empty")
	ErrEmptyCategoryName = errors.New("category name cannot be empty")
	ErrCategoryNameLong  = errors.New("category name must be at most 100 characters")
)

// ServiceCategory is a named capability used to match providers to requests.
// Categories are immutable once created.
type ServiceCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewServiceCategory creates a validated ServiceCategory.
func NewServiceCategory(name string) (*ServiceCategory, error) {
	c := &ServiceCategory{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the ServiceCategory has valid data.
func (c *ServiceCategory) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCategoryID
	}
	if c.Name == "" {
		return ErrEmptyCategoryName
	}
	if len(c.Name) > 100 {
		return ErrCategoryNameLong
	}
	return nil
}
