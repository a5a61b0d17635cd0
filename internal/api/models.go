package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Email       string     `json:"email"        validate:"required,email"`
	Username    string     `json:"username"     validate:"required,max=150"`
	Password    string     `json:"password"     validate:"required,min=12,max=72"`
	FirstName   string     `json:"first_name"   validate:"max=150"`
	LastName    string     `json:"last_name"    validate:"max=150"`
	PhoneNumber string     `json:"phone_number" validate:"max=15"`
	Address     string     `json:"address"      validate:"max=255"`
	BirthDate   *time.Time `json:"birth_date"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at"`
}

// CreateCategoryRequest is the payload of POST /categories.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// SubmitApplicationRequest is the payload of POST /applications.
type SubmitApplicationRequest struct {
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"required,min=1"`
	TaxID       string      `json:"tax_id"       validate:"required,max=32"`
	Description string      `json:"description"`
}

// CreateProviderRequest is the payload of POST /providers.
type CreateProviderRequest struct {
	OwnerID     uuid.UUID   `json:"owner_id"     validate:"required"`
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"required,min=1"`
	TaxID       string      `json:"tax_id"       validate:"required,max=32"`
	Description string      `json:"description"`
}

// SetActiveRequest is the payload of PATCH /providers/{id}/active.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CreateServiceRequestRequest is the payload of POST /requests.
type CreateServiceRequestRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Title       string    `json:"title"       validate:"required,max=200"`
	Description string    `json:"description"`
	Address     string    `json:"address"     validate:"required,max=255"`
}

// UpdateServiceRequestRequest is the payload of PATCH /requests/{id}. Absent
// fields keep their current value.
type UpdateServiceRequestRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Address     *string `json:"address"     validate:"omitempty,max=255"`
}

// SetStatusRequest is the payload of PUT /requests/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

// RateRequest is the payload of POST /requests/{id}/rating. Score keeps the
// literal JSON number so that its decimal places are checked exactly.
type RateRequest struct {
	Score   json.Number `json:"score"   validate:"required"`
	Comment string      `json:"comment" validate:"max=1000"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	ID       uuid.UUID        `json:"id"`
	IsStaff  bool             `json:"is_staff"`
	Provider *domain.Provider `json:"provider,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
