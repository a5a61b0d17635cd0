package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the review state of a ProviderApplication.
type ApplicationStatus string

// Possible application status values
const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Validation errors for ProviderApplication
var (
	ErrEmptyApplicationID      = errors.New("application ID cannot be empty")
	ErrEmptyApplicantID        = errors.New("applicant ID cannot be empty")
	ErrInvalidApplicationState = errors.New("invalid application status")
)

// ProviderApplication is a request to become a Provider, pending admin review.
// It is resolved exactly once and never deleted.
type ProviderApplication struct {
	ID          uuid.UUID         `json:"id"`
	ApplicantID uuid.UUID         `json:"applicant_id"`
	CategoryIDs []uuid.UUID       `json:"category_ids"`
	TaxID       string            `json:"tax_id"`
	Description string            `json:"description"`
	Status      ApplicationStatus `json:"status"`
	ReviewerID  *uuid.UUID        `json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewProviderApplication creates a pending application.
func NewProviderApplication(
	applicantID uuid.UUID,
	categoryIDs []uuid.UUID,
	taxID, description string,
) (*ProviderApplication, error) {
	a := &ProviderApplication{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		CategoryIDs: dedupeIDs(categoryIDs),
		TaxID:       strings.TrimSpace(taxID),
		Description: description,
		Status:      ApplicationStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks if the ProviderApplication has valid data.
func (a *ProviderApplication) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyApplicationID
	}
	if a.ApplicantID == uuid.Nil {
		return ErrEmptyApplicantID
	}
	if err := validateTaxID(a.TaxID); err != nil {
		return err
	}
	if len(a.CategoryIDs) == 0 {
		return ErrNoCategories
	}
	switch a.Status {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
	default:
		return ErrInvalidApplicationState
	}
	return nil
}

// Approve marks the application approved by reviewer at now.
func (a *ProviderApplication) Approve(reviewerID uuid.UUID, now time.Time) error {
	return a.resolve(ApplicationStatusApproved, reviewerID, now)
}

// Reject marks the application rejected by reviewer at now.
func (a *ProviderApplication) Reject(reviewerID uuid.UUID, now time.Time) error {
	return a.resolve(ApplicationStatusRejected, reviewerID, now)
}

func (a *ProviderApplication) resolve(status ApplicationStatus, reviewerID uuid.UUID, now time.Time) error {
	if a.Status != ApplicationStatusPending {
		return ErrAlreadyReviewed
	}
	a.Status = status
	a.ReviewerID = &reviewerID
	a.ReviewedAt = &now
	return nil
}

// ToProvider builds the provider profile this application describes.
func (a *ProviderApplication) ToProvider() (*Provider, error) {
	return NewProvider(a.ApplicantID, a.CategoryIDs, a.TaxID, a.Description)
}
