package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a ServiceRequest.
type RequestStatus string

// Possible request status values
const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusCompleted, RequestStatusCancelled:
		return true
	default:
		return false
	}
}

// Validation errors for ServiceRequest
var (
	ErrEmptyRequestID        = errors.New("request ID cannot be empty")
	ErrEmptyRequestClientID  = errors.New("request client ID cannot be empty")
	ErrEmptyRequestCategory  = errors.New("request category cannot be empty")
	ErrEmptyRequestTitle     = errors.New("request title cannot be empty")
	ErrRequestTitleTooLong   = errors.New("request title must be at most 200 characters")
	ErrEmptyRequestAddress   = errors.New("request address cannot be empty")
	ErrRequestAddressTooLong = errors.New("request address must be at most 255 characters")
	ErrInvalidRequestStatus  = errors.New("invalid request status")
	ErrProviderWithoutWork   = errors.New("provider may only be set on in-progress or completed requests")
	ErrCompletionDateState   = errors.New("completion date must be set iff the request is completed")
)

// ServiceRequest is a job posted by a client. Status, ProviderID and
// CompletionDate form one consistency unit and are only changed through the
// transition methods below.
type ServiceRequest struct {
	ID             uuid.UUID     `json:"id"`
	ClientID       uuid.UUID     `json:"client_id"`
	CategoryID     uuid.UUID     `json:"category_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Address        string        `json:"address"`
	ProviderID     *uuid.UUID    `json:"provider_id,omitempty"`
	Status         RequestStatus `json:"status"`
	CompletionDate *time.Time    `json:"completion_date,omitempty"`
	RequestedAt    time.Time     `json:"requested_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewServiceRequest creates a pending request with no provider.
func NewServiceRequest(clientID, categoryID uuid.UUID, title, description, address string) (*ServiceRequest, error) {
	now := time.Now().UTC()
	r := &ServiceRequest{
		ID:          uuid.New(),
		ClientID:    clientID,
		CategoryID:  categoryID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Address:     strings.TrimSpace(address),
		Status:      RequestStatusPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks field values and the status/provider/completion invariants.
func (r *ServiceRequest) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRequestID
	}
	if r.ClientID == uuid.Nil {
		return ErrEmptyRequestClientID
	}
	if r.CategoryID == uuid.Nil {
		return ErrEmptyRequestCategory
	}
	if err := validateDetails(r.Title, r.Address); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return ErrInvalidRequestStatus
	}
	if r.ProviderID != nil &&
		r.Status != RequestStatusInProgress && r.Status != RequestStatusCompleted {
		return ErrProviderWithoutWork
	}
	if (r.CompletionDate != nil) != (r.Status == RequestStatusCompleted) {
		return ErrCompletionDateState
	}
	return nil
}

func validateDetails(title, address string) error {
	if title == "" {
		return ErrEmptyRequestTitle
	}
	if len(title) > 200 {
		return ErrRequestTitleTooLong
	}
	if address == "" {
		return ErrEmptyRequestAddress
	}
	if len(address) > 255 {
		return ErrRequestAddressTooLong
	}
	return nil
}

// IsAssignedTo reports whether providerID holds the request.
func (r *ServiceRequest) IsAssignedTo(providerID uuid.UUID) bool {
	return r.ProviderID != nil && *r.ProviderID == providerID
}

// SetStatus moves the request to status and derives the dependent fields.
// Entering COMPLETED stamps the completion date unless it is already set,
// leaving COMPLETED clears it, and PENDING or CANCELLED drop the provider.
func (r *ServiceRequest) SetStatus(status RequestStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidRequestStatus
	}
	if status == RequestStatusCompleted {
		if r.Status != RequestStatusCompleted || r.CompletionDate == nil {
			t := now.UTC()
			r.CompletionDate = &t
		}
	} else {
		r.CompletionDate = nil
	}
	if status == RequestStatusPending || status == RequestStatusCancelled {
		r.ProviderID = nil
	}
	r.Status = status
	r.UpdatedAt = now.UTC()
	return nil
}

// Accept assigns the request to the actor's provider.
// It returns false when the request was already held by that provider and
// already in progress, in which case nothing changed.
func (r *ServiceRequest) Accept(actor Actor, now time.Time) (bool, error) {
	if !actor.IsProvider() {
		return false, ErrNotAProvider
	}
	if actor.ID == r.ClientID {
		return false, ErrSelfAcceptance
	}
	providerID := actor.Provider.ID
	if r.IsAssignedTo(providerID) {
		if r.Status == RequestStatusPending {
			return true, r.SetStatus(RequestStatusInProgress, now)
		}
		return false, nil
	}
	if r.ProviderID != nil {
		return false, ErrAlreadyAssigned
	}
	if r.Status != RequestStatusPending {
		return false, ErrInvalidState
	}
	if !actor.Provider.Offers(r.CategoryID) {
		return false, ErrCategoryMismatch
	}
	if err := r.SetStatus(RequestStatusInProgress, now); err != nil {
		return false, err
	}
	r.ProviderID = &providerID
	return true, nil
}

// Unassign releases the request from the actor's provider and reopens it.
func (r *ServiceRequest) Unassign(actor Actor, now time.Time) error {
	if !actor.IsProvider() {
		return ErrNotAProvider
	}
	if r.Status == RequestStatusCompleted {
		return ErrTerminalState
	}
	if r.ProviderID == nil {
		return ErrNotAssigned
	}
	if *r.ProviderID != actor.Provider.ID {
		return ErrNotAssignedProvider
	}
	return r.SetStatus(RequestStatusPending, now)
}

// Complete marks the request completed. Staff or the assigned provider may
// complete an in-progress request; completing twice keeps the first date.
func (r *ServiceRequest) Complete(actor Actor, now time.Time) error {
	if !actor.IsStaff && !(actor.IsProvider() && r.IsAssignedTo(actor.Provider.ID)) {
		return ErrForbidden
	}
	if r.Status != RequestStatusInProgress && r.Status != RequestStatusCompleted {
		return ErrInvalidState
	}
	return r.SetStatus(RequestStatusCompleted, now)
}

// Cancel withdraws the request. Only the client or staff may cancel.
func (r *ServiceRequest) Cancel(actor Actor, now time.Time) error {
	if !CanModify(actor, RequestResource{Request: r}) {
		return ErrForbidden
	}
	switch r.Status {
	case RequestStatusCompleted:
		return ErrTerminalState
	case RequestStatusCancelled:
		return ErrInvalidState
	}
	return r.SetStatus(RequestStatusCancelled, now)
}

// UpdateDetails edits the descriptive fields of a pending request.
func (r *ServiceRequest) UpdateDetails(actor Actor, title, description, address string, now time.Time) error {
	if !CanModify(actor, RequestResource{Request: r}) {
		return ErrForbidden
	}
	if r.Status != RequestStatusPending {
		return ErrInvalidState
	}
	title = strings.TrimSpace(title)
	address = strings.TrimSpace(address)
	if err := validateDetails(title, address); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	r.Title = title
	r.Description = description
	r.Address = address
	r.UpdatedAt = now.UTC()
	return nil
}

// VisibleTo reports whether actor may see the request: staff see everything,
// clients their own requests, providers pending requests in their categories
// and requests assigned to them.
func (r *ServiceRequest) VisibleTo(actor Actor) bool {
	if actor.IsStaff || r.ClientID == actor.ID {
		return true
	}
	if !actor.IsProvider() {
		return false
	}
	if r.IsAssignedTo(actor.Provider.ID) {
		return true
	}
	return r.Status == RequestStatusPending && actor.Provider.Offers(r.CategoryID)
}
