package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Rating
var (
	ErrEmptyRatingID     = errors.New("rating ID cannot be empty")
	ErrRatingCommentLong = errors.New("rating comment must be at most 1000 characters")
)

// Rating is the one-time score a client gives the provider that completed
// its request. Ratings are never updated or deleted.
type Rating struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"request_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Score      Stars     `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRating checks that reviewer may rate request and builds the Rating.
// The checks run in order: requester, completion, provider, score range.
// Whether a rating already exists is up to the caller.
func NewRating(request *ServiceRequest, reviewerID uuid.UUID, score Stars, comment string) (*Rating, error) {
	if err := request.CheckRatable(reviewerID); err != nil {
		return nil, err
	}
	r := &Rating{
		ID:         uuid.New(),
		RequestID:  request.ID,
		ProviderID: *request.ProviderID,
		ReviewerID: reviewerID,
		Score:      score,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks if the Rating has valid data.
func (r *Rating) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRatingID
	}
	if !r.Score.Valid() {
		return ErrOutOfRange
	}
	if len(r.Comment) > 1000 {
		return ErrRatingCommentLong
	}
	return nil
}

// CheckRatable reports whether reviewerID may rate the request: the reviewer
// must be the client and the request must be completed by a provider.
func (r *ServiceRequest) CheckRatable(reviewerID uuid.UUID) error {
	if r.ClientID != reviewerID {
		return ErrNotRequester
	}
	if r.Status != RequestStatusCompleted {
		return ErrNotCompleted
	}
	if r.ProviderID == nil {
		return ErrNoProvider
	}
	return nil
}
