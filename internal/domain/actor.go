package domain

import "github.com/google/uuid"

// Actor is the authenticated identity performing an operation.
// Provider is nil when the identity has no provider profile.
type Actor struct {
	ID       uuid.UUID `json:"id"`
	IsStaff  bool      `json:"is_staff"`
	Provider *Provider `json:"provider,omitempty"`
}

// IsProvider reports whether the actor has a provider profile.
func (a Actor) IsProvider() bool {
	return a.Provider != nil
}

// ProviderID returns the actor's provider id, or uuid.Nil.
func (a Actor) ProviderID() uuid.UUID {
	if a.Provider == nil {
		return uuid.Nil
	}
	return a.Provider.ID
}
