package domain

import "github.com/google/uuid"

// Resource is a sealed sum of the entities that carry a single owner.
type Resource interface {
	// OwnerID returns the identity that owns the resource.
	OwnerID() uuid.UUID
	resource()
}

// RequestResource wraps a ServiceRequest, owned by its client.
type RequestResource struct{ Request *ServiceRequest }

// ApplicationResource wraps a ProviderApplication, owned by its applicant.
type ApplicationResource struct{ Application *ProviderApplication }

// ProviderResource wraps a Provider, owned by its owner identity.
type ProviderResource struct{ Provider *Provider }

// RatingResource wraps a Rating, owned by its reviewer.
type RatingResource struct{ Rating *Rating }

func (r RequestResource) OwnerID() uuid.UUID     { return r.Request.ClientID }
func (r ApplicationResource) OwnerID() uuid.UUID { return r.Application.ApplicantID }
func (r ProviderResource) OwnerID() uuid.UUID    { return r.Provider.OwnerID }
func (r RatingResource) OwnerID() uuid.UUID      { return r.Rating.ReviewerID }

func (RequestResource) resource()     {}
func (ApplicationResource) resource() {}
func (ProviderResource) resource()    {}
func (RatingResource) resource()      {}

// CanModify reports whether actor may write to res. Staff may modify any
// resource except ratings, which are immutable for everyone.
func CanModify(actor Actor, res Resource) bool {
	switch res.(type) {
	case RatingResource:
		return false
	case RequestResource, ApplicationResource, ProviderResource:
		return actor.IsStaff || res.OwnerID() == actor.ID
	default:
		return false
	}
}

// CanView reports whether actor may read res.
func CanView(actor Actor, res Resource) bool {
	switch r := res.(type) {
	case RequestResource:
		return r.Request.VisibleTo(actor)
	case ApplicationResource:
		return actor.IsStaff || r.OwnerID() == actor.ID
	case ProviderResource, RatingResource:
		return true
	default:
		return false
	}
}
