// Package domain contains the core business entities of the marketplace:
// service categories, providers and their applications, service requests
// and ratings. The request lifecycle state machine lives on ServiceRequest,
// so every status change derives provider and completion date the same way
// regardless of which service triggered it.
package domain
