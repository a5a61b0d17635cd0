// Package service contains the marketplace use cases: provider onboarding,
// the service request lifecycle, rating submission and the reputation
// aggregate it maintains, plus users, categories and actor resolution.
//
// Services depend on the store interfaces and never on a concrete database.
// Every state change runs inside one transaction through a Transactor, which
// applies the configured lock timeout and retries the whole operation when it
// loses a row-lock race. Domain events are emitted only after commit.
package service
