// Package mocks provides shared test doubles for the store and auth
// interfaces.
//
// Store mocks are built on testify/mock. Their WithTx methods return the
// receiver, so expectations set before a transaction also cover the calls
// made through the transaction-bound store:
//
//	requests := new(mocks.RequestStore)
//	requests.On("GetForUpdate", mock.Anything, id).Return(req, nil)
//
// The auth mocks use function fields with default return values instead.
package mocks
