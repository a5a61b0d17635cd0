// Package api exposes the marketplace over HTTP. Handlers decode and
// validate JSON payloads, take the caller's domain.Actor from the request
// context and delegate to the services. Errors are mapped to status codes by
// MapErrorToStatusCode; clients only ever see GetSafeErrorMessage text.
package api
