package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/servicehub-api/internal/api/shared"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/service/auth"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// errUnauthenticated is reported when a protected handler runs without a
// resolved actor in its context.
var errUnauthenticated = errors.New("request is not authenticated")

// MapErrorToStatusCode maps internal errors to HTTP status codes. Specific
// sentinels are checked before the generic store categories they wrap.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication
	case errors.Is(err, errUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotAProvider),
		errors.Is(err, domain.ErrSelfAcceptance),
		errors.Is(err, domain.ErrNotRequester),
		errors.Is(err, domain.ErrNotAssignedProvider):
		return http.StatusForbidden

	// Unprocessable
	case errors.Is(err, domain.ErrCategoryMismatch):
		return http.StatusUnprocessableEntity

	// Conflicts
	case errors.Is(err, domain.ErrDuplicateApplication),
		errors.Is(err, domain.ErrDuplicateProvider),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrAlreadyAssigned),
		errors.Is(err, domain.ErrAlreadyRated),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrTerminalState),
		errors.Is(err, domain.ErrNotAssigned),
		errors.Is(err, domain.ErrNotCompleted),
		errors.Is(err, domain.ErrNoProvider),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	// Not found
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad input
	case errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// safeMessages pairs sentinels with the text shown to clients. The first
// match wins.
var safeMessages = []struct {
	err     error
	message string
}{
	{errUnauthenticated, "Authentication required"},
	{auth.ErrInvalidCredentials, "Invalid credentials"},
	{auth.ErrInvalidRefreshToken, "Invalid refresh token"},
	{auth.ErrExpiredRefreshToken, "Invalid refresh token"},
	{auth.ErrWrongTokenType, "Invalid token"},
	{auth.ErrInvalidToken, "Invalid token"},
	{auth.ErrExpiredToken, "Token expired"},

	{domain.ErrNotAProvider, "Only providers can perform this action"},
	{domain.ErrSelfAcceptance, "You cannot accept your own request"},
	{domain.ErrNotRequester, "Only the requester can rate this request"},
	{domain.ErrNotAssignedProvider, "You are not the assigned provider"},
	{domain.ErrForbidden, "You are not allowed to perform this action"},

	{domain.ErrCategoryMismatch, "Provider does not offer this service category"},

	{domain.ErrDuplicateApplication, "An application with this tax id already exists"},
	{domain.ErrDuplicateProvider, "Provider profile already exists"},
	{domain.ErrAlreadyReviewed, "Application has already been reviewed"},
	{domain.ErrAlreadyAssigned, "Request is already assigned to another provider"},
	{domain.ErrAlreadyRated, "Request has already been rated"},
	{domain.ErrTerminalState, "Request is already completed"},
	{domain.ErrInvalidState, "Request is not in a valid state for this operation"},
	{domain.ErrNotAssigned, "Request has no assigned provider"},
	{domain.ErrNotCompleted, "Request is not completed"},
	{domain.ErrNoProvider, "Request has no provider to rate"},
	{store.ErrEmailExists, "Email already exists"},
	{store.ErrCategoryExists, "Category already exists"},
	{store.ErrConflict, "The resource is busy, please retry"},
	{store.ErrDuplicate, "Resource already exists"},

	{store.ErrUserNotFound, "User not found"},
	{store.ErrCategoryNotFound, "Category not found"},
	{store.ErrProviderNotFound, "Provider not found"},
	{store.ErrApplicationNotFound, "Application not found"},
	{store.ErrRequestNotFound, "Request not found"},
	{store.ErrRatingNotFound, "Rating not found"},
	{store.ErrNotFound, "Resource not found"},

	{domain.ErrOutOfRange, "Score must be between 0.00 and 5.00"},
	{domain.ErrInvalidID, "Invalid ID"},
	{shared.ErrEmptyBody, "Request body is required"},
	{store.ErrInvalidEntity, "Invalid entity data"},
}

// GetSafeErrorMessage returns the client-facing message for err. Internal
// error text never reaches the client, except the field message of a
// domain validation failure.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}
	for _, m := range safeMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	if errors.Is(err, domain.ErrValidation) {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
		}
		return validationMessage(err)
	}
	return "An unexpected error occurred"
}

// validationMessage exposes the field-level reason of a domain validation
// failure: the text after the last ": " in the wrapped chain.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" || msg == domain.ErrValidation.Error() {
		return "Validation error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// SanitizeValidationError turns validator errors into a message naming the
// first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "invalid id"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// fallback replaces the generic message for unexpected errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
