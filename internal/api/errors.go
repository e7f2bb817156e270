package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/petcare/catalog-api/internal/api/shared"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/service"
	"github.com/petcare/catalog-api/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrRecordNotFound):
		return http.StatusNotFound

	// Malformed request bodies
	case errors.Is(err, shared.ErrMalformedRequest):
		return http.StatusBadRequest

	// Well-formed requests the service cannot process
	case errors.Is(err, domain.ErrUnsupportedOperator),
		errors.Is(err, domain.ErrUnsupportedLogic),
		errors.Is(err, domain.ErrValidation),
		errors.As(err, &validationErrs):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		opErr          *domain.UnsupportedOperatorError
		fieldErr       *domain.ValidationError
		validationErrs validator.ValidationErrors
	)

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrOfferingNotFound):
		return "Service not found"

	case errors.Is(err, service.ErrRecordNotFound):
		return "Record not found"

	case errors.Is(err, shared.ErrMalformedRequest):
		return "Invalid request format"

	case errors.As(err, &opErr):
		return fmt.Sprintf("Unsupported operator %q", string(opErr.Operator))

	case errors.Is(err, domain.ErrUnsupportedOperator):
		return "Unsupported operator"

	case errors.Is(err, domain.ErrUnsupportedLogic):
		return "Unsupported logic, use AND or OR"

	case errors.Is(err, service.ErrReservedField):
		if errors.As(err, &fieldErr) && fieldErr.Field != "" {
			return fmt.Sprintf("Field %s cannot be updated", fieldErr.Field)
		}
		return "Field cannot be updated"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)

	case errors.As(err, &fieldErr) && fieldErr.Field != "":
		return fmt.Sprintf("Invalid %s: %s", fieldErr.Field, fieldErr.Message)

	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a user-friendly
// message naming the first failing field.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "must not be negative"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err raised at point.
func HandleAPIError(w http.ResponseWriter, r *http.Request, point string, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), point, GetSafeErrorMessage(err), err)
}
