package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/petcare/catalog-api/internal/domain"
)

// getPathID extracts a record id from the URL path parameters.
//
// Returns:
//   - (id, nil): The id if present
//   - ("", error): A validation error if the parameter is missing
func getPathID(r *http.Request, paramName string) (string, error) {
	id := chi.URLParam(r, paramName)
	if id == "" {
		return "", domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	return id, nil
}

// searchParams flattens the query string into a search request, keeping
// the first value of repeated keys.
func searchParams(r *http.Request) map[string]string {
	query := r.URL.Query()
	raw := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}
	return raw
}
