package api

import (
	"github.com/petcare/catalog-api/internal/domain"
)

// CreateServiceRequest defines the payload for creating a service.
type CreateServiceRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description" validate:"required"`
	Value       *float64 `json:"value"       validate:"required,gte=0"`
}

// UpdateServiceRequest defines the payload for a partial service update.
// Omitted fields are left unchanged.
type UpdateServiceRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Value       *float64 `json:"value"       validate:"omitempty,gte=0"`
}

// updatableServiceFields lists the keys an update payload may carry.
var updatableServiceFields = map[string]bool{
	domain.OfferingFieldName:        true,
	domain.OfferingFieldDescription: true,
	domain.OfferingFieldValue:       true,
}

// Patch converts the request to a domain patch.
func (r UpdateServiceRequest) Patch() domain.OfferingPatch {
	return domain.OfferingPatch{Name: r.Name, Description: r.Description, Value: r.Value}
}

// ServiceResponse is the representation of a service in responses.
type ServiceResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	CreatedAt   string  `json:"created_at"`
}

// serviceToResponse converts a domain.Offering to a ServiceResponse.
// created_at keeps the store's textual timestamp form.
func serviceToResponse(o domain.Offering) ServiceResponse {
	return ServiceResponse{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		Value:       o.Value,
		CreatedAt:   o.CreatedAt.UTC().Format(domain.TimestampLayout),
	}
}

func servicesToResponse(offerings []domain.Offering) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(offerings))
	for _, o := range offerings {
		out = append(out, serviceToResponse(o))
	}
	return out
}
