package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/petcare/catalog-api/internal/api/shared"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/service"
)

// Operation points reported in error responses.
const (
	pointListServices   = "list_services"
	pointSearchServices = "search_services"
	pointGetService     = "get_service"
	pointCreateService  = "create_service"
	pointUpdateService  = "update_service"
	pointDeleteService  = "delete_service"
)

// ServiceHandler handles /services HTTP requests
type ServiceHandler struct {
	offerings service.OfferingService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(offerings service.OfferingService, logger *slog.Logger) *ServiceHandler {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	// Report JSON field names in validation errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &ServiceHandler{
		offerings: offerings,
		validator: v,
		logger:    logger.With(slog.String("component", "service_handler")),
	}
}

// Routes registers the handler on r, which is expected to be mounted at
// /services.
func (h *ServiceHandler) Routes(r chi.Router) {
	r.Get("/", h.ListServices)
	r.Post("/", h.CreateService)
	r.Get("/{id}", h.GetService)
	r.Patch("/{id}", h.UpdateService)
	r.Delete("/{id}", h.DeleteService)
}

func (h *ServiceHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}

// ListServices handles GET /services. Any query parameter turns the
// request into a search: "logic" and "operator" select how the remaining
// parameters are matched.
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Query()) == 0 {
		offerings, err := h.offerings.List(r.Context())
		if err != nil {
			HandleAPIError(w, r, pointListServices, err)
			return
		}
		shared.RespondWithData(w, r, http.StatusOK, servicesToResponse(offerings))
		return
	}

	offerings, err := h.offerings.Search(r.Context(), searchParams(r))
	if err != nil {
		HandleAPIError(w, r, pointSearchServices, err)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, servicesToResponse(offerings))
}

// GetService handles GET /services/{id}
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, pointGetService, err)
		return
	}

	offering, err := h.offerings.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, pointGetService, err)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, serviceToResponse(offering))
}

// CreateService handles POST /services
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	body, err := shared.ReadBody(w, r)
	if err != nil {
		HandleAPIError(w, r, pointCreateService, err)
		return
	}

	var req CreateServiceRequest
	if err := shared.DecodeJSON(body, &req); err != nil {
		HandleAPIError(w, r, pointCreateService, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, pointCreateService, err)
		return
	}

	offering, err := h.offerings.Create(r.Context(), service.CreateOfferingInput{
		Name:        req.Name,
		Description: req.Description,
		Value:       *req.Value,
	})
	if err != nil {
		HandleAPIError(w, r, pointCreateService, err)
		return
	}

	h.log(r).Info("service created", "service_id", offering.ID)
	shared.RespondWithData(w, r, http.StatusCreated, serviceToResponse(offering))
}

// UpdateService handles PATCH /services/{id}. Payloads naming id or
// created_at, or any field a service does not have, are rejected.
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, pointUpdateService, err)
		return
	}

	body, err := shared.ReadBody(w, r)
	if err != nil {
		HandleAPIError(w, r, pointUpdateService, err)
		return
	}

	var fields map[string]json.RawMessage
	if err := shared.DecodeJSON(body, &fields); err != nil {
		HandleAPIError(w, r, pointUpdateService, err)
		return
	}
	if err := checkUpdateFields(fields); err != nil {
		HandleAPIError(w, r, pointUpdateService, err)
		return
	}

	var req UpdateServiceRequest
	if err := shared.DecodeJSON(body, &req); err != nil {
		HandleAPIError(w, r, pointUpdateService, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, pointUpdateService, err)
		return
	}

	if err := h.offerings.Update(r.Context(), id, req.Patch()); err != nil {
		HandleAPIError(w, r, pointUpdateService, err)
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK)
}

// DeleteService handles DELETE /services/{id}
func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, pointDeleteService, err)
		return
	}

	if err := h.offerings.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, pointDeleteService, err)
		return
	}

	h.log(r).Info("service deleted", "service_id", id)
	shared.RespondWithSuccess(w, r, http.StatusOK)
}

// checkUpdateFields rejects reserved and unknown keys, reporting them in
// sorted order so the response is stable.
func checkUpdateFields(fields map[string]json.RawMessage) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch {
		case k == domain.FieldID || k == domain.FieldCreatedAt:
			return domain.NewValidationError(k, service.ErrReservedField.Error(),
				errors.Join(service.ErrReservedField, domain.ErrValidation))
		case !updatableServiceFields[k]:
			return domain.NewValidationError(k, "unknown field", domain.ErrValidation)
		}
	}
	return nil
}
