package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/redact"
)

// CollectionOfferings is the collection holding "service" records.
const CollectionOfferings = "services"

// CreateOfferingInput holds the caller-owned attributes of a new offering.
type CreateOfferingInput struct {
	Name        string
	Description string
	Value       float64
}

// OfferingService provides typed operations on "service" records.
type OfferingService interface {
	// List returns every offering in store order
	List(ctx context.Context) ([]domain.Offering, error)

	// Get returns the offering with id, or ErrOfferingNotFound
	Get(ctx context.Context, id string) (domain.Offering, error)

	// Create validates and stores a new offering
	Create(ctx context.Context, in CreateOfferingInput) (domain.Offering, error)

	// Update applies the fields set in patch to the offering with id
	Update(ctx context.Context, id string, patch domain.OfferingPatch) error

	// Delete removes the offering with id
	Delete(ctx context.Context, id string) error

	// Search returns the offerings matching a flat search request
	Search(ctx context.Context, raw map[string]string) ([]domain.Offering, error)
}

// offeringServiceImpl implements the OfferingService interface
type offeringServiceImpl struct {
	records RecordService
	logger  *slog.Logger
}

// NewOfferingService creates a new OfferingService on top of records.
// It returns an error if records is nil.
func NewOfferingService(records RecordService, logger *slog.Logger) (OfferingService, error) {
	if records == nil {
		return nil, &RecordServiceError{
			Collection: CollectionOfferings,
			Operation:  "create_service",
			Message:    "records cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &offeringServiceImpl{
		records: records,
		logger:  logger.With(slog.String("component", "offering_service")),
	}, nil
}

// offeringValidationError attaches the offending field to a domain
// validation error.
func offeringValidationError(err error) error {
	field := ""
	switch {
	case errors.Is(err, domain.ErrOfferingNameEmpty):
		field = domain.OfferingFieldName
	case errors.Is(err, domain.ErrOfferingDescriptionEmpty):
		field = domain.OfferingFieldDescription
	case errors.Is(err, domain.ErrOfferingValueInvalid):
		field = domain.OfferingFieldValue
	}
	return domain.NewValidationError(field, err.Error(), errors.Join(err, domain.ErrValidation))
}

// notFound translates the generic not-found sentinel.
func notFound(err error) error {
	if errors.Is(err, ErrRecordNotFound) {
		return ErrOfferingNotFound
	}
	return err
}

func (s *offeringServiceImpl) toOfferings(records []domain.Record, operation string) ([]domain.Offering, error) {
	out := make([]domain.Offering, 0, len(records))
	for _, r := range records {
		o, err := domain.OfferingFromRecord(r)
		if err != nil {
			s.logger.Error("stored record is not a valid offering", "error", redact.Error(err), "record_id", r.ID())
			return nil, NewRecordServiceError(CollectionOfferings, operation, "failed to read stored offering", err)
		}
		out = append(out, o)
	}
	return out, nil
}

// List returns every offering in store order
func (s *offeringServiceImpl) List(ctx context.Context) ([]domain.Offering, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toOfferings(records, "list")
}

// Get returns the offering with id
func (s *offeringServiceImpl) Get(ctx context.Context, id string) (domain.Offering, error) {
	r, err := s.records.GetByID(ctx, id)
	if err != nil {
		return domain.Offering{}, notFound(err)
	}
	o, err := domain.OfferingFromRecord(r)
	if err != nil {
		s.logger.Error("stored record is not a valid offering", "error", redact.Error(err), "record_id", id)
		return domain.Offering{}, NewRecordServiceError(CollectionOfferings, "get", "failed to read stored offering", err)
	}
	return o, nil
}

// Create validates and stores a new offering
func (s *offeringServiceImpl) Create(ctx context.Context, in CreateOfferingInput) (domain.Offering, error) {
	fields, err := domain.NewOfferingFields(in.Name, in.Description, in.Value)
	if err != nil {
		s.logger.Debug("invalid offering", "error", redact.Error(err))
		return domain.Offering{}, offeringValidationError(err)
	}

	r, err := s.records.Create(ctx, fields)
	if err != nil {
		return domain.Offering{}, err
	}
	return domain.OfferingFromRecord(r)
}

// Update applies the fields set in patch
func (s *offeringServiceImpl) Update(ctx context.Context, id string, patch domain.OfferingPatch) error {
	if err := patch.Validate(); err != nil {
		s.logger.Debug("invalid offering patch", "error", redact.Error(err), "record_id", id)
		return offeringValidationError(err)
	}
	return notFound(s.records.Update(ctx, id, patch.Fields()))
}

// Delete removes the offering with id
func (s *offeringServiceImpl) Delete(ctx context.Context, id string) error {
	return notFound(s.records.Delete(ctx, id))
}

// Search returns the offerings matching raw
func (s *offeringServiceImpl) Search(ctx context.Context, raw map[string]string) ([]domain.Offering, error) {
	records, err := s.records.Search(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.toOfferings(records, "search")
}
