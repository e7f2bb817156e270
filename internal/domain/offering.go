package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Field names of "service" records.
const (
	OfferingFieldName        = "name"
	OfferingFieldDescription = "description"
	OfferingFieldValue       = "value"
)

// Common validation errors for Offering
var (
	ErrOfferingNameEmpty        = errors.New("offering name cannot be empty")
	ErrOfferingDescriptionEmpty = errors.New("offering description cannot be empty")
	ErrOfferingValueInvalid     = errors.New("offering value must be a finite, non-negative number")
)

// Offering is a "service" record: a business offering such as
// "Banho e Tosa" with a description and a price.
type Offering struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
}

// OfferingPatch lists the fields of a partial update. Nil fields are left
// unchanged. There is no way to express id or created_at here.
type OfferingPatch struct {
	Name        *string
	Description *string
	Value       *float64
}

// NewOfferingFields validates the given attributes and returns them as
// record fields ready to be created.
func NewOfferingFields(name, description string, value float64) (Record, error) {
	o := Offering{Name: name, Description: description, Value: value}
	if err := o.Validate(); err != nil {
		return Record{}, err
	}
	return o.Fields(), nil
}

// Validate checks the caller-supplied attributes.
func (o Offering) Validate() error {
	if o.Name == "" {
		return ErrOfferingNameEmpty
	}
	if o.Description == "" {
		return ErrOfferingDescriptionEmpty
	}
	return validateOfferingValue(o.Value)
}

func validateOfferingValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ErrOfferingValueInvalid
	}
	return nil
}

// Fields returns the caller-owned attributes as record fields.
func (o Offering) Fields() Record {
	r := NewRecord(3)
	r.Set(OfferingFieldName, StringValue(o.Name))
	r.Set(OfferingFieldDescription, StringValue(o.Description))
	r.Set(OfferingFieldValue, NumberValue(o.Value))
	return r
}

// Validate checks the fields present in the patch.
func (p OfferingPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return ErrOfferingNameEmpty
	}
	if p.Description != nil && *p.Description == "" {
		return ErrOfferingDescriptionEmpty
	}
	if p.Value != nil {
		return validateOfferingValue(*p.Value)
	}
	return nil
}

// Fields returns only the fields set in the patch.
func (p OfferingPatch) Fields() Record {
	r := NewRecord(3)
	if p.Name != nil {
		r.Set(OfferingFieldName, StringValue(*p.Name))
	}
	if p.Description != nil {
		r.Set(OfferingFieldDescription, StringValue(*p.Description))
	}
	if p.Value != nil {
		r.Set(OfferingFieldValue, NumberValue(*p.Value))
	}
	return r
}

// OfferingFromRecord maps a stored record onto an Offering. Missing
// fields stay at their zero value; a value field stored as text is parsed.
func OfferingFromRecord(r Record) (Offering, error) {
	o := Offering{ID: r.ID()}
	if v, ok := r.Get(OfferingFieldName); ok {
		o.Name = v.Text()
	}
	if v, ok := r.Get(OfferingFieldDescription); ok {
		o.Description = v.Text()
	}
	if v, ok := r.Get(OfferingFieldValue); ok {
		switch v.Kind() {
		case KindNumber:
			o.Value = v.Number()
		default:
			n, err := ParseValue(KindNumber, v.Text())
			if err != nil {
				return Offering{}, fmt.Errorf("record %s: field %s: %w", o.ID, OfferingFieldValue, err)
			}
			o.Value = n.Number()
		}
	}
	if t, ok := r.CreatedAt(); ok {
		o.CreatedAt = t
	}
	return o, nil
}
