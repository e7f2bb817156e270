package domain

import (
	"math"
	"testing"
	"time"
)

func TestNewOfferingFields(t *testing.T) {
	t.Parallel()

	fields, err := NewOfferingFields("Vacina V10", "Vacina anual importada", 120)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fields.Has(FieldID) || fields.Has(FieldCreatedAt) {
		t.Error("Expected no reserved fields in create payload")
	}
	if v, _ := fields.Get(OfferingFieldValue); v.Kind() != KindNumber || v.Number() != 120 {
		t.Errorf("Expected numeric value 120, got %v", v)
	}

	tests := []struct {
		name        string
		offering    Offering
		expectedErr error
	}{
		{"empty name", Offering{Description: "d", Value: 1}, ErrOfferingNameEmpty},
		{"empty description", Offering{Name: "n", Value: 1}, ErrOfferingDescriptionEmpty},
		{"negative value", Offering{Name: "n", Description: "d", Value: -1}, ErrOfferingValueInvalid},
		{"NaN value", Offering{Name: "n", Description: "d", Value: math.NaN()}, ErrOfferingValueInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOfferingFields(tt.offering.Name, tt.offering.Description, tt.offering.Value)
			if err != tt.expectedErr {
				t.Errorf("Expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestOfferingPatchFieldsOnlyCarriesSetFields(t *testing.T) {
	t.Parallel()

	name := "Vacina V8"
	patch := OfferingPatch{Name: &name}
	if err := patch.Validate(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	fields := patch.Fields()
	if fields.Len() != 1 || !fields.Has(OfferingFieldName) {
		t.Errorf("Expected only name, got %v", fields.Keys())
	}

	if (OfferingPatch{}).Fields().Len() != 0 {
		t.Error("Expected empty patch to yield no fields")
	}

	empty := ""
	if err := (OfferingPatch{Description: &empty}).Validate(); err != ErrOfferingDescriptionEmpty {
		t.Errorf("Expected ErrOfferingDescriptionEmpty, got %v", err)
	}
}

func TestOfferingFromRecord(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	fields, _ := NewOfferingFields("Banho e Tosa", "Completo com corte de unhas", 80)
	r := Stamp(fields, "42", created)

	o, err := OfferingFromRecord(r)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if o.ID != "42" || o.Name != "Banho e Tosa" || o.Value != 80 || !o.CreatedAt.Equal(created) {
		t.Errorf("Unexpected offering %+v", o)
	}

	textual := r.Clone()
	textual.Set(OfferingFieldValue, StringValue("99.9"))
	o, err = OfferingFromRecord(textual)
	if err != nil || o.Value != 99.9 {
		t.Errorf("Expected textual value to parse, got %v (%v)", o.Value, err)
	}

	textual.Set(OfferingFieldValue, StringValue("cheap"))
	if _, err := OfferingFromRecord(textual); err == nil {
		t.Error("Expected error for non-numeric value")
	}
}
