package criteria

import (
	"strings"

	"github.com/petcare/catalog-api/internal/domain"
)

func contains(field domain.Value, want string) bool {
	return strings.Contains(strings.ToLower(field.Text()), strings.ToLower(want))
}

func startsWith(field domain.Value, want string) bool {
	return strings.HasPrefix(strings.ToLower(field.Text()), strings.ToLower(want))
}

// equals coerces want to the kind of the field. A value that cannot be
// coerced is not equal to anything.
func equals(field domain.Value, want string) bool {
	coerced, err := domain.ParseValue(field.Kind(), want)
	if err != nil {
		return false
	}
	return field.Equal(coerced)
}

func notEquals(field domain.Value, want string) bool {
	coerced, err := domain.ParseValue(field.Kind(), want)
	if err != nil {
		return true
	}
	return !field.Equal(coerced)
}

func greaterThan(field domain.Value, want string) bool {
	cmp, ok := compare(field, want)
	return ok && cmp > 0
}

func lessThan(field domain.Value, want string) bool {
	cmp, ok := compare(field, want)
	return ok && cmp < 0
}

// compare orders field against want coerced to the field's kind. ok is
// false when want cannot be coerced.
func compare(field domain.Value, want string) (int, bool) {
	coerced, err := domain.ParseValue(field.Kind(), want)
	if err != nil {
		return 0, false
	}
	switch field.Kind() {
	case domain.KindNumber:
		switch {
		case field.Number() < coerced.Number():
			return -1, true
		case field.Number() > coerced.Number():
			return 1, true
		}
		return 0, true
	case domain.KindTime:
		return field.Time().Compare(coerced.Time()), true
	default:
		return strings.Compare(field.Str(), coerced.Str()), true
	}
}
