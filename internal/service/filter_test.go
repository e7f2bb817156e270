package service

import (
	"testing"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]string
		want domain.Filter
	}{
		{
			name: "empty request defaults to AND with no criteria",
			raw:  map[string]string{},
			want: domain.Filter{Logic: domain.LogicAnd, Criteria: []domain.Criterion{}},
		},
		{
			name: "default operator is CONTAINS",
			raw:  map[string]string{"name": "Banho"},
			want: domain.Filter{Logic: domain.LogicAnd, Criteria: []domain.Criterion{
				{Key: "name", Value: "Banho", Operator: domain.OperatorContains},
			}},
		},
		{
			name: "metadata keys are stripped and criteria sorted by key",
			raw:  map[string]string{"value": "50", "name": "Tosa", "logic": "or", "operator": "equals"},
			want: domain.Filter{Logic: domain.LogicOr, Criteria: []domain.Criterion{
				{Key: "name", Value: "Tosa", Operator: domain.OperatorEquals},
				{Key: "value", Value: "50", Operator: domain.OperatorEquals},
			}},
		},
		{
			name: "metadata keys are case-sensitive",
			raw:  map[string]string{"Logic": "OR"},
			want: domain.Filter{Logic: domain.LogicAnd, Criteria: []domain.Criterion{
				{Key: "Logic", Value: "OR", Operator: domain.OperatorContains},
			}},
		},
		{
			name: "unknown operator is kept for the evaluator to reject",
			raw:  map[string]string{"operator": "regex", "name": "x"},
			want: domain.Filter{Logic: domain.LogicAnd, Criteria: []domain.Criterion{
				{Key: "name", Value: "x", Operator: "REGEX"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildFilter(tt.raw))
		})
	}
}
