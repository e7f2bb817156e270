package service

import (
	"sort"

	"github.com/petcare/catalog-api/internal/domain"
)

// BuildFilter turns a flat search request into a Filter. The "logic" and
// "operator" keys are metadata; every other key becomes one criterion using
// the single request-wide operator. Criteria are ordered by key so the same
// request always yields the same filter.
//
// A record field literally named "logic" or "operator" cannot be searched.
func BuildFilter(raw map[string]string) domain.Filter {
	f := domain.Filter{
		Logic:    domain.Logic(raw[domain.FilterKeyLogic]).Normalize(),
		Criteria: make([]domain.Criterion, 0, len(raw)),
	}
	op := domain.Operator(raw[domain.FilterKeyOperator]).Normalize()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		if k == domain.FilterKeyLogic || k == domain.FilterKeyOperator {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f.Criteria = append(f.Criteria, domain.Criterion{Key: k, Value: raw[k], Operator: op})
	}
	return f
}
