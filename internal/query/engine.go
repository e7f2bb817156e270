// Package query runs filter searches over a record store.
package query

import (
	"context"
	"log/slog"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/domain/criteria"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/redact"
	"github.com/petcare/catalog-api/internal/store"
)

// Engine answers filter searches by scanning a store. It holds no state of
// its own beyond its collaborators.
type Engine struct {
	store     store.RecordStore
	evaluator *criteria.Evaluator
	logger    *slog.Logger
}

// NewEngine returns an Engine over s. A nil evaluator uses the built-in
// operators.
func NewEngine(s store.RecordStore, evaluator *criteria.Evaluator, log *slog.Logger) *Engine {
	if evaluator == nil {
		evaluator = criteria.NewEvaluator()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:     s,
		evaluator: evaluator,
		logger:    log.With(slog.String("component", "query_engine")),
	}
}

// Search returns the records matching f in store order. The filter is
// validated before the store is read, so an unsupported operator or logic
// fails even when the store is empty. The result is never nil.
func (e *Engine) Search(ctx context.Context, f domain.Filter) ([]domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if err := e.evaluator.Validate(f); err != nil {
		log.Debug("rejected search filter", slog.String("error", redact.Error(err)))
		return nil, err
	}

	records, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.Record, 0, len(records))
	for _, r := range records {
		ok, err := e.evaluator.Evaluate(r, f)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, r)
		}
	}

	log.Debug("search completed",
		slog.String("logic", string(f.Logic.Normalize())),
		slog.Int("criteria", len(f.Criteria)),
		slog.Int("scanned", len(records)),
		slog.Int("matched", len(matches)))
	return matches, nil
}
