package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mirrordex/internal/domain"
	"github.com/kailas-cloud/mirrordex/internal/domain/search/mode"
)

// Engine field names. Segment text is indexed verbatim; the passage
// embedding is produced by the engine's ingest pipeline from it.
const (
	textField   = "text"
	vectorField = "passage_embedding"
)

// Builder assembles engine query bodies for the three retrieval modes.
// When an embedder is configured the vector clause carries a
// precomputed vector; otherwise it delegates embedding to the engine's
// neural pipeline via query_text.
type Builder struct {
	embedder domain.Embedder
}

// NewBuilder creates a query builder. embedder may be nil.
func NewBuilder(embedder domain.Embedder) *Builder {
	return &Builder{embedder: embedder}
}

// Build returns the full request body for the given mode without any
// permission filter.
func (b *Builder) Build(ctx context.Context, m mode.Mode, query string, size int) (map[string]any, error) {
	clause, err := b.clause(ctx, m, query, size)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"size":  size,
		"query": clause,
	}, nil
}

// BuildFiltered returns the request body with the mode clause under
// bool.must and a terms filter on the reader list. An empty reader list
// fails closed to the caller's own identity so the filter can never
// silently widen.
func (b *Builder) BuildFiltered(ctx context.Context, m mode.Mode, query string, size int, readers []string, caller string) (map[string]any, error) {
	clause, err := b.clause(ctx, m, query, size)
	if err != nil {
		return nil, err
	}
	if len(readers) == 0 {
		readers = []string{caller}
	}
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{clause},
				"filter": []any{
					map[string]any{
						"terms": map[string]any{"readers": readers},
					},
				},
			},
		},
	}, nil
}

func (b *Builder) clause(ctx context.Context, m mode.Mode, query string, size int) (map[string]any, error) {
	switch m {
	case mode.Keyword:
		return keywordClause(query), nil
	case mode.Hybrid:
		vector, err := b.vectorClause(ctx, query, size)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"bool": map[string]any{
				"should": []any{keywordClause(query), vector},
			},
		}, nil
	default:
		// mode.Normalize already collapses unknown values to Vector.
		return b.vectorClause(ctx, query, size)
	}
}

func keywordClause(query string) map[string]any {
	return map[string]any{
		"match": map[string]any{
			textField: map[string]any{"query": query},
		},
	}
}

func (b *Builder) vectorClause(ctx context.Context, query string, size int) (map[string]any, error) {
	if b.embedder == nil {
		return map[string]any{
			"neural": map[string]any{
				vectorField: map[string]any{
					"query_text": query,
					"k":          size,
				},
			},
		}, nil
	}

	res, err := b.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return map[string]any{
		"knn": map[string]any{
			vectorField: map[string]any{
				"vector": res.Embedding,
				"k":      size,
			},
		},
	}, nil
}
