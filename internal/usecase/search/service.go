// Package search composes engine query bodies per retrieval mode,
// applies the caller's permission filter, and maps engine hits back to
// logical documents.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mirrordex/internal/domain/search/mode"
	"github.com/kailas-cloud/mirrordex/internal/domain/search/result"
	"github.com/kailas-cloud/mirrordex/internal/metrics"
)

// Gateway executes searches against the engine index.
type Gateway struct {
	engine     QueryExecutor
	readers    ReaderSource
	builder    *Builder
	index      string
	maxResults int
	logger     *zap.Logger
}

// Config holds gateway settings.
type Config struct {
	IndexName  string
	MaxResults int
	Logger     *zap.Logger
}

// New creates a search gateway.
func New(engine QueryExecutor, readers ReaderSource, builder *Builder, cfg Config) *Gateway {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		engine:     engine,
		readers:    readers,
		builder:    builder,
		index:      cfg.IndexName,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Search runs an unfiltered query. Intended for trusted internal
// callers; the web transport exposes it only behind API-key auth.
func (g *Gateway) Search(ctx context.Context, rawMode, query string, limit int) ([]result.Result, error) {
	m := mode.Normalize(rawMode)
	body, err := g.builder.Build(ctx, m, query, g.clampLimit(limit))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		return nil, err
	}
	return g.execute(ctx, m, body)
}

// SecureSearch runs a query restricted to documents the named caller is
// permitted to read. The caller's authorities are resolved fresh per
// request; resolution failure degrades to the caller's own identity.
func (g *Gateway) SecureSearch(ctx context.Context, username, rawMode, query string, limit int) ([]result.Result, error) {
	m := mode.Normalize(rawMode)
	authorities := g.readers.CallerReaders(ctx, username).Values()
	body, err := g.builder.BuildFiltered(ctx, m, query, g.clampLimit(limit), authorities, username)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		return nil, err
	}
	return g.execute(ctx, m, body)
}

func (g *Gateway) clampLimit(limit int) int {
	if limit <= 0 || limit > g.maxResults {
		return g.maxResults
	}
	return limit
}

type searchHit struct {
	Score  float64 `json:"_score"`
	Source struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Text    string `json:"text"`
		NodeRef string `json:"nodeRef"`
	} `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

func (g *Gateway) execute(ctx context.Context, m mode.Mode, body map[string]any) ([]result.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	raw, err := g.engine.Execute(ctx, http.MethodPost, fmt.Sprintf("/%s/_search", url.PathEscape(g.index)), payload)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		return nil, fmt.Errorf("execute search: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	results := make([]result.Result, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		results = append(results, result.Result{
			UUID:    result.StripSegmentSuffix(h.Source.ID),
			Name:    h.Source.Name,
			Text:    h.Source.Text,
			NodeRef: h.Source.NodeRef,
			Score:   h.Score,
		})
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(m), "success").Inc()
	g.logger.Debug("search executed",
		zap.String("mode", string(m)),
		zap.Int("hits", len(results)),
	)
	return results, nil
}
