// Package index owns the write path to the search engine: segment
// upserts, document deletes, contentId lookup, and cluster health.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mirrordex/internal/domain"
	domacl "github.com/kailas-cloud/mirrordex/internal/domain/acl"
	"github.com/kailas-cloud/mirrordex/internal/domain/segment"
)

// client is the consumer interface for engine REST calls (ISP).
type client interface {
	Execute(ctx context.Context, method, endpoint string, body []byte) ([]byte, error)
}

// Repo implements the document indexer over the engine REST API.
type Repo struct {
	client client
	index  string
	logger *zap.Logger
}

// New creates a document indexer for the named index.
func New(c client, indexName string, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{client: c, index: indexName, logger: logger}
}

// indexDoc is the wire shape of one indexed segment.
type indexDoc struct {
	ID        string        `json:"id"`
	DBID      int64         `json:"dbid"`
	ContentID string        `json:"contentId"`
	Name      string        `json:"name"`
	Text      string        `json:"text"`
	NodeRef   string        `json:"nodeRef,omitempty"`
	ACL       []domacl.Entry `json:"acl,omitempty"`
	Readers   []string      `json:"readers"`
}

// UpsertSegment writes one segment. Writing the same segment id twice
// replaces the prior value.
func (r *Repo) UpsertSegment(ctx context.Context, seg segment.Segment) error {
	doc := indexDoc{
		ID:        seg.ID(),
		DBID:      seg.DBID,
		ContentID: seg.ContentID,
		Name:      seg.Name,
		Text:      seg.Text,
		NodeRef:   seg.NodeRef,
		ACL:       seg.ACL,
		Readers:   seg.Readers,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal segment %s: %w", domain.ErrIndexWrite, seg.ID(), err)
	}

	endpoint := fmt.Sprintf("/%s/_doc/%s", r.index, url.PathEscape(seg.ID()))
	if _, err := r.client.Execute(ctx, http.MethodPut, endpoint, body); err != nil {
		return fmt.Errorf("%w: segment %s: %w", domain.ErrIndexWrite, seg.ID(), err)
	}
	return nil
}

// deleteByQuery matches every segment of one document: the bare id and
// any id with a segment suffix.
type deleteByQuery struct {
	Query struct {
		Bool struct {
			Should []map[string]any `json:"should"`
		} `json:"bool"`
	} `json:"query"`
}

// DeleteDocument removes all segments of a document. A document with no
// indexed segments is not an error.
func (r *Repo) DeleteDocument(ctx context.Context, documentID string) error {
	var q deleteByQuery
	q.Query.Bool.Should = []map[string]any{
		{"term": map[string]any{"id": documentID}},
		{"prefix": map[string]any{"id": documentID + "_"}},
	}

	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("%w: marshal delete for %s: %w", domain.ErrIndexWrite, documentID, err)
	}

	endpoint := fmt.Sprintf("/%s/_delete_by_query", r.index)
	if _, err := r.client.Execute(ctx, http.MethodPost, endpoint, body); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: delete %s: %w", domain.ErrIndexWrite, documentID, err)
	}
	return nil
}

// ContentID returns the content identifier stored for a document, or ""
// when the document was never indexed. Used as the change-detection
// oracle: a node is re-indexed only when its current contentId differs.
func (r *Repo) ContentID(ctx context.Context, documentID string) (string, error) {
	// Segment 0 exists for every indexed document and carries the
	// shared contentId.
	endpoint := fmt.Sprintf("/%s/_doc/%s_0", r.index, url.PathEscape(documentID))
	data, err := r.client.Execute(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get contentId for %s: %w", documentID, err)
	}

	var resp struct {
		Source struct {
			ContentID string `json:"contentId"`
		} `json:"_source"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		r.logger.Debug("unparsable document source, treating as unindexed",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return "", nil
	}
	return resp.Source.ContentID, nil
}

// HealthCheck reports whether the index is serving. Yellow (degraded
// but serving) counts as healthy.
func (r *Repo) HealthCheck(ctx context.Context) (bool, error) {
	data, err := r.client.Execute(ctx, http.MethodGet, "/_cluster/health/"+r.index, nil)
	if err != nil {
		return false, fmt.Errorf("cluster health: %w", err)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("parse cluster health: %w", err)
	}
	return resp.Status == "green" || resp.Status == "yellow", nil
}
