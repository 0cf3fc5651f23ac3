package indexer

import (
	"context"

	domacl "github.com/kailas-cloud/mirrordex/internal/domain/acl"
	"github.com/kailas-cloud/mirrordex/internal/domain/change"
	"github.com/kailas-cloud/mirrordex/internal/domain/node"
	"github.com/kailas-cloud/mirrordex/internal/domain/segment"
)

// ContentSource reads the change feed, node metadata, and raw text from
// the repository.
type ContentSource interface {
	Changes(ctx context.Context, minSequenceID int64, maxResults int) (change.Feed, error)
	Metadata(ctx context.Context, nodeIDs []int64) ([]node.Node, error)
	Text(ctx context.Context, nodeID int64) (string, error)
}

// ACLResolver converts a node's permission listing into ACL entries and
// a reader set, failing closed on error.
type ACLResolver interface {
	Resolve(ctx context.Context, nodeID string) ([]domacl.Entry, domacl.ReaderSet, error)
}

// DocumentIndexer owns the write path to the search engine.
type DocumentIndexer interface {
	UpsertSegment(ctx context.Context, seg segment.Segment) error
	DeleteDocument(ctx context.Context, documentID string) error
	ContentID(ctx context.Context, documentID string) (string, error)
}

// CursorStore persists the highest fully committed change-sequence id.
// The loop reads it at batch start and advances it through CompareAndSet
// only after the whole batch has been classified and processed.
type CursorStore interface {
	Read(ctx context.Context) (int64, error)
	CompareAndSet(ctx context.Context, expected, next int64) error
}
