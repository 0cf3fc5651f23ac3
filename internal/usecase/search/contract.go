package search

import (
	"context"

	domacl "github.com/kailas-cloud/mirrordex/internal/domain/acl"
)

// QueryExecutor sends a request to the search engine REST API and
// returns the raw response body.
type QueryExecutor interface {
	Execute(ctx context.Context, method, endpoint string, body []byte) ([]byte, error)
}

// ReaderSource expands a caller identity into the authorities that may
// appear in a document's reader list.
type ReaderSource interface {
	CallerReaders(ctx context.Context, username string) domacl.ReaderSet
}
