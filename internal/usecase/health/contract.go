package health

import "context"

// CursorPinger checks cursor store availability.
type CursorPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the engine index is serving.
type IndexChecker interface {
	HealthCheck(ctx context.Context) (bool, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
