// Package indexer drives the transaction-based change-detection loop:
// it pulls change records in bounded batches, classifies each as an
// update or delete, mirrors the affected documents into the index, and
// advances the cursor once the batch is done.
package indexer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/mirrordex/internal/domain/change"
	"github.com/kailas-cloud/mirrordex/internal/domain/node"
	"github.com/kailas-cloud/mirrordex/internal/domain/segment"
	"github.com/kailas-cloud/mirrordex/internal/metrics"
)

// Service is the batch indexing state machine.
type Service struct {
	content ContentSource
	acl     ACLResolver
	index   DocumentIndexer
	cursor  CursorStore

	maxResults     int
	segmentChars   int
	indexableTypes map[string]struct{}
	logger         *zap.Logger

	// running guards against overlapping ticks.
	running atomic.Bool
}

// Config holds loop settings.
type Config struct {
	MaxResults     int
	SegmentChars   int
	IndexableTypes []string
	Logger         *zap.Logger
}

// New creates an indexing service.
func New(content ContentSource, acl ACLResolver, index DocumentIndexer, cursor CursorStore, cfg Config) *Service {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	segmentChars := cfg.SegmentChars
	if segmentChars <= 0 {
		segmentChars = segment.DefaultMaxChars
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	types := make(map[string]struct{}, len(cfg.IndexableTypes))
	for _, t := range cfg.IndexableTypes {
		types[t] = struct{}{}
	}

	return &Service{
		content:        content,
		acl:            acl,
		index:          index,
		cursor:         cursor,
		maxResults:     maxResults,
		segmentChars:   segmentChars,
		indexableTypes: types,
		logger:         logger,
	}
}

// Run drives RunOnce on a fixed interval until ctx is cancelled. Ticks
// never overlap: a tick that finds the previous run still active is
// dropped by the running guard.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("indexing batch failed", zap.Error(err))
			}
		}
	}
}

// RunOnce executes one full pass of the state machine: fetch changes
// after the cursor, classify, process every record best-effort, then
// commit the cursor. Any fetch, parse, or classification error returns
// without advancing the cursor so the whole batch is retried on the
// next tick.
func (s *Service) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous indexing run still active, skipping tick")
		return nil
	}
	defer s.running.Store(false)

	start := time.Now()
	defer func() {
		metrics.IndexerBatchDuration.Observe(time.Since(start).Seconds())
	}()

	committed, err := s.cursor.Read(ctx)
	if err != nil {
		metrics.IndexerBatchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("read cursor: %w", err)
	}

	feed, err := s.content.Changes(ctx, committed+1, s.maxResults)
	if err != nil {
		metrics.IndexerBatchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch changes: %w", err)
	}

	if len(feed.Records) == 0 {
		s.logger.Info("fully caught up",
			zap.Int64("cursor", committed),
			zap.Int64("max_known_sequence_id", feed.MaxKnownSequenceID),
		)
		metrics.IndexerBatchesTotal.WithLabelValues("empty").Inc()
		return nil
	}

	_, maxSeq, _ := change.Span(feed.Records)
	s.logger.Info("indexing batch",
		zap.Int("records", len(feed.Records)),
		zap.Int64("from", committed+1),
		zap.Int64("to", maxSeq),
	)

	batch, err := s.classify(ctx, feed.Records)
	if err != nil {
		metrics.IndexerBatchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("classify batch: %w", err)
	}

	// Per-record processing is best-effort: a failed node is logged and
	// retried on a later tick via the contentId comparison, it never
	// blocks the rest of the batch.
	for _, d := range batch.deletions {
		if err := s.index.DeleteDocument(ctx, d.uuid); err != nil {
			metrics.NodesProcessedTotal.WithLabelValues("failed").Inc()
			s.logger.Error("delete failed", zap.String("document_id", d.uuid), zap.Error(err))
			continue
		}
		metrics.NodesProcessedTotal.WithLabelValues("deleted").Inc()
		s.logger.Debug("deleted document", zap.String("document_id", d.uuid))
	}

	for _, n := range batch.updates {
		if err := s.processNode(ctx, n); err != nil {
			metrics.NodesProcessedTotal.WithLabelValues("failed").Inc()
			s.logger.Error("node processing failed",
				zap.Int64("node_id", n.ID),
				zap.String("node_ref", n.NodeRef),
				zap.Error(err),
			)
		}
	}

	if err := s.cursor.CompareAndSet(ctx, committed, maxSeq); err != nil {
		metrics.IndexerBatchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("commit cursor %d -> %d: %w", committed, maxSeq, err)
	}

	metrics.IndexerCursor.Set(float64(maxSeq))
	metrics.IndexerBatchesTotal.WithLabelValues("indexed").Inc()
	return nil
}

type deletion struct {
	uuid string
}

type classified struct {
	deletions []deletion
	updates   []node.Node
}

// classify validates every record and resolves update metadata in one
// call. A malformed reference or a record whose metadata cannot be
// fetched aborts the whole batch: the cursor must not move past a
// record that was never understood.
func (s *Service) classify(ctx context.Context, records []change.Record) (classified, error) {
	var out classified
	var updateIDs []int64

	for _, rec := range records {
		switch rec.Status {
		case change.Deleted:
			uuid, err := node.ExtractUUID(rec.NodeRef)
			if err != nil {
				return classified{}, fmt.Errorf("record %d: %w", rec.SequenceID, err)
			}
			out.deletions = append(out.deletions, deletion{uuid: uuid})
		case change.Updated:
			updateIDs = append(updateIDs, rec.NodeID)
		default:
			// Unknown statuses are rejected at feed parse time; one
			// showing up here means the contract changed.
			return classified{}, fmt.Errorf("record %d: unhandled status %q", rec.SequenceID, rec.Status)
		}
	}

	if len(updateIDs) > 0 {
		nodes, err := s.content.Metadata(ctx, updateIDs)
		if err != nil {
			return classified{}, fmt.Errorf("fetch metadata: %w", err)
		}
		for _, n := range nodes {
			if _, err := n.UUID(); err != nil {
				return classified{}, fmt.Errorf("node %d: %w", n.ID, err)
			}
		}
		out.updates = nodes
	}

	return out, nil
}

// processNode mirrors one created or updated node into the index. The
// delete of prior segments happens before any new upsert; the upserts
// themselves fan out concurrently and are all joined before the node
// counts as processed.
func (s *Service) processNode(ctx context.Context, n node.Node) error {
	if _, ok := s.indexableTypes[n.Type]; !ok {
		metrics.NodesProcessedTotal.WithLabelValues("skipped").Inc()
		s.logger.Debug("skipping non-indexable type", zap.String("type", n.Type))
		return nil
	}
	if !n.InPrimaryStore() {
		metrics.NodesProcessedTotal.WithLabelValues("skipped").Inc()
		s.logger.Debug("skipping node outside primary store",
			zap.Int64("node_id", n.ID),
			zap.String("store", n.StoreIdentifier()),
		)
		return nil
	}

	uuid, err := n.UUID()
	if err != nil {
		return err
	}

	contentID := n.ContentID()
	stored, err := s.index.ContentID(ctx, uuid)
	if err != nil {
		return fmt.Errorf("lookup stored contentId: %w", err)
	}
	if contentID == stored {
		metrics.NodesProcessedTotal.WithLabelValues("unchanged").Inc()
		s.logger.Debug("contentId unchanged, skipping",
			zap.String("document_id", uuid),
			zap.String("content_id", contentID),
		)
		return nil
	}

	entries, readers, err := s.acl.Resolve(ctx, uuid)
	if err != nil {
		// Fail closed: the resolver already returned the sentinel-only
		// reader set, the document stays indexed but restricted.
		s.logger.Warn("permission resolution failed, indexing with sentinel-only readers",
			zap.String("document_id", uuid),
			zap.Error(err),
		)
	}

	text, err := s.content.Text(ctx, n.ID)
	if err != nil {
		return fmt.Errorf("fetch text: %w", err)
	}

	if err := s.index.DeleteDocument(ctx, uuid); err != nil {
		return fmt.Errorf("delete prior segments: %w", err)
	}

	pieces := segment.Split(text, s.segmentChars)
	readerValues := readers.Values()

	var g errgroup.Group
	for i, piece := range pieces {
		seg := segment.Segment{
			DocumentID: uuid,
			Index:      i,
			DBID:       n.ID,
			ContentID:  contentID,
			Name:       n.Name(),
			Text:       piece,
			NodeRef:    n.NodeRef,
			ACL:        entries,
			Readers:    readerValues,
		}
		g.Go(func() error {
			if err := s.index.UpsertSegment(ctx, seg); err != nil {
				s.logger.Error("segment upsert failed",
					zap.String("segment_id", seg.ID()),
					zap.Error(err),
				)
				return err
			}
			metrics.SegmentsIndexedTotal.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("index segments for %s: %w", uuid, err)
	}

	metrics.NodesProcessedTotal.WithLabelValues("indexed").Inc()
	s.logger.Debug("indexed document",
		zap.String("document_id", uuid),
		zap.String("content_id", contentID),
		zap.Int("segments", len(pieces)),
		zap.Int("readers", len(readerValues)),
	)
	return nil
}
