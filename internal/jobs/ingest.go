// Package jobs runs background work. The ingest worker drains a queue of
// uploaded documents and indexes them off the request path.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/services"
)

type IngestWorker struct {
	docs    services.DocumentService
	queue   chan uuid.UUID
	workers int
	log     *logger.Logger
}

func NewIngestWorker(docs services.DocumentService, cfg config.Config, baseLog *logger.Logger) *IngestWorker {
	workers := cfg.Ingest.Workers
	if workers < 1 {
		workers = 1
	}
	return &IngestWorker{
		docs:    docs,
		queue:   make(chan uuid.UUID, 128),
		workers: workers,
		log:     baseLog.With("worker", "ingest"),
	}
}

// Enqueue schedules a document for indexing. Returns false when the queue is
// full; callers can fall back to synchronous indexing.
func (w *IngestWorker) Enqueue(documentID uuid.UUID) bool {
	select {
	case w.queue <- documentID:
		return true
	default:
		w.log.Warn("Ingest queue full", "document_id", documentID)
		return false
	}
}

// Run processes the queue until the context is cancelled. It blocks, so run
// it in its own goroutine or errgroup.
func (w *IngestWorker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case docID := <-w.queue:
					w.process(gctx, docID)
				}
			}
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// process indexes one document. A panic in the pipeline fails that document
// without taking the worker down.
func (w *IngestWorker) process(ctx context.Context, documentID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Panic while indexing document", "document_id", documentID, "panic", fmt.Sprintf("%v", r))
		}
	}()
	if err := w.docs.Index(ctx, documentID); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Error("Indexing failed", "document_id", documentID, "error", err)
		return
	}
}
