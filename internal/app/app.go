// Package app assembles the repos, services and background workers behind a
// single handle. A transport layer mounts on top of this; until then cmd
// drives it directly.
package app

import (
	"context"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/ingestion"
	"github.com/yungbote/edumentor-backend/internal/jobs"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/services"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
	"github.com/yungbote/edumentor-backend/internal/vectorindex"
)

type App struct {
	Documents   services.DocumentService
	Retrieval   services.RetrievalService
	Contents    services.ContentService
	Tests       services.TestService
	Students    services.StudentService
	Evaluations services.EvaluationService
	Progress    services.ProgressService

	Worker *jobs.IngestWorker

	log *logger.Logger
}

func New(kv store.KV, embedder embedding.Embedder, cfg config.Config, baseLog *logger.Logger) *App {
	documentRepo := repos.NewDocumentRepo(kv, baseLog)
	chunkRepo := repos.NewChunkRepo(kv, baseLog)
	contentRepo := repos.NewContentRepo(kv, baseLog)
	testRepo := repos.NewTestRepo(kv, baseLog)
	studentRepo := repos.NewStudentRepo(kv, baseLog)
	submissionRepo := repos.NewSubmissionRepo(kv, baseLog)
	evaluationRepo := repos.NewEvaluationRepo(kv, baseLog)

	indexes := vectorindex.NewManager(baseLog)
	extractor := ingestion.NewPlainTextExtractor()

	a := &App{log: baseLog.With("service", "app")}
	a.Documents = services.NewDocumentService(documentRepo, chunkRepo, extractor, embedder, indexes, cfg, baseLog)
	a.Retrieval = services.NewRetrievalService(documentRepo, chunkRepo, embedder, indexes, cfg, baseLog)
	a.Contents = services.NewContentService(documentRepo, chunkRepo, contentRepo, a.Retrieval, cfg, baseLog)
	a.Tests = services.NewTestService(contentRepo, testRepo, a.Retrieval, cfg, baseLog)
	a.Students = services.NewStudentService(studentRepo, baseLog)
	a.Evaluations = services.NewEvaluationService(studentRepo, testRepo, submissionRepo, evaluationRepo, embedder, cfg, baseLog)
	a.Progress = services.NewProgressService(studentRepo, contentRepo, evaluationRepo, cfg, baseLog)
	a.Worker = jobs.NewIngestWorker(a.Documents, cfg, baseLog)
	return a
}

// Run requeues documents a previous run left unindexed, then blocks in the
// ingest worker until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.requeueUnindexed(ctx)
	return a.Worker.Run(ctx)
}

func (a *App) requeueUnindexed(ctx context.Context) {
	docs, err := a.Documents.List(ctx)
	if err != nil {
		a.log.Warn("Could not list documents for requeue", "error", err)
		return
	}
	requeued := 0
	for _, doc := range docs {
		if doc.IndexState != types.IndexStatePending && doc.IndexState != types.IndexStateProcessing {
			continue
		}
		if !a.Worker.Enqueue(doc.ID) {
			a.log.Warn("Ingest queue full, document stays unindexed", "document_id", doc.ID)
			continue
		}
		requeued++
	}
	if requeued > 0 {
		a.log.Info("Requeued unindexed documents", "count", requeued)
	}
}
