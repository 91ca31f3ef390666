package app

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
)

func newApp(t *testing.T) *App {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := config.Default()
	cfg.Chunking.Size = 80
	cfg.Chunking.Overlap = 10
	return New(store.NewMemory(), embedding.NewLocal(256), cfg, log)
}

func TestNewWiresAllServices(t *testing.T) {
	a := newApp(t)
	if a.Documents == nil || a.Retrieval == nil || a.Contents == nil ||
		a.Tests == nil || a.Students == nil || a.Evaluations == nil ||
		a.Progress == nil || a.Worker == nil {
		t.Fatalf("app container has unwired services: %+v", a)
	}
}

func TestRunRequeuesUnindexedDocuments(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	text := "Photosynthesis converts light energy into chemical energy inside the chloroplast of plant cells."
	doc, err := a.Documents.Upload(ctx, "notes.txt", []byte(text))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.IndexState != types.IndexStatePending {
		t.Fatalf("state after upload: want=pending got=%s", doc.IndexState)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- a.Run(runCtx) }()

	deadline := time.After(2 * time.Second)
	for {
		got, err := a.Documents.Get(ctx, doc.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.IndexState == types.IndexStateCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("document not indexed after requeue, state=%s", got.IndexState)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
