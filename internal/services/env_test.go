package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/ingestion"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
	"github.com/yungbote/edumentor-backend/internal/vectorindex"
)

type testEnv struct {
	cfg         config.Config
	kv          store.KV
	embedder    embedding.Embedder
	indexes     *vectorindex.Manager
	documents   DocumentService
	retrieval   RetrievalService
	contents    ContentService
	tests       TestService
	students    StudentService
	evaluations EvaluationService
	progress    ProgressService

	documentRepo   repos.DocumentRepo
	chunkRepo      repos.ChunkRepo
	contentRepo    repos.ContentRepo
	testRepo       repos.TestRepo
	studentRepo    repos.StudentRepo
	submissionRepo repos.SubmissionRepo
	evaluationRepo repos.EvaluationRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := config.Default()
	cfg.Chunking.Size = 80
	cfg.Chunking.Overlap = 10

	kv := store.NewMemory()
	embedder := embedding.NewLocal(256)
	indexes := vectorindex.NewManager(log)

	env := &testEnv{
		cfg:            cfg,
		kv:             kv,
		embedder:       embedder,
		indexes:        indexes,
		documentRepo:   repos.NewDocumentRepo(kv, log),
		chunkRepo:      repos.NewChunkRepo(kv, log),
		contentRepo:    repos.NewContentRepo(kv, log),
		testRepo:       repos.NewTestRepo(kv, log),
		studentRepo:    repos.NewStudentRepo(kv, log),
		submissionRepo: repos.NewSubmissionRepo(kv, log),
		evaluationRepo: repos.NewEvaluationRepo(kv, log),
	}
	env.documents = NewDocumentService(env.documentRepo, env.chunkRepo, ingestion.NewPlainTextExtractor(), embedder, indexes, cfg, log)
	env.retrieval = NewRetrievalService(env.documentRepo, env.chunkRepo, embedder, indexes, cfg, log)
	env.contents = NewContentService(env.documentRepo, env.chunkRepo, env.contentRepo, env.retrieval, cfg, log)
	env.tests = NewTestService(env.contentRepo, env.testRepo, env.retrieval, cfg, log)
	env.students = NewStudentService(env.studentRepo, log)
	env.evaluations = NewEvaluationService(env.studentRepo, env.testRepo, env.submissionRepo, env.evaluationRepo, embedder, cfg, log)
	env.progress = NewProgressService(env.studentRepo, env.contentRepo, env.evaluationRepo, cfg, log)
	return env
}

const sampleText = `Photosynthesis is the process plants use to convert light energy into
chemical energy. Chlorophyll molecules absorb sunlight in the chloroplast.
The chloroplast contains stacked membranes called thylakoids. Photosynthesis
produces glucose and oxygen from carbon dioxide and water. Cellular
respiration is the complementary process that releases energy from glucose.
Mitochondria carry out cellular respiration in both plants and animals.
Respiration consumes oxygen and produces carbon dioxide and water. Enzymes
regulate both photosynthesis and respiration at every step. Temperature and
light intensity affect the rate of photosynthesis. Glucose molecules store
the chemical energy that respiration later releases. The chloroplast and the
mitochondria together drive the energy cycle of living cells. Photosynthesis
and respiration form a cycle of energy and matter in ecosystems.`

// uploadAndIndex runs the full ingest path and returns the indexed document.
func uploadAndIndex(t *testing.T, env *testEnv, filename, text string) *types.Document {
	t.Helper()
	ctx := context.Background()
	doc, err := env.documents.Upload(ctx, filename, []byte(text))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := env.documents.Index(ctx, doc.ID); err != nil {
		t.Fatalf("index: %v", err)
	}
	doc, err = env.documents.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return doc
}

// buildContent ingests sample material and generates study content over it.
func buildContent(t *testing.T, env *testEnv) *types.Content {
	t.Helper()
	doc := uploadAndIndex(t, env, "biology_notes.txt", sampleText)
	content, err := env.contents.Generate(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("generate content: %v", err)
	}
	return content
}

func intp(v int) *int { return &v }

func repeatSentence(sentence string, n int) string {
	return strings.TrimSpace(strings.Repeat(sentence+" ", n))
}

func mustRegister(t *testing.T, env *testEnv, name, email string) uuid.UUID {
	t.Helper()
	s, err := env.students.Register(context.Background(), name, email)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return s.ID
}
