package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/types"
)

type ContentService interface {
	// Generate builds study content from an indexed document: extracted
	// topics, a sectioned outline grounded in retrieved chunks, and study
	// questions.
	Generate(ctx context.Context, documentID uuid.UUID) (*types.Content, error)

	Get(ctx context.Context, contentID uuid.UUID) (*types.Content, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*types.Content, error)
	List(ctx context.Context) ([]*types.Content, error)

	// GeneratePlan attaches a day-by-day lesson plan to existing content.
	// Multi-day plans reserve the final day for assessment.
	GeneratePlan(ctx context.Context, contentID uuid.UUID, days int) (*types.LessonPlan, error)

	// Delete removes the content and its embedded lesson plan. Tests already
	// generated from it stay retrievable.
	Delete(ctx context.Context, contentID uuid.UUID) error
}

type contentService struct {
	docs      repos.DocumentRepo
	chunks    repos.ChunkRepo
	contents  repos.ContentRepo
	retrieval RetrievalService
	cfg       config.Config
	log       *logger.Logger
}

func NewContentService(
	docs repos.DocumentRepo,
	chunks repos.ChunkRepo,
	contents repos.ContentRepo,
	retrieval RetrievalService,
	cfg config.Config,
	baseLog *logger.Logger,
) ContentService {
	return &contentService{
		docs:      docs,
		chunks:    chunks,
		contents:  contents,
		retrieval: retrieval,
		cfg:       cfg,
		log:       baseLog.With("service", "content"),
	}
}

func (s *contentService) Generate(ctx context.Context, documentID uuid.UUID) (*types.Content, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.IndexState != types.IndexStateCompleted {
		return nil, fmt.Errorf("document %s is not indexed yet: %w", documentID, errors.ErrInsufficientContent)
	}
	chunks, err := s.chunks.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s has no chunks: %w", documentID, errors.ErrInsufficientContent)
	}

	text := reconstructText(chunks)
	title := documentTitle(doc.Filename)
	topics := extractTopics(text, s.cfg.Synthesis.MaxTopics)

	content := &types.Content{
		ID:         uuid.New(),
		DocumentID: documentID,
		Title:      title + " Study Guide",
		Topics:     topics,
		CreatedAt:  time.Now().UTC(),
	}

	if len(topics) == 0 {
		// Degenerate input: too little prose to rank topics. Fall back to a
		// single overview section instead of failing.
		content.Outline = degenerateOutline(title, text)
		content.Topics = []string{title}
	} else {
		outline, err := s.buildOutline(ctx, documentID, title, text, topics)
		if err != nil {
			return nil, err
		}
		content.Outline = outline
	}

	if err := s.contents.Create(ctx, content); err != nil {
		return nil, err
	}
	s.log.Info("Content generated", "content_id", content.ID, "document_id", documentID, "topics", len(content.Topics))
	return content, nil
}

func (s *contentService) buildOutline(ctx context.Context, documentID uuid.UUID, title, text string, topics []string) (types.Outline, error) {
	outline := types.Outline{
		Introduction: types.Introduction{
			Overview:   strings.Join(firstSentences(text, 2), " "),
			Objectives: make([]string, 0, len(topics)),
		},
	}
	for _, t := range topics {
		outline.Introduction.Objectives = append(outline.Introduction.Objectives,
			fmt.Sprintf("Understand %s and its role in the material", t))
	}

	for i, topic := range topics {
		hits, err := s.retrieval.Retrieve(ctx, documentID, topic, s.cfg.Synthesis.ChunksPerTopic)
		if err != nil {
			return types.Outline{}, err
		}
		section := types.Section{
			Number: i + 1,
			Title:  topic,
			StudyQuestions: []string{
				fmt.Sprintf("Explain the significance of %s in this material.", topic),
				fmt.Sprintf("How does %s relate to the other topics covered?", topic),
			},
		}
		for _, h := range hits {
			section.ChunkIndexes = append(section.ChunkIndexes, h.Chunk.Index)
			for _, sent := range firstSentences(h.Chunk.Text, 1) {
				section.KeyPoints = append(section.KeyPoints, truncateRunes(sent, 200))
				if len(section.KeyPoints) >= 3 {
					break
				}
			}
			if len(section.KeyPoints) >= 3 {
				break
			}
		}
		if len(hits) > 0 {
			section.Summary = truncateRunes(strings.Join(firstSentences(hits[0].Chunk.Text, 2), " "), 400)
		}
		outline.Sections = append(outline.Sections, section)
	}

	outline.Conclusion = types.Conclusion{
		Summary: fmt.Sprintf("This guide covered %d topics drawn from %s.", len(topics), title),
		NextSteps: []string{
			"Review the key points of each section",
			"Answer the study questions without referring back to the material",
			"Take a practice test to check retention",
		},
	}
	return outline, nil
}

func degenerateOutline(title, text string) types.Outline {
	return types.Outline{
		Introduction: types.Introduction{
			Overview:   truncateRunes(text, 300),
			Objectives: []string{fmt.Sprintf("Review the material in %s", title)},
		},
		Sections: []types.Section{{
			Number:         1,
			Title:          title,
			KeyPoints:      firstSentences(text, 3),
			Summary:        truncateRunes(text, 400),
			StudyQuestions: []string{fmt.Sprintf("Summarize the main ideas of %s in your own words.", title)},
		}},
		Conclusion: types.Conclusion{
			Summary:   fmt.Sprintf("The material in %s is brief; review it directly.", title),
			NextSteps: []string{"Re-read the source material", "Take a practice test to check retention"},
		},
	}
}

func (s *contentService) Get(ctx context.Context, contentID uuid.UUID) (*types.Content, error) {
	return s.contents.GetByID(ctx, contentID)
}

func (s *contentService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*types.Content, error) {
	return s.contents.ListByDocument(ctx, documentID)
}

func (s *contentService) List(ctx context.Context) ([]*types.Content, error) {
	return s.contents.List(ctx)
}

func (s *contentService) GeneratePlan(ctx context.Context, contentID uuid.UUID, days int) (*types.LessonPlan, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if days < 1 {
		days = 1
	}
	if days > s.cfg.Synthesis.MaxPlanDays {
		days = s.cfg.Synthesis.MaxPlanDays
	}

	plan := &types.LessonPlan{
		ID:           uuid.New(),
		ContentID:    contentID,
		Title:        content.Title + " Lesson Plan",
		DurationDays: days,
		CreatedAt:    time.Now().UTC(),
	}

	studyDays := days
	if days > 1 {
		studyDays = days - 1
	}
	buckets := make([][]string, studyDays)
	for i, topic := range content.Topics {
		buckets[i%studyDays] = append(buckets[i%studyDays], topic)
	}
	for d := 0; d < studyDays; d++ {
		day := types.PlanDay{
			Day:           d + 1,
			Topics:        buckets[d],
			EstimatedTime: "2 hours",
		}
		for _, topic := range buckets[d] {
			day.Activities = append(day.Activities,
				fmt.Sprintf("Read the section on %s", topic),
				fmt.Sprintf("Answer the study questions for %s", topic),
			)
		}
		if len(day.Activities) == 0 {
			day.Activities = []string{"Review the study guide"}
		}
		plan.Days = append(plan.Days, day)
	}
	if days > 1 {
		plan.Days = append(plan.Days, types.PlanDay{
			Day:           days,
			Topics:        content.Topics,
			EstimatedTime: "1 hour",
			Assessment:    true,
			Activities: []string{
				"Take a practice test covering all topics",
				"Revisit any topic that scored poorly",
			},
		})
	}

	content.LessonPlan = plan
	if err := s.contents.Update(ctx, content); err != nil {
		return nil, err
	}
	s.log.Info("Lesson plan generated", "content_id", contentID, "days", days)
	return plan, nil
}

func (s *contentService) Delete(ctx context.Context, contentID uuid.UUID) error {
	if _, err := s.contents.GetByID(ctx, contentID); err != nil {
		return err
	}
	if err := s.contents.Delete(ctx, contentID); err != nil {
		return err
	}
	s.log.Info("Content deleted", "content_id", contentID)
	return nil
}

func documentTitle(filename string) string {
	base := filepath.Base(filename)
	// filepath.Base maps "" to "." and keeps a bare separator.
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" {
		return "Untitled Document"
	}
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}
