package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/types"
)

const (
	mcqPoints        = 1.0
	shortPoints      = 5.0
	essayPoints      = 20.0
	maxAnswerOptions = 4
)

var mcqTemplates = []string{
	"According to the material, which of the following is true about %s?",
	"Based on the information provided, what can be inferred about %s?",
	"Which statement best describes the role of %s as presented in the material?",
	"What is the main characteristic of %s mentioned in the material?",
}

var shortAnswerTemplates = []string{
	"Explain the concept of %s as described in the material.",
	"What are the key features of %s mentioned in the material?",
	"Describe the role of %s according to the information provided.",
	"What is the significance of %s in the context of the material?",
}

var essayTemplates = []string{
	"Discuss the importance of %s in the broader context of the subject matter.",
	"Analyze the various aspects of %s presented in the material and evaluate their significance.",
	"Critically evaluate the role of %s based on the information provided.",
	"Explain how %s relates to other concepts discussed in the material and provide examples.",
}

var essayGuidelines = []string{
	"Your essay should have a clear introduction, body, and conclusion.",
	"Support your arguments with specific examples from the material.",
	"Demonstrate critical thinking and analysis of the concepts.",
}

type TestService interface {
	// Generate builds a test over existing content. Question types follow
	// the difficulty mix; every question grounds in a distinct outline
	// section before any section is reused.
	Generate(ctx context.Context, contentID uuid.UUID, difficulty types.Difficulty, numQuestions int) (*types.Test, error)

	Get(ctx context.Context, testID uuid.UUID) (*types.Test, error)
	ListByContent(ctx context.Context, contentID uuid.UUID) ([]*types.Test, error)

	// Delete removes the test and its questions. Evaluations of past
	// submissions keep their stored results.
	Delete(ctx context.Context, testID uuid.UUID) error
}

type testService struct {
	contents  repos.ContentRepo
	tests     repos.TestRepo
	retrieval RetrievalService
	cfg       config.Config
	log       *logger.Logger
}

func NewTestService(
	contents repos.ContentRepo,
	tests repos.TestRepo,
	retrieval RetrievalService,
	cfg config.Config,
	baseLog *logger.Logger,
) TestService {
	return &testService{
		contents:  contents,
		tests:     tests,
		retrieval: retrieval,
		cfg:       cfg,
		log:       baseLog.With("service", "tests"),
	}
}

func (s *testService) Generate(ctx context.Context, contentID uuid.UUID, difficulty types.Difficulty, numQuestions int) (*types.Test, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	sections := groundableSections(content)
	if len(sections) == 0 {
		return nil, fmt.Errorf("content %s has no groundable sections: %w", contentID, errors.ErrInsufficientContent)
	}
	if numQuestions < 1 {
		numQuestions = 1
	}

	counts := questionCounts(s.cfg.Synthesis.TypeMix, difficulty, numQuestions)

	test := &types.Test{
		ID:         uuid.New(),
		ContentID:  contentID,
		Title:      content.Title + " Practice Test",
		Difficulty: difficulty,
		CreatedAt:  time.Now().UTC(),
	}

	ordinal := 0
	for _, qt := range []types.QuestionType{types.QuestionMultipleChoice, types.QuestionShortAnswer, types.QuestionEssay} {
		for n := 0; n < counts[qt]; n++ {
			section := sections[ordinal%len(sections)]
			q, err := s.buildQuestion(qt, difficulty, section, sections, ordinal,
				s.sectionContext(ctx, content, section))
			if err != nil {
				return nil, err
			}
			test.Questions = append(test.Questions, q)
			test.TotalPoints += q.MaxPoints
			ordinal++
		}
	}
	test.TimeLimitMinutes = timeLimit(test.Questions)

	if err := s.tests.Create(ctx, test); err != nil {
		return nil, err
	}
	s.log.Info("Test generated", "test_id", test.ID, "content_id", contentID,
		"questions", len(test.Questions), "difficulty", difficulty)
	return test, nil
}

func (s *testService) Get(ctx context.Context, testID uuid.UUID) (*types.Test, error) {
	return s.tests.GetByID(ctx, testID)
}

func (s *testService) ListByContent(ctx context.Context, contentID uuid.UUID) ([]*types.Test, error) {
	return s.tests.ListByContent(ctx, contentID)
}

func (s *testService) Delete(ctx context.Context, testID uuid.UUID) error {
	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		return err
	}
	if err := s.tests.Delete(ctx, testID); err != nil {
		return err
	}
	s.log.Info("Test deleted", "test_id", testID)
	return nil
}

// groundableSections keeps sections with at least one key point to anchor
// questions on.
func groundableSections(content *types.Content) []types.Section {
	out := make([]types.Section, 0, len(content.Outline.Sections))
	for _, sec := range content.Outline.Sections {
		if len(sec.KeyPoints) > 0 || sec.Summary != "" {
			out = append(out, sec)
		}
	}
	return out
}

// questionCounts splits numQuestions across types by the difficulty's mix
// weights using largest remainders, so counts always sum to numQuestions.
func questionCounts(mix map[string]map[string]float64, difficulty types.Difficulty, numQuestions int) map[types.QuestionType]int {
	weights := mix[string(difficulty)]
	var total float64
	for _, w := range weights {
		total += w
	}
	// A missing or degenerate row would divide by zero below; fall back to the
	// balanced default instead.
	if total <= 0 {
		weights = map[string]float64{
			string(types.QuestionMultipleChoice): 0.4,
			string(types.QuestionShortAnswer):    0.4,
			string(types.QuestionEssay):          0.2,
		}
		total = 1.0
	}
	order := []types.QuestionType{types.QuestionMultipleChoice, types.QuestionShortAnswer, types.QuestionEssay}
	type share struct {
		qt   types.QuestionType
		frac float64
	}
	counts := make(map[types.QuestionType]int, len(order))
	assigned := 0
	var shares []share
	for _, qt := range order {
		exact := float64(numQuestions) * weights[string(qt)] / total
		n := int(math.Floor(exact))
		counts[qt] = n
		assigned += n
		shares = append(shares, share{qt, exact - float64(n)})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].frac > shares[j].frac })
	for i := 0; assigned < numQuestions; i++ {
		counts[shares[i%len(shares)].qt]++
		assigned++
	}
	return counts
}

// sectionContext pulls the source chunk most relevant to the section's topic
// so reference answers quote the document, not just the outline. A deleted or
// unindexed source falls back to the outline's own key points.
func (s *testService) sectionContext(ctx context.Context, content *types.Content, section types.Section) string {
	hits, err := s.retrieval.Retrieve(ctx, content.DocumentID, section.Title, 1)
	if err != nil || len(hits) == 0 {
		return ""
	}
	return hits[0].Chunk.Text
}

func (s *testService) buildQuestion(qt types.QuestionType, difficulty types.Difficulty, section types.Section, all []types.Section, ordinal int, sourceText string) (types.Question, error) {
	anchor := sectionAnchor(section)
	reference := anchor
	if sents := firstSentences(sourceText, 1); len(sents) > 0 {
		reference = sents[0]
	}
	q := types.Question{
		ID:         uuid.New(),
		Type:       qt,
		Topic:      section.Title,
		Difficulty: difficulty,
	}
	switch qt {
	case types.QuestionMultipleChoice:
		q.Prompt = fmt.Sprintf(mcqTemplates[ordinal%len(mcqTemplates)], section.Title)
		q.MaxPoints = mcqPoints
		q.Options, q.CorrectIndex = buildOptions(anchor, section, all, ordinal)
	case types.QuestionShortAnswer:
		q.Prompt = fmt.Sprintf(shortAnswerTemplates[ordinal%len(shortAnswerTemplates)], section.Title)
		q.MaxPoints = shortPoints
		q.ReferenceAnswer = reference
		q.Keywords = extractKeywords(reference, 8)
		if len(q.Keywords) == 0 {
			q.ReferenceAnswer = anchor
			q.Keywords = extractKeywords(anchor, 8)
		}
	case types.QuestionEssay:
		q.Prompt = fmt.Sprintf(essayTemplates[ordinal%len(essayTemplates)], section.Title)
		q.MaxPoints = essayPoints
		q.RubricTopic = section.Title
		q.Guidelines = essayGuidelines
	default:
		return types.Question{}, fmt.Errorf("unknown question type %q", qt)
	}
	return q, nil
}

// sectionAnchor is the factual sentence a question is built around.
func sectionAnchor(section types.Section) string {
	if len(section.KeyPoints) > 0 {
		return section.KeyPoints[0]
	}
	return section.Summary
}

// buildOptions pairs the correct answer with distractor sentences drawn from
// other sections, padding with a generic wrong answer when the outline is
// small. The correct option's position rotates with the question ordinal.
func buildOptions(correct string, section types.Section, all []types.Section, ordinal int) ([]string, int) {
	var distractors []string
	for off := 1; off < len(all) && len(distractors) < maxAnswerOptions-1; off++ {
		other := all[(sectionOrdinal(section, all)+off)%len(all)]
		if other.Title == section.Title {
			continue
		}
		if a := sectionAnchor(other); a != "" && a != correct {
			distractors = append(distractors, a)
		}
	}
	for len(distractors) < maxAnswerOptions-1 {
		distractors = append(distractors,
			fmt.Sprintf("This is not related to %s", section.Title))
	}

	correctIndex := ordinal % maxAnswerOptions
	options := make([]string, 0, maxAnswerOptions)
	d := 0
	for i := 0; i < maxAnswerOptions; i++ {
		if i == correctIndex {
			options = append(options, correct)
			continue
		}
		options = append(options, distractors[d])
		d++
	}
	return options, correctIndex
}

func sectionOrdinal(section types.Section, all []types.Section) int {
	for i, s := range all {
		if s.Number == section.Number {
			return i
		}
	}
	return 0
}

// timeLimit estimates minutes from per-type base times scaled by difficulty,
// with a 20% buffer and a 10-minute floor.
func timeLimit(questions []types.Question) int {
	var total float64
	for _, q := range questions {
		var base float64
		switch q.Type {
		case types.QuestionMultipleChoice:
			base = 1
		case types.QuestionShortAnswer:
			base = 3
		case types.QuestionEssay:
			base = 10
		default:
			base = 2
		}
		switch q.Difficulty {
		case types.DifficultyEasy:
			base *= 0.8
		case types.DifficultyHard:
			base *= 1.5
		}
		total += base
	}
	minutes := int(total * 1.2)
	if minutes < 10 {
		minutes = 10
	}
	return minutes
}
