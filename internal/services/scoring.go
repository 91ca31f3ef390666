package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/types"
)

// scorer grades one answer per question type via a dispatch table. Scoring is
// deterministic for a fixed embedder: the same submission always grades the
// same way.
type scorer struct {
	embedder embedding.Embedder
	cfg      config.ScoringConfig
	dispatch map[types.QuestionType]scoreFunc
}

type scoreFunc func(ctx context.Context, q types.Question, a types.Answer, answered bool) (types.QuestionResult, error)

func newScorer(embedder embedding.Embedder, cfg config.ScoringConfig) *scorer {
	s := &scorer{embedder: embedder, cfg: cfg}
	s.dispatch = map[types.QuestionType]scoreFunc{
		types.QuestionMultipleChoice: s.scoreMultipleChoice,
		types.QuestionShortAnswer:    s.scoreShortAnswer,
		types.QuestionEssay:          s.scoreEssay,
	}
	return s
}

func (s *scorer) score(ctx context.Context, q types.Question, a types.Answer, answered bool) (types.QuestionResult, error) {
	fn, ok := s.dispatch[q.Type]
	if !ok {
		return types.QuestionResult{}, fmt.Errorf("unknown question type %q", q.Type)
	}
	return fn(ctx, q, a, answered)
}

func baseResult(q types.Question) types.QuestionResult {
	return types.QuestionResult{
		QuestionID: q.ID,
		Type:       q.Type,
		Topic:      q.Topic,
		MaxPoints:  q.MaxPoints,
	}
}

func (s *scorer) scoreMultipleChoice(_ context.Context, q types.Question, a types.Answer, answered bool) (types.QuestionResult, error) {
	res := baseResult(q)
	if !answered || a.SelectedIndex == nil {
		res.Feedback = "No answer provided."
		return res, nil
	}
	if *a.SelectedIndex == q.CorrectIndex {
		res.Points = q.MaxPoints
		res.Correct = true
		res.Feedback = "Correct! Well done."
		return res, nil
	}
	res.Feedback = fmt.Sprintf("Incorrect. The correct answer is option %d.", q.CorrectIndex+1)
	return res, nil
}

// scoreShortAnswer grades by embedding similarity against the reference
// answer. Similarity below the threshold earns nothing; above it, points
// scale linearly up to full marks at similarity 1. A strictly more similar
// answer never earns fewer points.
func (s *scorer) scoreShortAnswer(ctx context.Context, q types.Question, a types.Answer, answered bool) (types.QuestionResult, error) {
	res := baseResult(q)
	text := strings.TrimSpace(a.Text)
	if !answered || text == "" {
		res.Feedback = "No answer provided."
		return res, nil
	}

	var ratio float64
	if q.ReferenceAnswer != "" {
		sim, err := s.similarity(ctx, text, q.ReferenceAnswer)
		if err != nil {
			return types.QuestionResult{}, err
		}
		res.Similarity = sim
		if sim > s.cfg.ShortAnswerThreshold {
			ratio = (sim - s.cfg.ShortAnswerThreshold) / (1 - s.cfg.ShortAnswerThreshold)
		}
	} else if len(q.Keywords) > 0 {
		ratio = keywordRatio(text, q.Keywords)
	}
	if ratio > 1 {
		ratio = 1
	}
	res.Points = round2(q.MaxPoints * ratio)
	res.Correct = res.Points >= q.MaxPoints*0.8

	if res.Correct {
		res.Feedback = "Good answer! You've covered the key points."
	} else if missing := missingKeywords(text, q.Keywords); len(missing) > 0 {
		res.Feedback = fmt.Sprintf("Your answer is missing some key points. Consider including: %s.",
			strings.Join(missing, ", "))
	} else {
		res.Feedback = "Your answer could be more detailed. Try to expand on the key concepts."
	}
	return res, nil
}

// scoreEssay weighs topical relevance against length adequacy. Relevance is
// embedding similarity to the rubric topic; length saturates at the
// configured minimum word count.
func (s *scorer) scoreEssay(ctx context.Context, q types.Question, a types.Answer, answered bool) (types.QuestionResult, error) {
	res := baseResult(q)
	text := strings.TrimSpace(a.Text)
	if !answered || text == "" {
		res.Feedback = "No essay provided."
		return res, nil
	}

	topic := q.RubricTopic
	if topic == "" {
		topic = q.Topic
	}
	relevance, err := s.similarity(ctx, text, topic)
	if err != nil {
		return types.QuestionResult{}, err
	}
	if relevance < 0 {
		relevance = 0
	}
	res.Similarity = relevance

	wordCount := len(strings.Fields(text))
	lengthAdequacy := float64(wordCount) / float64(s.cfg.EssayMinWords)
	if lengthAdequacy > 1 {
		lengthAdequacy = 1
	}

	ratio := s.cfg.EssayRelevanceWeight*relevance + s.cfg.EssayLengthWeight*lengthAdequacy
	res.Points = round2(q.MaxPoints * ratio)
	res.Correct = res.Points >= q.MaxPoints*0.6

	if res.Correct {
		res.Feedback = "Good essay! You've addressed the topic well."
	} else if wordCount < s.cfg.EssayMinWords*2/3 {
		res.Feedback = "Your essay is too short. Try to expand on your points with more detail and examples."
	} else {
		res.Feedback = "Your essay could be improved by focusing more directly on the topic and including relevant examples."
	}
	return res, nil
}

func (s *scorer) similarity(ctx context.Context, a, b string) (float64, error) {
	vecs, err := s.embedder.Embed(ctx, []string{a, b})
	if err != nil {
		return 0, fmt.Errorf("embed answers: %w", err)
	}
	return cosineSimilarity(vecs[0], vecs[1]), nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func keywordRatio(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	words := wordSet(text)
	matches := 0
	for _, k := range keywords {
		if words[strings.ToLower(k)] {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}

func missingKeywords(text string, keywords []string) []string {
	words := wordSet(text)
	var missing []string
	for _, k := range keywords {
		if !words[strings.ToLower(k)] {
			missing = append(missing, k)
		}
		if len(missing) == 3 {
			break
		}
	}
	return missing
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,;:!?\"'()")] = true
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
