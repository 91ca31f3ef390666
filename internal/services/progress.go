package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/types"
)

type ProgressService interface {
	// Progress recomputes the student's progress record from their full
	// evaluation history. Nothing is cached between calls.
	Progress(ctx context.Context, studentID uuid.UUID) (*types.ProgressRecord, error)
}

type progressService struct {
	students    repos.StudentRepo
	contents    repos.ContentRepo
	evaluations repos.EvaluationRepo
	cfg         config.ProgressConfig
	log         *logger.Logger
}

func NewProgressService(
	students repos.StudentRepo,
	contents repos.ContentRepo,
	evaluations repos.EvaluationRepo,
	cfg config.Config,
	baseLog *logger.Logger,
) ProgressService {
	return &progressService{
		students:    students,
		contents:    contents,
		evaluations: evaluations,
		cfg:         cfg.Progress,
		log:         baseLog.With("service", "progress"),
	}
}

func (s *progressService) Progress(ctx context.Context, studentID uuid.UUID) (*types.ProgressRecord, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	evals, err := s.evaluations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	contents, err := s.contents.List(ctx)
	if err != nil {
		return nil, err
	}

	record := &types.ProgressRecord{
		StudentID:    studentID,
		TotalContent: len(contents),
		GeneratedAt:  time.Now().UTC(),
	}

	engaged := make(map[uuid.UUID]bool)
	for _, ev := range evals {
		engaged[ev.ContentID] = true
	}
	record.EngagedContent = len(engaged)
	if record.TotalContent > 0 {
		record.CompletionRate = round2(float64(record.EngagedContent) / float64(record.TotalContent))
	}

	record.Tests = testStats(evals, s.cfg.TrendDelta)

	topics := topicAverages(evals)
	record.Strengths, record.Weaknesses = splitByQuantile(topics, s.cfg.Quantile)
	record.Recommendations = s.recommendations(record)
	record.LearningPath = s.learningPath(studentID, record.Weaknesses)

	s.log.Debug("Progress computed", "student_id", studentID,
		"tests", record.Tests.TotalTests, "trend", record.Tests.Trend)
	return record, nil
}

// testStats summarizes score percentages. The trend compares the mean of the
// most recent third of the history against the mean of the earliest third;
// differences within delta count as stable.
func testStats(evals []*types.Evaluation, delta float64) types.TestStats {
	stats := types.TestStats{Trend: types.TrendNoTests}
	if len(evals) == 0 {
		return stats
	}
	stats.TotalTests = len(evals)
	stats.LowestScore = evals[0].Percentage
	var sum float64
	for _, ev := range evals {
		p := ev.Percentage
		sum += p
		if p > stats.HighestScore {
			stats.HighestScore = p
		}
		if p < stats.LowestScore {
			stats.LowestScore = p
		}
	}
	stats.AverageScore = round2(sum / float64(len(evals)))

	if len(evals) < 3 {
		stats.Trend = types.TrendStable
		return stats
	}
	third := len(evals) / 3
	early := meanPercentage(evals[:third])
	recent := meanPercentage(evals[len(evals)-third:])
	switch {
	case recent-early > delta:
		stats.Trend = types.TrendImproving
	case early-recent > delta:
		stats.Trend = types.TrendDeclining
	default:
		stats.Trend = types.TrendStable
	}
	return stats
}

func meanPercentage(evals []*types.Evaluation) float64 {
	var sum float64
	for _, ev := range evals {
		sum += ev.Percentage
	}
	return sum / float64(len(evals))
}

// topicAverages aggregates per-question score ratios by topic, sorted best
// first; equal averages order alphabetically.
func topicAverages(evals []*types.Evaluation) []types.TopicScore {
	type agg struct {
		sum     float64
		samples int
	}
	byTopic := make(map[string]*agg)
	for _, ev := range evals {
		for _, res := range ev.Results {
			if res.Topic == "" || res.MaxPoints == 0 {
				continue
			}
			a, ok := byTopic[res.Topic]
			if !ok {
				a = &agg{}
				byTopic[res.Topic] = a
			}
			a.sum += res.Points / res.MaxPoints
			a.samples++
		}
	}
	out := make([]types.TopicScore, 0, len(byTopic))
	for topic, a := range byTopic {
		out = append(out, types.TopicScore{
			Topic:   topic,
			Average: round2(a.sum / float64(a.samples)),
			Samples: a.samples,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

// splitByQuantile takes the top and bottom quantile of topics as strengths
// and weaknesses. Topics tied with the first excluded entry are dropped, so a
// flat profile produces neither strengths nor weaknesses.
func splitByQuantile(topics []types.TopicScore, quantile float64) (strengths, weaknesses []types.TopicScore) {
	if len(topics) < 2 {
		return nil, nil
	}
	k := int(math.Ceil(quantile * float64(len(topics))))
	if k < 1 {
		k = 1
	}
	if 2*k > len(topics) {
		k = len(topics) / 2
	}
	if k == 0 {
		return nil, nil
	}

	strengths = append(strengths, topics[:k]...)
	if topics[k-1].Average == topics[k].Average {
		strengths = trimTiedTail(strengths, topics[k].Average)
	}

	bottom := topics[len(topics)-k:]
	if topics[len(topics)-k].Average == topics[len(topics)-k-1].Average {
		bottom = trimTiedHead(bottom, topics[len(topics)-k-1].Average)
	}
	// Weakest first.
	for i := len(bottom) - 1; i >= 0; i-- {
		weaknesses = append(weaknesses, bottom[i])
	}
	return strengths, weaknesses
}

func trimTiedTail(list []types.TopicScore, avg float64) []types.TopicScore {
	for len(list) > 0 && list[len(list)-1].Average == avg {
		list = list[:len(list)-1]
	}
	return list
}

func trimTiedHead(list []types.TopicScore, avg float64) []types.TopicScore {
	for len(list) > 0 && list[0].Average == avg {
		list = list[1:]
	}
	return list
}

func (s *progressService) recommendations(record *types.ProgressRecord) []string {
	var recs []string
	for _, w := range record.Weaknesses {
		recs = append(recs, fmt.Sprintf("Focus on reviewing %s: your average score there is %.0f%%.", w.Topic, w.Average*100))
	}
	if record.Tests.Trend == types.TrendDeclining {
		recs = append(recs, "Your recent scores are trending down. Revisit the material you studied earlier before taking on new topics.")
	}
	if record.Tests.TotalTests < 3 {
		recs = append(recs, "Take more practice tests to build a reliable picture of your progress.")
	}
	if record.CompletionRate < 0.5 && record.TotalContent > 0 {
		recs = append(recs, "You have engaged with less than half of the available study content. Explore the remaining study guides.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Keep up the steady work and continue taking practice tests.")
	}
	return recs
}

// learningPath turns weaknesses into milestones, weakest topic first. A
// milestone completes once the topic's average reaches the mastery threshold.
func (s *progressService) learningPath(studentID uuid.UUID, weaknesses []types.TopicScore) *types.LearningPath {
	if len(weaknesses) == 0 {
		return nil
	}
	path := &types.LearningPath{StudentID: studentID}
	for i, w := range weaknesses {
		path.Milestones = append(path.Milestones, types.Milestone{
			Number:    i + 1,
			Topic:     w.Topic,
			Target:    s.cfg.MasteryThreshold,
			Completed: w.Average >= s.cfg.MasteryThreshold,
		})
	}
	return path
}
