package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/edumentor-backend/internal/platform/envutil"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
)

const policyFileEnv = "EDU_POLICY_YAML"

// Config carries every tunable policy in one place. The similarity thresholds
// and mix ratios are heuristics, not calibrated constants; treat them as
// starting points.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Progress  ProgressConfig  `yaml:"progress"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

type SynthesisConfig struct {
	MaxTopics      int `yaml:"max_topics"`
	ChunksPerTopic int `yaml:"chunks_per_topic"`
	MaxPlanDays    int `yaml:"max_plan_days"`

	// TypeMix maps difficulty -> question type -> relative weight. Weights are
	// normalized at use time, so rows do not have to sum to 1.
	TypeMix map[string]map[string]float64 `yaml:"type_mix"`
}

type ScoringConfig struct {
	// ShortAnswerThreshold is the minimum embedding similarity before a short
	// answer earns any points; points scale linearly from there to 1.0.
	ShortAnswerThreshold float64 `yaml:"short_answer_threshold"`

	EssayRelevanceWeight float64 `yaml:"essay_relevance_weight"`
	EssayLengthWeight    float64 `yaml:"essay_length_weight"`
	EssayMinWords        int     `yaml:"essay_min_words"`
}

type ProgressConfig struct {
	// TrendDelta is the score-percentage margin between the earliest and most
	// recent thirds before a history counts as improving or declining.
	TrendDelta float64 `yaml:"trend_delta"`

	// Quantile bounds the strengths/weaknesses lists: topics in the top or
	// bottom quantile of per-topic average score.
	Quantile float64 `yaml:"quantile"`

	// MasteryThreshold is the per-topic score ratio at which a learning-path
	// milestone counts as completed.
	MasteryThreshold float64 `yaml:"mastery_threshold"`
}

type IngestConfig struct {
	Workers        int `yaml:"workers"`
	EmbedBatchSize int `yaml:"embed_batch_size"`
}

func Default() Config {
	return Config{
		Chunking:  ChunkingConfig{Size: 500, Overlap: 50},
		Retrieval: RetrievalConfig{TopK: 5},
		Synthesis: SynthesisConfig{
			MaxTopics:      5,
			ChunksPerTopic: 5,
			MaxPlanDays:    7,
			TypeMix: map[string]map[string]float64{
				"easy":   {"multiple_choice": 0.6, "short_answer": 0.3, "essay": 0.1},
				"medium": {"multiple_choice": 0.4, "short_answer": 0.4, "essay": 0.2},
				"hard":   {"multiple_choice": 0.2, "short_answer": 0.4, "essay": 0.4},
			},
		},
		Scoring: ScoringConfig{
			ShortAnswerThreshold: 0.55,
			EssayRelevanceWeight: 0.6,
			EssayLengthWeight:    0.4,
			EssayMinWords:        300,
		},
		Progress: ProgressConfig{
			TrendDelta:       5.0,
			Quantile:         0.25,
			MasteryThreshold: 0.8,
		},
		Ingest: IngestConfig{Workers: 2, EmbedBatchSize: 64},
	}
}

// Load resolves the effective config: defaults, then the optional policy YAML,
// then environment overrides for the knobs that get tuned per deployment.
func Load(log *logger.Logger) (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(policyFileEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read policy file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse policy file %q: %w", path, err)
		}
		if log != nil {
			log.Info("Policy file loaded", "path", path)
		}
	}

	cfg.Chunking.Size = envutil.Int("EDU_CHUNK_SIZE", cfg.Chunking.Size)
	cfg.Chunking.Overlap = envutil.Int("EDU_CHUNK_OVERLAP", cfg.Chunking.Overlap)
	cfg.Retrieval.TopK = envutil.Int("EDU_RETRIEVAL_TOP_K", cfg.Retrieval.TopK)
	cfg.Scoring.ShortAnswerThreshold = envutil.Float("EDU_SHORT_ANSWER_THRESHOLD", cfg.Scoring.ShortAnswerThreshold)
	cfg.Progress.TrendDelta = envutil.Float("EDU_TREND_DELTA", cfg.Progress.TrendDelta)
	cfg.Ingest.Workers = envutil.Int("EDU_INGEST_WORKERS", cfg.Ingest.Workers)
	cfg.Ingest.EmbedBatchSize = envutil.Int("EDU_EMBED_BATCH_SIZE", cfg.Ingest.EmbedBatchSize)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Scoring.ShortAnswerThreshold < 0 || c.Scoring.ShortAnswerThreshold >= 1 {
		return fmt.Errorf("scoring.short_answer_threshold must be in [0,1), got %v", c.Scoring.ShortAnswerThreshold)
	}
	if c.Progress.Quantile <= 0 || c.Progress.Quantile >= 0.5 {
		return fmt.Errorf("progress.quantile must be in (0,0.5), got %v", c.Progress.Quantile)
	}
	for difficulty, row := range c.Synthesis.TypeMix {
		var total float64
		for qt, w := range row {
			if w < 0 {
				return fmt.Errorf("synthesis.type_mix.%s.%s must be non-negative, got %v", difficulty, qt, w)
			}
			total += w
		}
		if total <= 0 {
			return fmt.Errorf("synthesis.type_mix.%s weights must sum to a positive value", difficulty)
		}
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest.workers must be positive, got %d", c.Ingest.Workers)
	}
	if c.Ingest.EmbedBatchSize <= 0 {
		return fmt.Errorf("ingest.embed_batch_size must be positive, got %d", c.Ingest.EmbedBatchSize)
	}
	return nil
}
