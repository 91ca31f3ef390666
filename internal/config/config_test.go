package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadChunking(t *testing.T) {
	cfg := Default()
	cfg.Chunking.Size = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("zero chunk size: want error")
	}
	cfg = Default()
	cfg.Chunking.Overlap = cfg.Chunking.Size
	if err := cfg.Validate(); err == nil {
		t.Fatalf("overlap == size: want error")
	}
}

func TestValidateRejectsDegenerateTypeMix(t *testing.T) {
	cfg := Default()
	cfg.Synthesis.TypeMix["easy"] = map[string]float64{"multiple_choice": 0, "short_answer": 0, "essay": 0}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("zero-weight mix row: want error")
	}
	cfg = Default()
	cfg.Synthesis.TypeMix["hard"]["essay"] = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("negative mix weight: want error")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("EDU_CHUNK_SIZE", "200")
	t.Setenv("EDU_CHUNK_OVERLAP", "25")
	t.Setenv("EDU_RETRIEVAL_TOP_K", "7")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chunking.Size != 200 || cfg.Chunking.Overlap != 25 {
		t.Fatalf("chunking overrides: got size=%d overlap=%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Fatalf("top_k override: got %d", cfg.Retrieval.TopK)
	}
}

func TestLoadRejectsInvalidOverride(t *testing.T) {
	t.Setenv("EDU_CHUNK_SIZE", "10")
	t.Setenv("EDU_CHUNK_OVERLAP", "10")
	if _, err := Load(nil); err == nil {
		t.Fatalf("invalid override: want error")
	}
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	policy := []byte("chunking:\n  size: 300\n  overlap: 30\nscoring:\n  short_answer_threshold: 0.6\n")
	if err := os.WriteFile(path, policy, 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	t.Setenv("EDU_POLICY_YAML", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chunking.Size != 300 || cfg.Chunking.Overlap != 30 {
		t.Fatalf("policy chunking: got size=%d overlap=%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Scoring.ShortAnswerThreshold != 0.6 {
		t.Fatalf("policy threshold: got %v", cfg.Scoring.ShortAnswerThreshold)
	}
	// Untouched keys keep their defaults.
	if cfg.Retrieval.TopK != Default().Retrieval.TopK {
		t.Fatalf("unrelated default changed: %d", cfg.Retrieval.TopK)
	}
}
