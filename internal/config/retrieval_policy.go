package config

import (
	"fmt"
	"os"

	"github.com/futig/studyroom-rag/internal/entity"
	"gopkg.in/yaml.v3"
)

// RetrievalPolicy tunes topic classification and the degrading similarity search
type RetrievalPolicy struct {
	Ladder            []entity.LadderStep `yaml:"ladder"`
	BroadKeywords     []string            `yaml:"broad_keywords"`
	MinSpecificLength int                 `yaml:"min_specific_length"`
	Delimiter         string              `yaml:"delimiter"`
}

var defaultBroadKeywords = []string{
	"전체", "모든", "종합", "기말", "중간", "총정리", "전범위", "시험", "고사", "복습", "전반", "범위",
}

// DefaultRetrievalPolicy is used when no policy file exists
func DefaultRetrievalPolicy() RetrievalPolicy {
	keywords := make([]string, len(defaultBroadKeywords))
	copy(keywords, defaultBroadKeywords)

	return RetrievalPolicy{
		Ladder:            entity.DefaultLadder(),
		BroadKeywords:     keywords,
		MinSpecificLength: 7,
		Delimiter:         "\n\n",
	}
}

func loadRetrievalPolicy(path string) (*RetrievalPolicy, error) {
	policy := DefaultRetrievalPolicy()

	if path == "" {
		return &policy, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: retrieval policy file not found at %s, using default policy\n", path)
		return &policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read retrieval policy file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("retrieval policy file is empty: %s", path)
	}

	var fromFile RetrievalPolicy
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse retrieval policy YAML: %w", err)
	}

	// Sections missing from the file keep their defaults
	if len(fromFile.Ladder) > 0 {
		policy.Ladder = fromFile.Ladder
	}
	if len(fromFile.BroadKeywords) > 0 {
		policy.BroadKeywords = fromFile.BroadKeywords
	}
	if fromFile.MinSpecificLength > 0 {
		policy.MinSpecificLength = fromFile.MinSpecificLength
	}
	if fromFile.Delimiter != "" {
		policy.Delimiter = fromFile.Delimiter
	}

	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retrieval policy %s: %w", path, err)
	}

	fmt.Printf("Loaded retrieval policy with %d ladder steps from %s\n", len(policy.Ladder), path)
	return &policy, nil
}

// Validate checks that ladder thresholds strictly descend within (0, 1] and limits are positive
func (p RetrievalPolicy) Validate() error {
	if len(p.Ladder) == 0 {
		return fmt.Errorf("%w: ladder is empty", entity.ErrConfiguration)
	}

	for i, step := range p.Ladder {
		if step.Threshold <= 0 || step.Threshold > 1 {
			return fmt.Errorf("%w: ladder step %d threshold %.2f out of range", entity.ErrConfiguration, i, step.Threshold)
		}
		if step.Limit < 1 {
			return fmt.Errorf("%w: ladder step %d limit must be positive", entity.ErrConfiguration, i)
		}
		if i > 0 && step.Threshold >= p.Ladder[i-1].Threshold {
			return fmt.Errorf("%w: ladder thresholds must strictly descend", entity.ErrConfiguration)
		}
	}

	return nil
}
