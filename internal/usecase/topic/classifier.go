// Package topic decides whether a retrieval topic is specific enough for similarity search.
package topic

import (
	"strings"
	"unicode/utf8"

	"github.com/futig/studyroom-rag/internal/entity"
)

// DefaultMinSpecificLength is the shortest trimmed topic, in characters, treated as specific
const DefaultMinSpecificLength = 7

// KeywordClassifier labels a topic broad when it is too short or mentions a review-style keyword
type KeywordClassifier struct {
	keywords          []string
	minSpecificLength int
}

func NewKeywordClassifier(keywords []string, minSpecificLength int) *KeywordClassifier {
	if minSpecificLength <= 0 {
		minSpecificLength = DefaultMinSpecificLength
	}

	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			normalized = append(normalized, k)
		}
	}

	return &KeywordClassifier{
		keywords:          normalized,
		minSpecificLength: minSpecificLength,
	}
}

func (c *KeywordClassifier) Classify(topic string) entity.TopicScope {
	trimmed := strings.TrimSpace(topic)
	if utf8.RuneCountInString(trimmed) < c.minSpecificLength {
		return entity.TopicScopeBroad
	}

	lower := strings.ToLower(trimmed)
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			return entity.TopicScopeBroad
		}
	}

	return entity.TopicScopeSpecific
}
