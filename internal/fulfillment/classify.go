package fulfillment

import "strings"

// Classifier guesses from post-submit content whether the target accepted
// the request. A phrase match is a heuristic, not a confirmation.
type Classifier struct {
	phrases []string
}

func NewClassifier(phrases []string) *Classifier {
	lowered := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if phrase != "" {
			lowered = append(lowered, strings.ToLower(phrase))
		}
	}
	return &Classifier{phrases: lowered}
}

func (c *Classifier) Classify(content string) bool {
	return containsAny(strings.ToLower(content), c.phrases)
}
