package game

import (
	"sort"

	"quizboard-service/internal/domain"
)

// CompletionTracker is the set of questions already played in a session.
// It only grows; there is no way to unmark a key.
type CompletionTracker struct {
	keys map[domain.QuestionKey]struct{}
}

func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{keys: make(map[domain.QuestionKey]struct{})}
}

func (c *CompletionTracker) IsCompleted(key domain.QuestionKey) bool {
	_, ok := c.keys[key]
	return ok
}

// MarkCompleted adds key to the set. Marking twice is a no-op.
func (c *CompletionTracker) MarkCompleted(key domain.QuestionKey) {
	c.keys[key] = struct{}{}
}

func (c *CompletionTracker) Len() int {
	return len(c.keys)
}

// Keys returns the completed keys in board order.
func (c *CompletionTracker) Keys() []domain.QuestionKey {
	keys := make([]domain.QuestionKey, 0, len(c.keys))
	for k := range c.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].Question < keys[j].Question
	})
	return keys
}
