package classifier

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes predictions by exact input text.
type Cached struct {
	next  Classifier
	cache *lru.Cache[string, []Prediction]
}

// NewCached wraps next with an LRU cache holding up to size entries.
func NewCached(next Classifier, size int) (*Cached, error) {
	cache, err := lru.New[string, []Prediction](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Info() Info {
	return c.next.Info()
}

// Classify returns a copy of the cached predictions, or delegates and caches
// a successful result. Errors are never cached.
func (c *Cached) Classify(ctx context.Context, text string) ([]Prediction, error) {
	if preds, ok := c.cache.Get(text); ok {
		return slices.Clone(preds), nil
	}

	preds, err := c.next.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(text, slices.Clone(preds))
	return preds, nil
}
