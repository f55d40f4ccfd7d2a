package sentiment

import (
	"context"
	"fmt"
)

// Chain tries its backends in order. When the active backend fails, the chain
// degrades to the next one permanently for the rest of the run; a failed
// backend is never retried mid-run. Name reports the currently active backend
// so the final report can show what actually produced the scores.
type Chain struct {
	scorers []Scorer
	active  int
}

func NewChain(scorers ...Scorer) *Chain {
	return &Chain{scorers: scorers}
}

func (c *Chain) Name() string {
	if c.active >= len(c.scorers) {
		return "none"
	}
	return c.scorers[c.active].Name()
}

// Degraded reports whether the chain has moved past its first backend.
func (c *Chain) Degraded() bool { return c.active > 0 }

func (c *Chain) ScoreBatch(ctx context.Context, texts []string) ([]Score, error) {
	var lastErr error
	for c.active < len(c.scorers) {
		scores, err := c.scorers[c.active].ScoreBatch(ctx, texts)
		if err == nil {
			return scores, nil
		}
		lastErr = err
		c.active++
	}
	return nil, fmt.Errorf("all sentiment backends failed: %w", lastErr)
}
