package ocr

import (
	"context"
	"strings"
)

// HasBurnedSubtitle counts non-empty lines regardless of confidence. Any
// recognizer problem is a negative answer.
func (c *implClassifier) HasBurnedSubtitle(ctx context.Context, framePath string) bool {
	rec, err := c.handle.Get()
	if err != nil {
		c.logger.Warn(ctx, "Burned subtitle check skipped: %v", err)
		return false
	}

	lines, err := rec.Recognize(ctx, framePath)
	if err != nil {
		c.logger.Warn(ctx, "Burned subtitle check failed: %v", err)
		return false
	}

	count := 0
	for _, l := range lines {
		if strings.TrimSpace(l.Text) != "" {
			count++
		}
	}
	c.logger.Debug(ctx, "Frame %s: %d text lines (need %d)", framePath, count, c.minLines)
	return count >= c.minLines
}
