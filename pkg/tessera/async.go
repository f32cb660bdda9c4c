package tessera

import (
	"context"
	"image"
)

// Outcome is the single value delivered by PerformOCRAsync.
type Outcome struct {
	Result *Result
	Err    error
}

// PerformOCRAsync recognizes img in the background with the session's
// config. The returned channel yields exactly one Outcome and is then closed.
// ctx can cancel the call while it waits for the engine; a pass that has
// started runs to completion.
func (s *Session) PerformOCRAsync(ctx context.Context, img image.Image) <-chan Outcome {
	return s.PerformOCRAsyncWithConfig(ctx, img, s.Config())
}

// PerformOCRAsyncWithConfig is PerformOCRAsync with an explicit config.
func (s *Session) PerformOCRAsyncWithConfig(ctx context.Context, img image.Image, cfg Config) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := s.perform(ctx, img, cfg, false)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}
