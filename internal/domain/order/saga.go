package order

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// sagaStep is one unit of work in the order-creation flow. undo reverses a
// successful run and may be nil when the step leaves nothing behind.
type sagaStep struct {
	name string
	run  func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// runSaga executes steps in order. On failure it compensates every previously
// successful step in reverse (LIFO) and returns the original error.
// Compensation failures are logged but do not mask the step error.
func runSaga(ctx context.Context, steps []sagaStep) error {
	lg := zctx.From(ctx)

	var done []sagaStep
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			lg.Warn("order step failed, compensating",
				zap.String("step", step.name),
				zap.Error(err),
			)
			for i := len(done) - 1; i >= 0; i-- {
				prev := done[i]
				if prev.undo == nil {
					continue
				}
				if undoErr := prev.undo(ctx); undoErr != nil {
					lg.Error("compensation failed",
						zap.String("step", prev.name),
						zap.Error(undoErr),
					)
				}
			}
			return err
		}
		done = append(done, step)
	}
	return nil
}
