package engineobs

import (
	"context"
	"time"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/trace"
	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Bootstrap(ctx context.Context) error {
	op := logger.StartOperation(ctx, "engine.Bootstrap")
	if err := oe.engine.Bootstrap(op.GetContext()); err != nil {
		op.EndWithError(err)
		return err
	}
	op.End("cash", oe.engine.Cash().StringFixed(2))
	return nil
}

func (oe *observableEngine) Step(ctx context.Context) (*types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	logger.DebugSkip(ctx, 1, "Starting trading cycle")

	result, err := oe.engine.Step(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trading cycle failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return result, err
	}

	logger.DebugSkip(ctx, 1, "Trading cycle completed",
		"symbol", result.Symbol,
		"price", result.Price,
		"change_pct", result.ChangePct,
		"action", result.Action,
		"reason", result.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

func (oe *observableEngine) Cash() decimal.Decimal {
	return oe.engine.Cash()
}
