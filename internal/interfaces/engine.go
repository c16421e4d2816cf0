package interfaces

import (
	"context"

	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

type Engine interface {
	Bootstrap(ctx context.Context) error
	Step(ctx context.Context) (*types.StepResult, error)
	Cash() decimal.Decimal
}
