package notify

import (
	"context"
	"fmt"

	"eventify/internal/logger"
)

// Effect is one post-commit side effect: QR issuance, an email, a
// notification, a Kafka publish.
type Effect struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs side effects after the state-changing transaction has
// committed. Each effect fails on its own: the error is logged and
// swallowed so delivery problems can never undo or block a committed
// registration or settlement.
type Dispatcher struct {
	logger *logger.Logger
}

func NewDispatcher(log *logger.Logger) *Dispatcher {
	return &Dispatcher{logger: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, effects ...Effect) {
	for _, effect := range effects {
		if err := effect.Run(ctx); err != nil {
			d.logger.Error("SIDE_EFFECT", fmt.Sprintf("%s failed: %v", effect.Name, err))
		}
	}
}
