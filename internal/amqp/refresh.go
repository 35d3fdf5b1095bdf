package amqp

import (
	"context"

	"spendview/internal/log"
)

// Refresher is satisfied by the dashboard loader.
type Refresher interface {
	NeedUpdate()
	Load(ctx context.Context) error
}

// RefreshHandler marks r stale and reloads it for every notification. A
// failed reload is recorded by the loader itself, so the message is still
// acknowledged.
func RefreshHandler(r Refresher) Handler {
	return func(ctx context.Context, msg *ExpensesChangedMessage) error {
		r.NeedUpdate()
		if err := r.Load(ctx); err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentAMQP).WarnContext(ctx,
				"Reload after change notification failed",
				log.FieldError, err,
				log.FieldOperation, log.OpRefresh,
				"source", msg.Source)
		}
		return nil
	}
}
