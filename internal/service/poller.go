package service

import (
	"context"
	"fmt"
	"time"

	"edupay/internal/apperr"
	"edupay/internal/model"
)

// StatusFunc fetches the current status of one order.
type StatusFunc func(ctx context.Context) (model.OrderStatus, error)

// StatusPoller re-checks an order's status on a fixed interval until it
// reaches a terminal state or the attempt budget runs out. Cancel the
// context to tear the loop down; the ticker is released either way.
// Exhausting the budget returns ErrPollTimeout so callers can surface a
// manual-verify affordance instead of polling forever.
type StatusPoller struct {
	Interval    time.Duration
	MaxAttempts int
}

func NewStatusPoller() *StatusPoller {
	return &StatusPoller{
		Interval:    3 * time.Second,
		MaxAttempts: 20,
	}
}

// Poll runs the loop. The first fetch happens immediately; observe, when
// non-nil, sees every fetched status in order.
func (p *StatusPoller) Poll(ctx context.Context, fetch StatusFunc, observe func(model.OrderStatus)) (model.OrderStatus, error) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	var last model.OrderStatus
	for attempt := 1; ; attempt++ {
		status, err := fetch(ctx)
		if err != nil {
			return last, err
		}
		last = status
		if observe != nil {
			observe(status)
		}

		if status.Terminal() {
			return status, nil
		}
		if attempt >= p.MaxAttempts {
			return status, fmt.Errorf("after %d attempts: %w", attempt, apperr.ErrPollTimeout)
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}
