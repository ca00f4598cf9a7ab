package service

import (
	"context"
	"testing"
	"time"

	"edupay/internal/apperr"
	"edupay/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoller(maxAttempts int) *StatusPoller {
	return &StatusPoller{
		Interval:    time.Millisecond,
		MaxAttempts: maxAttempts,
	}
}

// scriptedFetch replays a status sequence, repeating the final entry.
func scriptedFetch(statuses ...model.OrderStatus) StatusFunc {
	i := 0
	return func(ctx context.Context) (model.OrderStatus, error) {
		s := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		return s, nil
	}
}

func TestPollStopsAtTerminalStatus(t *testing.T) {
	poller := testPoller(20)

	var seen []model.OrderStatus
	status, err := poller.Poll(context.Background(),
		scriptedFetch(model.OrderPending, model.OrderPending, model.OrderPaid),
		func(s model.OrderStatus) { seen = append(seen, s) })

	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, status)
	assert.Equal(t, []model.OrderStatus{model.OrderPending, model.OrderPending, model.OrderPaid}, seen)
}

func TestPollImmediateTerminal(t *testing.T) {
	poller := testPoller(1)

	status, err := poller.Poll(context.Background(), scriptedFetch(model.OrderFailed), nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, status)
}

func TestPollExhaustsAttemptBudget(t *testing.T) {
	poller := testPoller(5)

	calls := 0
	status, err := poller.Poll(context.Background(), func(ctx context.Context) (model.OrderStatus, error) {
		calls++
		return model.OrderPending, nil
	}, nil)

	assert.ErrorIs(t, err, apperr.ErrPollTimeout)
	assert.Equal(t, model.OrderPending, status)
	assert.Equal(t, 5, calls)
}

func TestPollHonorsCancellation(t *testing.T) {
	poller := &StatusPoller{Interval: time.Hour, MaxAttempts: 20}
	ctx, cancel := context.WithCancel(context.Background())

	fetch := func(ctx context.Context) (model.OrderStatus, error) {
		cancel()
		return model.OrderPending, nil
	}

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, err = poller.Poll(ctx, fetch, nil)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller ignored cancellation")
	}
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollPropagatesFetchError(t *testing.T) {
	poller := testPoller(20)

	fetch := func(ctx context.Context) (model.OrderStatus, error) {
		return "", apperr.ErrGatewayUnavailable
	}
	_, err := poller.Poll(context.Background(), fetch, nil)
	assert.ErrorIs(t, err, apperr.ErrGatewayUnavailable)
}
