package repository

import (
	"context"
	"sync"
	"testing"

	"edupay/internal/apperr"
	"edupay/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(userID uint, itemModel model.ItemModel, itemID uint) *model.Order {
	return &model.Order{
		OrderID:   uuid.NewString(),
		UserID:    userID,
		ItemModel: itemModel,
		ItemID:    itemID,
		Amount:    decimal.NewFromInt(500),
		Currency:  "LKR",
	}
}

func TestCreateAllowsPendingRetries(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	first := newOrder(1, model.ItemPaper, 7)
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, model.OrderPending, first.Status)

	// A failed payment may be retried with a fresh order.
	second := newOrder(1, model.ItemPaper, 7)
	require.NoError(t, repo.Create(ctx, second))
}

func TestCreateRejectsDoublePurchase(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	paid := newOrder(1, model.ItemVideo, 3)
	require.NoError(t, repo.Create(ctx, paid))
	_, err := repo.MarkPaid(ctx, paid.OrderID, "pay-1")
	require.NoError(t, err)

	err = repo.Create(ctx, newOrder(1, model.ItemVideo, 3))
	assert.ErrorIs(t, err, apperr.ErrDuplicateActiveOrder)

	// Same item, different user is fine.
	require.NoError(t, repo.Create(ctx, newOrder(2, model.ItemVideo, 3)))
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	order := newOrder(1, model.ItemTute, 5)
	require.NoError(t, repo.Create(ctx, order))

	paid, err := repo.MarkPaid(ctx, order.OrderID, "pay-1")
	require.NoError(t, err)
	require.Equal(t, model.OrderPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// Repeated confirmations, same or different reference, change nothing.
	for _, ref := range []string{"pay-1", "pay-2", "pay-3"} {
		again, err := repo.MarkPaid(ctx, order.OrderID, ref)
		require.NoError(t, err)
		assert.Equal(t, model.OrderPaid, again.Status)
		assert.Equal(t, "pay-1", again.GatewayRef)
		assert.Equal(t, paid.PaidAt.Unix(), again.PaidAt.Unix())
	}
}

func TestMarkFailedIsIdempotent(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	order := newOrder(1, model.ItemTute, 5)
	require.NoError(t, repo.Create(ctx, order))

	failed, err := repo.MarkFailed(ctx, order.OrderID, "card declined")
	require.NoError(t, err)
	require.Equal(t, model.OrderFailed, failed.Status)

	again, err := repo.MarkFailed(ctx, order.OrderID, "another reason")
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, again.Status)
	assert.Equal(t, "card declined", again.FailReason)
}

func TestTransitionsAreForwardOnly(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	t.Run("paid order rejects failure", func(t *testing.T) {
		order := newOrder(1, model.ItemVideo, 1)
		require.NoError(t, repo.Create(ctx, order))
		_, err := repo.MarkPaid(ctx, order.OrderID, "pay-1")
		require.NoError(t, err)

		_, err = repo.MarkFailed(ctx, order.OrderID, "late failure")
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("failed order rejects payment", func(t *testing.T) {
		order := newOrder(1, model.ItemVideo, 2)
		require.NoError(t, repo.Create(ctx, order))
		_, err := repo.MarkFailed(ctx, order.OrderID, "declined")
		require.NoError(t, err)

		_, err = repo.MarkPaid(ctx, order.OrderID, "pay-1")
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("canceled order rejects payment", func(t *testing.T) {
		order := newOrder(1, model.ItemVideo, 3)
		require.NoError(t, repo.Create(ctx, order))
		_, err := repo.MarkCanceled(ctx, order.OrderID)
		require.NoError(t, err)

		_, err = repo.MarkPaid(ctx, order.OrderID, "pay-1")
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})
}

// Concurrent webhook and manual-verify triggers must converge on exactly
// one terminal state, never a corrupted record.
func TestConcurrentTransitionsConverge(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	order := newOrder(1, model.ItemCoursePackage, 9)
	require.NoError(t, repo.Create(ctx, order))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.MarkPaid(ctx, order.OrderID, "pay-1")
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.MarkFailed(ctx, order.OrderID, "declined")
		}()
	}
	wg.Wait()

	final, err := repo.FindByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	require.True(t, final.Status.Terminal())

	switch final.Status {
	case model.OrderPaid:
		assert.NotNil(t, final.PaidAt)
		assert.Equal(t, "pay-1", final.GatewayRef)
		assert.Empty(t, final.FailReason)
	case model.OrderFailed:
		assert.Nil(t, final.PaidAt)
		assert.Equal(t, "declined", final.FailReason)
	default:
		t.Fatalf("unexpected final status %s", final.Status)
	}
}

func TestFindByOrderIDNotFound(t *testing.T) {
	repo := NewOrderRepository(testDB(t))

	_, err := repo.FindByOrderID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFindForUserScopesToOwner(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	order := newOrder(1, model.ItemPaper, 4)
	require.NoError(t, repo.Create(ctx, order))

	_, err := repo.FindForUser(ctx, 2, order.OrderID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	found, err := repo.FindForUser(ctx, 1, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, found.OrderID)
}
