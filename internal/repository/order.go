package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edupay/internal/apperr"
	"edupay/internal/model"

	"gorm.io/gorm"
)

// OrderRepository is the only writer of order state. Transitions are
// conditional updates that succeed only while the row is still PENDING, so
// racing webhook / poll / manual-verify paths cannot double-apply.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	FindForUser(ctx context.Context, userID uint, orderID string) (*model.Order, error)
	HasActivePaid(ctx context.Context, userID uint, itemModel model.ItemModel, itemID uint) (bool, error)
	MarkPaid(ctx context.Context, orderID, gatewayRef string) (*model.Order, error)
	MarkFailed(ctx context.Context, orderID, reason string) (*model.Order, error)
	MarkCanceled(ctx context.Context, orderID string) (*model.Order, error)
	SetGatewayRef(ctx context.Context, orderID, gatewayRef string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create inserts a new PENDING order. It refuses with
// ErrDuplicateActiveOrder when a PAID order already exists for the same
// (user, item) tuple; multiple PENDING orders are fine, the user may retry
// a failed payment.
func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Order{}).
			Where("user_id = ? AND item_model = ? AND item_id = ? AND status = ?",
				order.UserID, order.ItemModel, order.ItemID, model.OrderPaid).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("user %d already owns %s/%d: %w",
				order.UserID, order.ItemModel, order.ItemID, apperr.ErrDuplicateActiveOrder)
		}

		order.Status = model.OrderPending
		return tx.Create(order).Error
	})
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindForUser(ctx context.Context, userID uint, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) HasActivePaid(ctx context.Context, userID uint, itemModel model.ItemModel, itemID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ? AND item_model = ? AND item_id = ? AND status = ?",
			userID, itemModel, itemID, model.OrderPaid).
		Count(&count).Error

	return count > 0, err
}

// MarkPaid transitions PENDING -> PAID. Idempotent: on an already-PAID
// order it returns the stored order unchanged, whatever gateway reference
// the caller brought. FAILED/CANCELED orders reject the transition.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, orderID, gatewayRef string) (*model.Order, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderPending).
		Updates(map[string]interface{}{
			"status":      model.OrderPaid,
			"gateway_ref": gatewayRef,
			"paid_at":     &now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	order, err := r.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 && order.Status != model.OrderPaid {
		return nil, fmt.Errorf("mark paid on %s order %s: %w", order.Status, orderID, apperr.ErrInvalidTransition)
	}

	return order, nil
}

// MarkFailed transitions PENDING -> FAILED; no-op if already FAILED.
func (r *orderRepoImpl) MarkFailed(ctx context.Context, orderID, reason string) (*model.Order, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderPending).
		Updates(map[string]interface{}{
			"status":      model.OrderFailed,
			"fail_reason": reason,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	order, err := r.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 && order.Status != model.OrderFailed {
		return nil, fmt.Errorf("mark failed on %s order %s: %w", order.Status, orderID, apperr.ErrInvalidTransition)
	}

	return order, nil
}

// MarkCanceled is support tooling for checkouts abandoned before any
// gateway interaction; normal server flows never call it.
func (r *orderRepoImpl) MarkCanceled(ctx context.Context, orderID string) (*model.Order, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderPending).
		Updates(map[string]interface{}{
			"status":     model.OrderCanceled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	order, err := r.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 && order.Status != model.OrderCanceled {
		return nil, fmt.Errorf("mark canceled on %s order %s: %w", order.Status, orderID, apperr.ErrInvalidTransition)
	}

	return order, nil
}

// SetGatewayRef records the gateway session/transaction id on a still
// pending order so manual verification can correlate later.
func (r *orderRepoImpl) SetGatewayRef(ctx context.Context, orderID, gatewayRef string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderPending).
		Updates(map[string]interface{}{
			"gateway_ref": gatewayRef,
			"updated_at":  time.Now(),
		}).Error
}
