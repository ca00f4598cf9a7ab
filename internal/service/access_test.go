package service

import (
	"context"
	"testing"

	"edupay/internal/apperr"
	"edupay/internal/model"
	"edupay/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAccessAvailabilityAll(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&model.Tute{Title: "Free Revision Tute", Price: decimal.Zero, Availability: model.AvailabilityAll}).Error)

	access := NewAccessService(repository.NewContentRepository(db), repository.NewOrderRepository(db))

	// No enrollment, no orders; the item is simply open.
	decision, err := access.CanAccess(context.Background(), model.User{ID: 1}, model.ItemTute, 1)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, RuleAvailabilityAll, decision.Reason)
}

func TestCanAccessPhysicalEnrollment(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&model.Video{Title: "Class Recording", Price: decimal.NewFromInt(750), Availability: model.AvailabilityPhysical}).Error)

	access := NewAccessService(repository.NewContentRepository(db), repository.NewOrderRepository(db))
	ctx := context.Background()

	physical := model.User{ID: 1, EnrollmentType: model.EnrollmentPhysical}
	decision, err := access.CanAccess(ctx, physical, model.ItemVideo, 1)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, RulePhysicalEnrollment, decision.Reason)

	online := model.User{ID: 2, EnrollmentType: model.EnrollmentOnline}
	decision, err = access.CanAccess(ctx, online, model.ItemVideo, 1)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonPaymentRequired, decision.Reason)
}

func TestCanAccessPaidOrder(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&model.Paper{Title: "2024 Model Paper", Price: decimal.NewFromInt(500), Availability: model.AvailabilityPaid}).Error)

	orderRepo := repository.NewOrderRepository(db)
	access := NewAccessService(repository.NewContentRepository(db), orderRepo)
	ctx := context.Background()
	user := model.User{ID: 1, EnrollmentType: model.EnrollmentOnline}

	decision, err := access.CanAccess(ctx, user, model.ItemPaper, 1)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	assert.Equal(t, ReasonPaymentRequired, decision.Reason)
	assert.Equal(t, "2024 Model Paper", decision.ItemTitle)
	assert.True(t, decision.Price.Equal(decimal.NewFromInt(500)))

	order := &model.Order{OrderID: "ord-1", UserID: 1, ItemModel: model.ItemPaper, ItemID: 1, Amount: decimal.NewFromInt(500), Currency: "LKR"}
	require.NoError(t, orderRepo.Create(ctx, order))

	// A pending order grants nothing.
	decision, err = access.CanAccess(ctx, user, model.ItemPaper, 1)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	_, err = orderRepo.MarkPaid(ctx, order.OrderID, "pay-1")
	require.NoError(t, err)

	decision, err = access.CanAccess(ctx, user, model.ItemPaper, 1)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, RulePaidOrder, decision.Reason)

	// Another user does not inherit the purchase.
	decision, err = access.CanAccess(ctx, model.User{ID: 2}, model.ItemPaper, 1)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestCanAccessUnknownItem(t *testing.T) {
	db := testDB(t)
	access := NewAccessService(repository.NewContentRepository(db), repository.NewOrderRepository(db))

	_, err := access.CanAccess(context.Background(), model.User{ID: 1}, model.ItemPaper, 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
