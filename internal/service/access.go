package service

import (
	"context"

	"edupay/internal/model"
	"edupay/internal/repository"

	"github.com/shopspring/decimal"
)

// Rule names, in evaluation order. Precedence is fixed: an item open to
// everyone never touches the order ledger, and a physical student's free
// access wins over any purchase record.
const (
	RuleAvailabilityAll    = "availability_all"
	RulePhysicalEnrollment = "physical_enrollment"
	RulePaidOrder          = "paid_order"
	ReasonPaymentRequired  = "payment_required"
)

// Decision is the outcome of an access check. On denial Price and
// ItemTitle are populated so the caller can render a paywall.
type Decision struct {
	Allowed   bool
	Reason    string
	Price     decimal.Decimal
	ItemTitle string
	ItemModel model.ItemModel
	ItemID    uint
}

// AccessService decides whether a user may consume a content item. Pure
// read; it never mutates state.
type AccessService interface {
	CanAccess(ctx context.Context, user model.User, itemModel model.ItemModel, itemID uint) (*Decision, error)
}

type accessServiceImpl struct {
	contentRepo repository.ContentRepository
	orderRepo   repository.OrderRepository
	rules       []accessRule
}

type accessRule struct {
	name   string
	grants func(ctx context.Context, user model.User, item *model.ContentItem) (bool, error)
}

func NewAccessService(contentRepo repository.ContentRepository, orderRepo repository.OrderRepository) AccessService {
	s := &accessServiceImpl{
		contentRepo: contentRepo,
		orderRepo:   orderRepo,
	}
	s.rules = []accessRule{
		{
			name: RuleAvailabilityAll,
			grants: func(ctx context.Context, user model.User, item *model.ContentItem) (bool, error) {
				return item.Availability == model.AvailabilityAll, nil
			},
		},
		{
			name: RulePhysicalEnrollment,
			grants: func(ctx context.Context, user model.User, item *model.ContentItem) (bool, error) {
				return item.Availability == model.AvailabilityPhysical &&
					user.EnrollmentType == model.EnrollmentPhysical, nil
			},
		},
		{
			name: RulePaidOrder,
			grants: func(ctx context.Context, user model.User, item *model.ContentItem) (bool, error) {
				return s.orderRepo.HasActivePaid(ctx, user.ID, item.Model, item.ID)
			},
		},
	}
	return s
}

func (s *accessServiceImpl) CanAccess(ctx context.Context, user model.User, itemModel model.ItemModel, itemID uint) (*Decision, error) {
	item, err := s.contentRepo.GetItem(ctx, itemModel, itemID)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		ItemModel: itemModel,
		ItemID:    itemID,
		ItemTitle: item.Title,
		Price:     item.Price,
	}

	for _, rule := range s.rules {
		ok, err := rule.grants(ctx, user, item)
		if err != nil {
			return nil, err
		}
		if ok {
			decision.Allowed = true
			decision.Reason = rule.name
			return decision, nil
		}
	}

	decision.Reason = ReasonPaymentRequired
	return decision, nil
}
