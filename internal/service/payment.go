package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"edupay/internal/apperr"
	"edupay/internal/client"
	"edupay/internal/config"
	"edupay/internal/dto"
	"edupay/internal/model"
	"edupay/internal/repository"

	"github.com/google/uuid"
)

// PaymentService coordinates the three verification triggers (webhook,
// client polling, manual sandbox verify) plus direct card charges. Every
// trigger converges on the repository's guarded MarkPaid/MarkFailed, so
// any interleaving of them yields the same final order state.
type PaymentService interface {
	CreateCheckout(ctx context.Context, user model.User, itemModel model.ItemModel, itemID uint) (*dto.CreateCheckoutResponse, error)
	GetStatus(ctx context.Context, userID uint, orderID string) (*dto.OrderStatusResponse, error)
	HandleWebhook(ctx context.Context, values url.Values) error
	VerifySandbox(ctx context.Context, userID uint, orderID string) (*dto.OrderStatusResponse, error)
	ChargeCard(ctx context.Context, userID uint, orderID, nonce string) (*dto.OrderStatusResponse, error)
}

type paymentServiceImpl struct {
	cfg              *config.Payment
	gateway          client.GatewayClient
	access           AccessService
	orderRepo        repository.OrderRepository
	contentRepo      repository.ContentRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewPaymentService(
	cfg *config.Payment,
	gateway client.GatewayClient,
	access AccessService,
	orderRepo repository.OrderRepository,
	contentRepo repository.ContentRepository,
	webhookEventRepo repository.WebhookEventRepository,
) PaymentService {
	return &paymentServiceImpl{
		cfg:              cfg,
		gateway:          gateway,
		access:           access,
		orderRepo:        orderRepo,
		contentRepo:      contentRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

func (s *paymentServiceImpl) CreateCheckout(ctx context.Context, user model.User, itemModel model.ItemModel, itemID uint) (*dto.CreateCheckoutResponse, error) {
	decision, err := s.access.CanAccess(ctx, user, itemModel, itemID)
	if err != nil {
		return nil, err
	}

	if decision.Allowed {
		// Free by policy or already owned; checkout would double-charge.
		return &dto.CreateCheckoutResponse{
			AccessGranted: true,
			AlreadyOwned:  decision.Reason == RulePaidOrder,
			RedirectPath:  itemModel.RedirectPath(itemID),
		}, nil
	}

	order := &model.Order{
		OrderID:   uuid.NewString(),
		UserID:    user.ID,
		ItemModel: itemModel,
		ItemID:    itemID,
		Amount:    decision.Price,
		Currency:  s.cfg.Currency,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, apperr.ErrDuplicateActiveOrder) {
			// Lost a race against a concurrent purchase of the same item.
			return &dto.CreateCheckoutResponse{
				AccessGranted: true,
				AlreadyOwned:  true,
				RedirectPath:  itemModel.RedirectPath(itemID),
			}, nil
		}
		return nil, err
	}

	session, err := s.gateway.CreateSession(ctx, order, decision.ItemTitle)
	if err != nil {
		// The order stays PENDING; the user can retry checkout and the
		// gateway will be asked again for the same order id.
		return nil, err
	}

	if session.GatewayOrderID != "" {
		if err := s.orderRepo.SetGatewayRef(ctx, order.OrderID, session.GatewayOrderID); err != nil {
			return nil, err
		}
	}

	return &dto.CreateCheckoutResponse{
		OrderID:     order.OrderID,
		RedirectURL: session.RedirectURL,
	}, nil
}

// GetStatus backs the client polling loop. It always reads the stored
// order; nothing is cached between polls.
func (s *paymentServiceImpl) GetStatus(ctx context.Context, userID uint, orderID string) (*dto.OrderStatusResponse, error) {
	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.statusResponse(ctx, order), nil
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, values url.Values) error {
	result, err := s.gateway.VerifyCallback(values)
	if err != nil {
		// Fail closed: an unverified payload never reaches the store.
		return err
	}

	processed, err := s.webhookEventRepo.Exists(ctx, result.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	switch result.Outcome {
	case client.OutcomePaid:
		if _, err := s.orderRepo.MarkPaid(ctx, result.LocalOrderID, result.GatewayOrderID); err != nil {
			return err
		}
	case client.OutcomeFailed:
		reason := result.StatusMessage
		if reason == "" {
			reason = "gateway reported failure"
		}
		if _, err := s.orderRepo.MarkFailed(ctx, result.LocalOrderID, reason); err != nil {
			return err
		}
	default:
		// Informational notification; no transition to apply.
		return nil
	}

	return s.webhookEventRepo.MarkProcessed(ctx, result.EventID, string(result.Outcome))
}

// VerifySandbox re-checks the gateway's authoritative status and applies
// the answer through the same guarded transitions the webhook uses. It
// cannot unlock an order the gateway does not consider paid.
func (s *paymentServiceImpl) VerifySandbox(ctx context.Context, userID uint, orderID string) (*dto.OrderStatusResponse, error) {
	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return s.statusResponse(ctx, order), nil
	}

	outcome, gatewayRef, err := s.gateway.FetchStatus(ctx, order)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case client.OutcomePaid:
		if order, err = s.orderRepo.MarkPaid(ctx, order.OrderID, gatewayRef); err != nil {
			return nil, err
		}
	case client.OutcomeFailed:
		if order, err = s.orderRepo.MarkFailed(ctx, order.OrderID, "gateway reported failure on manual verify"); err != nil {
			return nil, err
		}
	default:
		// Still pending at the gateway; leave the order untouched.
	}

	return s.statusResponse(ctx, order), nil
}

func (s *paymentServiceImpl) ChargeCard(ctx context.Context, userID uint, orderID, nonce string) (*dto.OrderStatusResponse, error) {
	charger, ok := s.gateway.(client.CardCharger)
	if !ok {
		return nil, fmt.Errorf("card charge endpoint with non-card provider: %w", apperr.ErrNotFound)
	}

	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		// Retried submit of an already settled checkout.
		return s.statusResponse(ctx, order), nil
	}

	gatewayRef, outcome, err := charger.ChargeCard(ctx, order, nonce)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case client.OutcomePaid:
		if order, err = s.orderRepo.MarkPaid(ctx, order.OrderID, gatewayRef); err != nil {
			return nil, err
		}
	default:
		if order, err = s.orderRepo.MarkFailed(ctx, order.OrderID, "card declined"); err != nil {
			return nil, err
		}
	}

	return s.statusResponse(ctx, order), nil
}

func (s *paymentServiceImpl) statusResponse(ctx context.Context, order *model.Order) *dto.OrderStatusResponse {
	title := ""
	if item, err := s.contentRepo.GetItem(ctx, order.ItemModel, order.ItemID); err == nil {
		title = item.Title
	}

	resp := &dto.OrderStatusResponse{
		OrderID:   order.OrderID,
		Status:    string(order.Status),
		ItemModel: string(order.ItemModel),
		ItemID:    order.ItemID,
		ItemTitle: title,
		Amount:    order.Amount,
		Currency:  order.Currency,
	}
	if order.Status == model.OrderPaid {
		resp.RedirectPath = order.ItemModel.RedirectPath(order.ItemID)
	}
	return resp
}
