package client

import (
	"context"
	"fmt"
	"net/url"

	"edupay/internal/apperr"
	"edupay/internal/config"
	"edupay/internal/model"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// CardCharger is implemented by providers that support charging a card
// nonce directly instead of redirecting to a hosted checkout page.
type CardCharger interface {
	ChargeCard(ctx context.Context, order *model.Order, nonce string) (gatewayRef string, outcome Outcome, err error)
}

type braintreeClientImpl struct {
	gateway     *braintree.Braintree
	cardFormURL string
}

// NewBraintreeClient initializes the Braintree SDK gateway.
func NewBraintreeClient(cfg *config.Braintree) GatewayClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway:     gateway,
		cardFormURL: cfg.CardFormURL,
	}
}

// CreateSession issues a client token and points the buyer at the card
// form; the gateway order id is only known once the charge goes through.
func (c *braintreeClientImpl) CreateSession(ctx context.Context, order *model.Order, itemTitle string) (*CheckoutSession, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate client token: %w: %v", apperr.ErrGatewayUnavailable, err)
	}

	redirect := fmt.Sprintf("%s?order=%s&client_token=%s",
		c.cardFormURL, url.QueryEscape(order.OrderID), url.QueryEscape(token))

	return &CheckoutSession{RedirectURL: redirect}, nil
}

func (c *braintreeClientImpl) ChargeCard(ctx context.Context, order *model.Order, nonce string) (string, Outcome, error) {
	// Braintree expects NewDecimal(unscaled, scale); two decimal places
	// for currency amounts.
	cents := order.Amount.Mul(decimal.NewFromInt(100)).IntPart()
	btAmount := braintree.NewDecimal(cents, 2)

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		OrderId:            order.OrderID,
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return "", OutcomeFailed, fmt.Errorf("create transaction: %w: %v", apperr.ErrGatewayUnavailable, err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return tx.Id, OutcomeFailed, nil
	}

	return tx.Id, OutcomePaid, nil
}

func (c *braintreeClientImpl) VerifyCallback(values url.Values) (*CallbackResult, error) {
	// Parse authenticates bt_signature against the payload; a forged or
	// tampered notification never gets past this point.
	notification, err := c.gateway.WebhookNotification().Parse(
		values.Get("bt_signature"),
		values.Get("bt_payload"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse braintree webhook: %w", apperr.ErrInvalidSignature)
	}

	txn := notification.Subject.Transaction
	if txn == nil || txn.OrderId == "" {
		return nil, fmt.Errorf("webhook carries no transaction reference: %w", apperr.ErrInvalidSignature)
	}

	var outcome Outcome
	switch notification.Kind {
	case braintree.TransactionSettledWebhook:
		outcome = OutcomePaid
	case braintree.TransactionSettlementDeclinedWebhook:
		outcome = OutcomeFailed
	default:
		outcome = OutcomePending
	}

	var amt decimal.Decimal
	if txn.Amount != nil {
		amt = decimal.New(txn.Amount.Unscaled, -int32(txn.Amount.Scale))
	}

	return &CallbackResult{
		EventID:        txn.Id + ":" + string(notification.Kind),
		GatewayOrderID: txn.Id,
		LocalOrderID:   txn.OrderId,
		Outcome:        outcome,
		Amount:         amt,
	}, nil
}

func (c *braintreeClientImpl) FetchStatus(ctx context.Context, order *model.Order) (Outcome, string, error) {
	if order.GatewayRef == "" {
		// Nothing was ever charged for this order.
		return OutcomePending, "", nil
	}

	tx, err := c.gateway.Transaction().Find(ctx, order.GatewayRef)
	if err != nil {
		return OutcomePending, "", fmt.Errorf("find transaction: %w: %v", apperr.ErrGatewayUnavailable, err)
	}

	switch tx.Status {
	case braintree.TransactionStatusAuthorized,
		braintree.TransactionStatusSubmittedForSettlement,
		braintree.TransactionStatusSettling,
		braintree.TransactionStatusSettled:
		return OutcomePaid, tx.Id, nil
	case braintree.TransactionStatusProcessorDeclined,
		braintree.TransactionStatusGatewayRejected,
		braintree.TransactionStatusFailed,
		braintree.TransactionStatusVoided:
		return OutcomeFailed, tx.Id, nil
	default:
		return OutcomePending, tx.Id, nil
	}
}
