package dto

import "github.com/shopspring/decimal"

type CreateCheckoutRequest struct {
	ItemModel string `json:"itemModel"`
	ItemID    uint   `json:"itemId"`
}

type CreateCheckoutResponse struct {
	OrderID     string `json:"orderId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`

	// AccessGranted short-circuits checkout: the item is already free for
	// this user or already owned; no order was created.
	AccessGranted bool   `json:"accessGranted,omitempty"`
	AlreadyOwned  bool   `json:"alreadyOwned,omitempty"`
	RedirectPath  string `json:"redirectPath,omitempty"`
}

type OrderStatusResponse struct {
	OrderID   string          `json:"orderId"`
	Status    string          `json:"status"`
	ItemModel string          `json:"itemModel"`
	ItemID    uint            `json:"itemId"`
	ItemTitle string          `json:"itemTitle"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`

	// RedirectPath is set once the order is PAID.
	RedirectPath string `json:"redirectPath,omitempty"`
}

// PaywallResponse is the 402 body the access gate returns so the client
// can render a paywall and start checkout.
type PaywallResponse struct {
	Price     decimal.Decimal `json:"price"`
	ItemTitle string          `json:"itemTitle"`
	ItemID    uint            `json:"itemId"`
}

type VerifySandboxRequest struct {
	OrderID string `json:"orderId"`
}

type CardChargeRequest struct {
	OrderID            string `json:"orderId"`
	PaymentMethodNonce string `json:"paymentMethodNonce"`
}
