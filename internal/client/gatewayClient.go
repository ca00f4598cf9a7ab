package client

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edupay/internal/apperr"
	"edupay/internal/config"
	"edupay/internal/model"

	"github.com/shopspring/decimal"
)

// Outcome is the gateway's view of a payment.
type Outcome string

const (
	OutcomePaid    Outcome = "PAID"
	OutcomeFailed  Outcome = "FAILED"
	OutcomePending Outcome = "PENDING"
)

type CheckoutSession struct {
	GatewayOrderID string
	RedirectURL    string
}

// CallbackResult is a verified, decoded gateway notification.
type CallbackResult struct {
	EventID        string
	GatewayOrderID string
	LocalOrderID   string
	Outcome        Outcome
	Amount         decimal.Decimal
	StatusMessage  string
}

// GatewayClient abstracts the external payment processor. VerifyCallback
// must authenticate the payload before anything trusts it; implementations
// fail closed with apperr.ErrInvalidSignature.
type GatewayClient interface {
	CreateSession(ctx context.Context, order *model.Order, itemTitle string) (*CheckoutSession, error)
	VerifyCallback(values url.Values) (*CallbackResult, error)
	// FetchStatus re-checks the gateway's authoritative status for an
	// order. Returns the outcome and the gateway payment reference, if any.
	FetchStatus(ctx context.Context, order *model.Order) (Outcome, string, error)
}

// Hosted-checkout status codes, as delivered on callbacks and the
// order-retrieval API.
const (
	statusCodePaid    = "2"
	statusCodePending = "0"
	statusCodeFailed  = "-2"
)

type hostedClientImpl struct {
	httpClient     *http.Client
	baseApiURL     string
	merchantID     string
	merchantSecret string
	clientID       string
	clientSecret   string
	returnURL      string
	cancelURL      string
	notifyURL      string
}

func NewHostedGatewayClient(cfg *config.Gateway) GatewayClient {
	return &hostedClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:     cfg.BaseApiURL,
		merchantID:     cfg.MerchantID,
		merchantSecret: cfg.MerchantSecret,
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
		returnURL:      cfg.ReturnURL,
		cancelURL:      cfg.CancelURL,
		notifyURL:      cfg.NotifyURL,
	}
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// sessionHash signs an outgoing checkout request.
func (c *hostedClientImpl) sessionHash(orderID, amount, currency string) string {
	return md5Upper(c.merchantID + orderID + amount + currency + md5Upper(c.merchantSecret))
}

// callbackHash is the signature the gateway attaches to notifications.
func (c *hostedClientImpl) callbackHash(orderID, amount, currency, statusCode string) string {
	return md5Upper(c.merchantID + orderID + amount + currency + statusCode + md5Upper(c.merchantSecret))
}

func outcomeForStatusCode(code string) Outcome {
	switch code {
	case statusCodePaid:
		return OutcomePaid
	case statusCodePending:
		return OutcomePending
	default:
		return OutcomeFailed
	}
}

func (c *hostedClientImpl) CreateSession(ctx context.Context, order *model.Order, itemTitle string) (*CheckoutSession, error) {
	amount := order.Amount.StringFixed(2)
	payload := map[string]string{
		"merchant_id": c.merchantID,
		"order_id":    order.OrderID,
		"items":       itemTitle,
		"amount":      amount,
		"currency":    order.Currency,
		"return_url":  c.returnURL,
		"cancel_url":  c.cancelURL,
		"notify_url":  c.notifyURL,
		"hash":        c.sessionHash(order.OrderID, amount, order.Currency),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal session payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/checkout/sessions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w: %v", apperr.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("gateway error %d: %w", resp.StatusCode, apperr.ErrGatewayUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		SessionID   string `json:"session_id"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &CheckoutSession{
		GatewayOrderID: result.SessionID,
		RedirectURL:    result.RedirectURL,
	}, nil
}

func (c *hostedClientImpl) VerifyCallback(values url.Values) (*CallbackResult, error) {
	merchantID := values.Get("merchant_id")
	orderID := values.Get("order_id")
	paymentID := values.Get("payment_id")
	amount := values.Get("amount")
	currency := values.Get("currency")
	statusCode := values.Get("status_code")
	signature := values.Get("md5sig")

	if merchantID != c.merchantID {
		return nil, fmt.Errorf("merchant id mismatch: %w", apperr.ErrInvalidSignature)
	}
	if signature == "" || signature != c.callbackHash(orderID, amount, currency, statusCode) {
		return nil, fmt.Errorf("callback hash mismatch for order %s: %w", orderID, apperr.ErrInvalidSignature)
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("bad callback amount %q: %w", amount, apperr.ErrInvalidSignature)
	}

	eventID := paymentID
	if eventID == "" {
		eventID = orderID + ":" + statusCode
	}

	return &CallbackResult{
		EventID:        eventID,
		GatewayOrderID: paymentID,
		LocalOrderID:   orderID,
		Outcome:        outcomeForStatusCode(statusCode),
		Amount:         amt,
		StatusMessage:  values.Get("status_message"),
	}, nil
}

func (c *hostedClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/oauth/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w: %v", apperr.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("empty access token: %w", apperr.ErrGatewayUnavailable)
	}

	return res.AccessToken, nil
}

func (c *hostedClientImpl) FetchStatus(ctx context.Context, order *model.Order) (Outcome, string, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return OutcomePending, "", err
	}

	reqURL := fmt.Sprintf("%s/v1/orders/search?order_id=%s", c.baseApiURL, url.QueryEscape(order.OrderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return OutcomePending, "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OutcomePending, "", fmt.Errorf("fetch order status: %w: %v", apperr.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Gateway has never seen this order; checkout was abandoned
		// before redirect.
		return OutcomePending, "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return OutcomePending, "", fmt.Errorf("gateway error %d: %s: %w", resp.StatusCode, string(b), apperr.ErrGatewayUnavailable)
	}

	var result struct {
		StatusCode string `json:"status_code"`
		PaymentID  string `json:"payment_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return OutcomePending, "", fmt.Errorf("decode gateway response: %w", err)
	}

	return outcomeForStatusCode(result.StatusCode), result.PaymentID, nil
}
