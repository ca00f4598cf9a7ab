package handler

import (
	"errors"
	"net/http"

	"edupay/internal/apperr"
	"edupay/internal/dto"
	appmw "edupay/internal/middleware"
	"edupay/internal/model"
	"edupay/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := appmw.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	}

	var req dto.CreateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	itemModel := model.ItemModel(req.ItemModel)
	if !itemModel.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown item model")
	}
	if req.ItemID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing item id")
	}

	resp, err := h.paymentService.CreateCheckout(ctx, user, itemModel, req.ItemID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := appmw.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	}

	orderID := c.QueryParam("orderId")
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing orderId")
	}

	resp, err := h.paymentService.GetStatus(ctx, user.ID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// Webhook ingests the gateway's asynchronous payment notification.
// Replayed notifications are acknowledged with 200; a payload that fails
// signature verification is rejected without touching any order.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form payload")
	}

	if err := h.paymentService.HandleWebhook(ctx, values); err != nil {
		if errors.Is(err, apperr.ErrInvalidSignature) {
			c.Logger().Warnf("rejected webhook: %v", err)
			return echo.NewHTTPError(http.StatusBadRequest, "signature verification failed")
		}
		return err
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) VerifySandbox(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := appmw.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	}

	var req dto.VerifySandboxRequest
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing orderId")
	}

	resp, err := h.paymentService.VerifySandbox(ctx, user.ID, req.OrderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ChargeCard(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := appmw.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	}

	var req dto.CardChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OrderID == "" || req.PaymentMethodNonce == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing orderId or paymentMethodNonce")
	}

	resp, err := h.paymentService.ChargeCard(ctx, user.ID, req.OrderID, req.PaymentMethodNonce)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
