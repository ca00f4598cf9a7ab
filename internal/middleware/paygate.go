package middleware

import (
	"net/http"
	"strconv"

	"edupay/internal/dto"
	"edupay/internal/model"
	"edupay/internal/service"

	"github.com/labstack/echo/v4"
)

const decisionContextKey = "accessDecision"

// PayGate guards a content route behind the access policy. The check runs
// on every request, never cached: an order can flip to PAID between two
// requests from the same user.
func PayGate(access service.AccessService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
			}

			itemModel := model.ItemModel(c.Param("model"))
			if !itemModel.Valid() {
				return echo.NewHTTPError(http.StatusNotFound, "unknown content type")
			}
			itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
			}

			decision, err := access.CanAccess(c.Request().Context(), user, itemModel, uint(itemID))
			if err != nil {
				return err
			}
			if !decision.Allowed {
				return c.JSON(http.StatusPaymentRequired, dto.PaywallResponse{
					Price:     decision.Price,
					ItemTitle: decision.ItemTitle,
					ItemID:    decision.ItemID,
				})
			}

			c.Set(decisionContextKey, decision)
			return next(c)
		}
	}
}

// AccessDecision returns the decision PayGate stashed for the handler.
func AccessDecision(c echo.Context) *service.Decision {
	d, _ := c.Get(decisionContextKey).(*service.Decision)
	return d
}
