package handler

import (
	"net/http"

	appmw "edupay/internal/middleware"
	"edupay/internal/repository"

	"github.com/labstack/echo/v4"
)

// ContentHandler serves gated item metadata. Rendering and file delivery
// belong to the content services; this endpoint exists to sit behind the
// pay gate.
type ContentHandler struct {
	contentRepo repository.ContentRepository
}

func NewContentHandler(contentRepo repository.ContentRepository) *ContentHandler {
	return &ContentHandler{
		contentRepo: contentRepo,
	}
}

func (h *ContentHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	decision := appmw.AccessDecision(c)
	if decision == nil {
		// Route misconfigured without the pay gate.
		return echo.NewHTTPError(http.StatusInternalServerError, "access decision missing")
	}

	item, err := h.contentRepo.GetItem(ctx, decision.ItemModel, decision.ItemID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"itemModel":    string(item.Model),
		"itemId":       item.ID,
		"title":        item.Title,
		"grantedBy":    decision.Reason,
		"redirectPath": item.Model.RedirectPath(item.ID),
	})
}
