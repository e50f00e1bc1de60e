package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/middleware"
	"github.com/iliyamo/easyshop/internal/service"
)

type BusinessHandler struct {
	Catalog *service.CatalogService
}

func NewBusinessHandler(catalog *service.CatalogService) *BusinessHandler {
	return &BusinessHandler{Catalog: catalog}
}

// Update edits the business profile; only its owner may call it.
func (h *BusinessHandler) Update(c echo.Context) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "Business not found!")
	if err != nil {
		return err
	}
	var in service.BusinessInput
	if err := c.Bind(&in); err != nil {
		return apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, err)
	}
	b, err := h.Catalog.UpdateBusiness(c.Request().Context(), u, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": b})
}
