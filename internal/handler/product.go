package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/middleware"
	"github.com/iliyamo/easyshop/internal/service"
)

// ProductHandler serves the public catalog and the owner's product writes.
type ProductHandler struct {
	Catalog *service.CatalogService
}

func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{Catalog: catalog}
}

// pathID parses the :id path parameter; anything unparsable is NotFound.
func pathID(c echo.Context, notFoundMsg string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFoundErr(notFoundMsg)
	}
	return id, nil
}

func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.Catalog.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": products})
}

func (h *ProductHandler) Create(c echo.Context) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var in service.ProductInput
	if err := c.Bind(&in); err != nil {
		return apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, err)
	}
	p, err := h.Catalog.CreateProduct(c.Request().Context(), u, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": p})
}

// Get returns a product with its seller's public details.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "Product not found!")
	if err != nil {
		return err
	}
	d, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{
		"product_details": d.Product,
		"business_details": echo.Map{
			"name":        d.Business.Name,
			"city":        d.Business.City,
			"region":      d.Business.Region,
			"description": d.Business.Description,
			"business_id": d.Business.ID,
			"logo":        d.Business.Logo,
			"owner_id":    d.Owner.ID,
			"email":       d.Owner.Email,
			"join_date":   d.Owner.JoinDateLabel(),
		},
	}})
}

func (h *ProductHandler) Update(c echo.Context) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "Product not found!")
	if err != nil {
		return err
	}
	var in service.ProductInput
	if err := c.Bind(&in); err != nil {
		return apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, err)
	}
	p, err := h.Catalog.UpdateProduct(c.Request().Context(), u, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": p})
}

func (h *ProductHandler) Delete(c echo.Context) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "Product not found!")
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteProduct(c.Request().Context(), u, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
