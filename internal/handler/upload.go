package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/middleware"
	"github.com/iliyamo/easyshop/internal/service"
)

// UploadHandler accepts multipart image uploads for logos and product images.
type UploadHandler struct {
	Catalog *service.CatalogService
	BaseURL string
}

func NewUploadHandler(catalog *service.CatalogService, baseURL string) *UploadHandler {
	return &UploadHandler{Catalog: catalog, BaseURL: baseURL}
}

// UploadProfile stores the caller's business logo.
func (h *UploadHandler) UploadProfile(c echo.Context) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, err)
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	name, err := h.Catalog.SetBusinessLogo(c.Request().Context(), u, fh.Filename, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "filename": imageURL(h.BaseURL, name)})
}

// UploadProduct stores the image of a product the caller owns.
func (h *UploadHandler) UploadProduct(c echo.Context) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "Product not found!")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, err)
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	name, err := h.Catalog.SetProductImage(c.Request().Context(), u, id, fh.Filename, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "filename": imageURL(h.BaseURL, name)})
}
