package handler

import (
	"errors"
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricingService service.PricingService
}

func NewPricingHandler(pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	prices := router.Group("/api/merchant-prices")
	{
		prices.GET("/:id", middleware.RequirePermission("fees.read"), h.GetMerchantPrice)
		prices.PATCH("/:id/product-field", middleware.RequirePermission("pricing.write"), h.UpdateProductField)
		prices.PATCH("/:id/pix", middleware.RequirePermission("pricing.write"), h.UpdatePixConfig)
	}
}

// GetMerchantPrice returns a merchant price with effective rates computed
// per row
// @Summary      Get merchant price
// @Tags         pricing
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Merchant price ID"
// @Success      200  {object}  response.Response{data=service.MerchantPriceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/merchant-prices/{id} [get]
func (h *PricingHandler) GetMerchantPrice(c *gin.Context) {
	price, err := h.pricingService.GetMerchantPrice(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMerchantPriceNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Merchant price not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, price))
}

// UpdateProductField edits one rate field on one product row of the price.
// Targeting a single installment inside a wider bucket splits the bucket
// into per-installment rows first.
// @Summary      Update product rate field
// @Tags         pricing
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                             true  "Merchant price ID"
// @Param        payload  body  service.UpdateProductFieldRequest  true  "Field edit"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/merchant-prices/{id}/product-field [patch]
func (h *PricingHandler) UpdateProductField(c *gin.Context) {
	var req service.UpdateProductFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	err := h.pricingService.UpdateProductTypeField(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMerchantPriceNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Merchant price not found"))
		case errors.Is(err, service.ErrProductRowNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Product row not found"))
		case errors.Is(err, service.ErrUnknownField):
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown rate field"))
		case errors.Is(err, service.ErrFieldNotEditable):
			c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, "Field not editable for this product kind"))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Field updated"))
}

// UpdatePixConfig applies a partial update to the PIX fields of the price
// @Summary      Update PIX config
// @Tags         pricing
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Merchant price ID"
// @Param        payload  body  service.PixFieldUpdate  true  "PIX field edits"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/merchant-prices/{id}/pix [patch]
func (h *PricingHandler) UpdatePixConfig(c *gin.Context) {
	var req service.PixFieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	err := h.pricingService.UpdatePixConfig(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrMerchantPriceNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Merchant price not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "PIX config updated"))
}
