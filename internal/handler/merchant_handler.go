package handler

import (
	"errors"
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type MerchantHandler struct {
	merchantService service.MerchantService
}

func NewMerchantHandler(merchantService service.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantService: merchantService}
}

func (h *MerchantHandler) RegisterRoutes(router *gin.RouterGroup) {
	merchants := router.Group("/api/merchants")
	{
		merchants.GET("", middleware.RequirePermission("merchants.read"), h.ListMerchants)
		merchants.GET("/:id", middleware.RequirePermission("merchants.read"), h.GetMerchant)
		merchants.POST("", middleware.RequirePermission("merchants.write"), h.CreateMerchant)
		merchants.PUT("/:id", middleware.RequirePermission("merchants.write"), h.UpdateMerchant)
		merchants.DELETE("/:id", middleware.RequirePermission("merchants.write"), h.DeleteMerchant)
	}
}

// ListMerchants returns paginated merchants with optional status/search filter
// @Summary      List merchants
// @Tags         merchants
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "Filter by status: PENDING, ACTIVE, SUSPENDED"
// @Param        search  query     string  false  "Search by name, document, email"
// @Success      200     {object}  response.Response
// @Router       /api/merchants [get]
func (h *MerchantHandler) ListMerchants(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")
	search := c.Query("search")

	merchants, total, err := h.merchantService.ListMerchants(c.Request.Context(), status, search, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, merchants, params.Page, params.Limit, total))
}

// GetMerchant returns one merchant by id
// @Summary      Get merchant
// @Tags         merchants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Merchant ID"
// @Success      200  {object}  response.Response{data=service.MerchantResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/merchants/{id} [get]
func (h *MerchantHandler) GetMerchant(c *gin.Context) {
	merchant, err := h.merchantService.GetMerchant(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Merchant not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, merchant))
}

// CreateMerchant creates a new merchant from onboarding data
// @Summary      Create merchant
// @Tags         merchants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateMerchantRequest  true  "Merchant payload"
// @Success      201  {object}  response.Response{data=service.MerchantResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/merchants [post]
func (h *MerchantHandler) CreateMerchant(c *gin.Context) {
	var req service.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	merchant, err := h.merchantService.CreateMerchant(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, merchant))
}

// UpdateMerchant updates an existing merchant
// @Summary      Update merchant
// @Tags         merchants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Merchant ID"
// @Param        payload  body  service.UpdateMerchantRequest  true  "Update payload"
// @Success      200  {object}  response.Response{data=service.MerchantResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/merchants/{id} [put]
func (h *MerchantHandler) UpdateMerchant(c *gin.Context) {
	var req service.UpdateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	merchant, err := h.merchantService.UpdateMerchant(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Merchant not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, merchant))
}

// DeleteMerchant soft-deletes a merchant
// @Summary      Delete merchant
// @Tags         merchants
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Merchant ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/merchants/{id} [delete]
func (h *MerchantHandler) DeleteMerchant(c *gin.Context) {
	if err := h.merchantService.DeleteMerchant(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Merchant not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Merchant deleted"))
}
