package handler

import (
	"net/http"
	"time"

	"backoffice/internal/middleware"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

func (h *SettlementHandler) RegisterRoutes(router *gin.RouterGroup) {
	settlements := router.Group("/api/settlements")
	{
		settlements.GET("", middleware.RequirePermission("settlements.read"), h.ListSettlements)
		settlements.GET("/:id", middleware.RequirePermission("settlements.read"), h.GetSettlement)
		settlements.POST("", middleware.RequirePermission("settlements.write"), h.CreateSettlement)
		settlements.PATCH("/:id/status", middleware.RequirePermission("settlements.write"), h.UpdateStatus)
	}
}

// ListSettlements returns paginated settlements filtered by status, merchant
// and reference date range
// @Summary      List settlements
// @Tags         settlements
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default: 1)"
// @Param        limit        query     int     false  "Items per page (default: 20)"
// @Param        status       query     string  false  "Filter by status: PENDING, PAID, FAILED"
// @Param        merchant_id  query     string  false  "Filter by merchant"
// @Param        from         query     string  false  "Reference date from (YYYY-MM-DD)"
// @Param        to           query     string  false  "Reference date to (YYYY-MM-DD)"
// @Success      200          {object}  response.Response
// @Router       /api/settlements [get]
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.SettlementFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	if raw := c.Query("merchant_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.MerchantID = &id
		}
	}
	if raw := c.Query("from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = &from
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			filter.To = &to
		}
	}

	settlements, total, err := h.settlementService.ListSettlements(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, settlements, params.Page, params.Limit, total))
}

// GetSettlement returns one settlement with its merchant
// @Summary      Get settlement
// @Tags         settlements
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Settlement ID"
// @Success      200  {object}  response.Response{data=service.SettlementResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/settlements/{id} [get]
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	settlement, err := h.settlementService.GetSettlement(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settlement))
}

// CreateSettlement records a payout cycle for a merchant
// @Summary      Create settlement
// @Tags         settlements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateSettlementRequest  true  "Settlement payload"
// @Success      201  {object}  response.Response{data=service.SettlementResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/settlements [post]
func (h *SettlementHandler) CreateSettlement(c *gin.Context) {
	var req service.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	settlement, err := h.settlementService.CreateSettlement(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, settlement))
}

// UpdateStatus transitions a settlement between PENDING, PAID and FAILED
// @Summary      Update settlement status
// @Tags         settlements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                                 true  "Settlement ID"
// @Param        payload  body  service.UpdateSettlementStatusRequest  true  "Status payload"
// @Success      200  {object}  response.Response{data=service.SettlementResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/settlements/{id}/status [patch]
func (h *SettlementHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateSettlementStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	settlement, err := h.settlementService.UpdateStatus(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settlement))
}
