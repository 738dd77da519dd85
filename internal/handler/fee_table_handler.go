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

type FeeTableHandler struct {
	feeTableService service.FeeTableService
	feeCloneService service.FeeCloneService
}

func NewFeeTableHandler(feeTableService service.FeeTableService, feeCloneService service.FeeCloneService) *FeeTableHandler {
	return &FeeTableHandler{feeTableService: feeTableService, feeCloneService: feeCloneService}
}

func (h *FeeTableHandler) RegisterRoutes(router *gin.RouterGroup) {
	tables := router.Group("/api/fee-tables")
	{
		tables.GET("", middleware.RequirePermission("fees.read"), h.ListFeeTables)
		tables.GET("/:id", middleware.RequirePermission("fees.read"), h.GetFeeTable)
		tables.POST("", middleware.RequirePermission("fees.write"), h.CreateFeeTable)
		tables.PUT("/:id", middleware.RequirePermission("fees.write"), h.UpdateFeeTable)
		tables.DELETE("/:id", middleware.RequirePermission("fees.write"), h.DeleteFeeTable)
		tables.PATCH("/:id/active", middleware.RequirePermission("fees.write"), h.SetActive)
		tables.POST("/:id/clone", middleware.RequirePermission("fees.assign"), h.CloneToMerchant)
	}
}

// ListFeeTables returns paginated fee tables
// @Summary      List fee tables
// @Tags         fee-tables
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        active  query     bool    false  "Only active tables"
// @Param        search  query     string  false  "Search by name"
// @Success      200     {object}  response.Response
// @Router       /api/fee-tables [get]
func (h *FeeTableHandler) ListFeeTables(c *gin.Context) {
	params := pagination.Parse(c)
	activeOnly := c.Query("active") == "true"
	search := c.Query("search")

	tables, total, err := h.feeTableService.ListFeeTables(c.Request.Context(), activeOnly, search, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, tables, params.Page, params.Limit, total))
}

// GetFeeTable returns one fee table with its brand groups and computed
// effective rates
// @Summary      Get fee table
// @Tags         fee-tables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Fee table ID"
// @Success      200  {object}  response.Response{data=service.FeeTableResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/fee-tables/{id} [get]
func (h *FeeTableHandler) GetFeeTable(c *gin.Context) {
	table, err := h.feeTableService.GetFeeTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrFeeTableNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Fee table not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, table))
}

// CreateFeeTable creates a fee table from (possibly messy) imported values
// @Summary      Create fee table
// @Tags         fee-tables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateFeeTableRequest  true  "Fee table payload"
// @Success      201  {object}  response.Response{data=service.FeeTableResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/fee-tables [post]
func (h *FeeTableHandler) CreateFeeTable(c *gin.Context) {
	var req service.CreateFeeTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	table, err := h.feeTableService.CreateFeeTable(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, table))
}

// UpdateFeeTable updates a fee table; brand groups are replaced wholesale
// when present in the payload
// @Summary      Update fee table
// @Tags         fee-tables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Fee table ID"
// @Param        payload  body  service.UpdateFeeTableRequest  true  "Update payload"
// @Success      200  {object}  response.Response{data=service.FeeTableResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/fee-tables/{id} [put]
func (h *FeeTableHandler) UpdateFeeTable(c *gin.Context) {
	var req service.UpdateFeeTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	table, err := h.feeTableService.UpdateFeeTable(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrFeeTableNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Fee table not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, table))
}

// DeleteFeeTable deletes a fee table; existing merchant prices cloned from
// it are untouched
// @Summary      Delete fee table
// @Tags         fee-tables
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Fee table ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/fee-tables/{id} [delete]
func (h *FeeTableHandler) DeleteFeeTable(c *gin.Context) {
	if err := h.feeTableService.DeleteFeeTable(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		if errors.Is(err, service.ErrFeeTableNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Fee table not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Fee table deleted"))
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive toggles whether a table can be cloned onto merchants
// @Summary      Activate or deactivate fee table
// @Tags         fee-tables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string            true  "Fee table ID"
// @Param        payload  body  setActiveRequest  true  "Active flag"
// @Success      200  {object}  response.Response{data=service.FeeTableResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/fee-tables/{id}/active [patch]
func (h *FeeTableHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	table, err := h.feeTableService.SetActive(c.Request.Context(), c.Param("id"), *req.Active, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrFeeTableNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Fee table not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, table))
}

type cloneRequest struct {
	MerchantID string `json:"merchant_id" binding:"required"`
}

// CloneToMerchant materializes the fee table onto a merchant as its price
// @Summary      Clone fee table to merchant
// @Tags         fee-tables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string        true  "Fee table ID"
// @Param        payload  body  cloneRequest  true  "Target merchant"
// @Success      201  {object}  response.Response{data=service.CloneResult}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/fee-tables/{id}/clone [post]
func (h *FeeTableHandler) CloneToMerchant(c *gin.Context) {
	var req cloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.feeCloneService.CloneToMerchant(c.Request.Context(), c.Param("id"), req.MerchantID, c.GetString("userID"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeeTableNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Fee table not found"))
		case errors.Is(err, service.ErrMerchantNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Merchant not found"))
		case errors.Is(err, service.ErrPriceAlreadyAssigned):
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Merchant already has a price assigned"))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
