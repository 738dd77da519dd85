package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("", middleware.RequirePermission("reports.read"), h.ListReports)
		reports.GET("/:id", middleware.RequirePermission("reports.read"), h.GetReport)
		reports.POST("", middleware.RequirePermission("reports.write"), h.RequestReport)
		reports.PATCH("/:id/status", middleware.RequirePermission("reports.write"), h.UpdateReportStatus)
	}
}

type updateReportStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=DONE FAILED"`
	ResultPath string `json:"result_path"`
	FailReason string `json:"fail_reason"`
}

// ListReports returns paginated report requests, optionally by status
// @Summary      List report requests
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "Filter by status: PENDING, PROCESSING, DONE, FAILED"
// @Success      200     {object}  response.Response
// @Router       /api/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")

	reports, total, err := h.reportService.ListReports(c.Request.Context(), status, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, reports, params.Page, params.Limit, total))
}

// GetReport returns a report request with its current state
// @Summary      Get report request
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  response.Response{data=service.ReportResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.reportService.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// RequestReport queues a report generation job
// @Summary      Request report
// @Tags         reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.RequestReportRequest  true  "Report request payload"
// @Success      201  {object}  response.Response{data=service.ReportResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/reports [post]
func (h *ReportHandler) RequestReport(c *gin.Context) {
	var req service.RequestReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	report, err := h.reportService.RequestReport(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}

// UpdateReportStatus records the outcome reported by the rendering worker
// @Summary      Update report status
// @Tags         reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Report ID"
// @Param        payload  body  updateReportStatusRequest  true  "Outcome payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/reports/{id}/status [patch]
func (h *ReportHandler) UpdateReportStatus(c *gin.Context) {
	var req updateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	var err error
	if req.Status == "DONE" {
		err = h.reportService.MarkDone(c.Request.Context(), c.Param("id"), req.ResultPath)
	} else {
		err = h.reportService.MarkFailed(c.Request.Context(), c.Param("id"), req.FailReason)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Report status updated"))
}
