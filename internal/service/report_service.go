package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// --- DTOs ---

type RequestReportRequest struct {
	ReportType string            `json:"report_type" binding:"required,oneof=SETTLEMENT_SUMMARY MERCHANT_PRICING FEE_REVENUE"`
	Params     map[string]string `json:"params"`
}

type ReportResponse struct {
	ID          string    `json:"id"`
	ReportType  string    `json:"report_type"`
	Status      string    `json:"status"`
	Params      string    `json:"params,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Requester   string    `json:"requester,omitempty"`
	ResultPath  string    `json:"result_path,omitempty"`
	FailReason  string    `json:"fail_reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Interface ---

type ReportService interface {
	RequestReport(ctx context.Context, req RequestReportRequest, userID string) (*ReportResponse, error)
	GetReport(ctx context.Context, id string) (*ReportResponse, error)
	ListReports(ctx context.Context, status string, page, limit int) ([]ReportResponse, int64, error)
	MarkDone(ctx context.Context, id string, resultPath string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type reportService struct {
	reportRepo repository.ReportRepository
	auditRepo  repository.AuditRepository
	logger     zerolog.Logger
}

func NewReportService(reportRepo repository.ReportRepository, auditRepo repository.AuditRepository, logger zerolog.Logger) ReportService {
	return &reportService{reportRepo: reportRepo, auditRepo: auditRepo, logger: logger}
}

// --- Implementation ---

func (s *reportService) RequestReport(ctx context.Context, req RequestReportRequest, userID string) (*ReportResponse, error) {
	params, err := json.Marshal(req.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report params: %w", err)
	}

	report := model.ReportRequest{
		ReportType: req.ReportType,
		Status:     model.ReportPending,
		Params:     string(params),
	}
	if requesterID, err := uuid.Parse(userID); err == nil {
		report.RequestedBy = &requesterID
	}

	if err := s.reportRepo.Create(ctx, &report); err != nil {
		return nil, fmt.Errorf("failed to create report request: %w", err)
	}

	s.logger.Info().Str("report_id", report.ID.String()).Str("type", req.ReportType).Msg("report requested")
	writeAudit(ctx, s.auditRepo, userID, model.ActionRequestReport, report.ID.String(), req.ReportType, req)

	resp := toReportResponse(report)
	return &resp, nil
}

func (s *reportService) GetReport(ctx context.Context, id string) (*ReportResponse, error) {
	reportID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid report id")
	}
	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report not found")
		}
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	resp := toReportResponse(*report)
	return &resp, nil
}

func (s *reportService) ListReports(ctx context.Context, status string, page, limit int) ([]ReportResponse, int64, error) {
	reports, total, err := s.reportRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	responses := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, toReportResponse(report))
	}
	return responses, total, nil
}

// MarkDone is called by the rendering worker when the artifact is ready.
func (s *reportService) MarkDone(ctx context.Context, id string, resultPath string) error {
	return s.transition(ctx, id, func(report *model.ReportRequest) {
		report.Status = model.ReportDone
		report.ResultPath = resultPath
		report.FailReason = ""
	})
}

func (s *reportService) MarkFailed(ctx context.Context, id string, reason string) error {
	return s.transition(ctx, id, func(report *model.ReportRequest) {
		report.Status = model.ReportFailed
		report.FailReason = reason
	})
}

func (s *reportService) transition(ctx context.Context, id string, apply func(*model.ReportRequest)) error {
	reportID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid report id")
	}
	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("report not found")
		}
		return fmt.Errorf("failed to fetch report: %w", err)
	}
	apply(report)
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return nil
}

func toReportResponse(report model.ReportRequest) ReportResponse {
	resp := ReportResponse{
		ID:         report.ID.String(),
		ReportType: report.ReportType,
		Status:     report.Status,
		Params:     report.Params,
		ResultPath: report.ResultPath,
		FailReason: report.FailReason,
		CreatedAt:  report.CreatedAt,
		UpdatedAt:  report.UpdatedAt,
	}
	if report.RequestedBy != nil {
		resp.RequestedBy = report.RequestedBy.String()
	}
	if report.Requester != nil {
		resp.Requester = report.Requester.Username
	}
	return resp
}
