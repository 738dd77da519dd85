package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/parse"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateSettlementRequest struct {
	MerchantID    string `json:"merchant_id" binding:"required"`
	GrossAmount   string `json:"gross_amount" binding:"required"`
	FeeAmount     string `json:"fee_amount"`
	ReferenceDate string `json:"reference_date" binding:"required"` // DD/MM/YYYY
	Note          string `json:"note"`
}

type UpdateSettlementStatusRequest struct {
	Status      string `json:"status" binding:"required,oneof=PENDING PAID FAILED"`
	PaymentDate string `json:"payment_date"` // DD/MM/YYYY, required for PAID
	Note        string `json:"note"`
}

type SettlementResponse struct {
	ID            string          `json:"id"`
	SettlementNo  string          `json:"settlement_no"`
	MerchantID    string          `json:"merchant_id"`
	MerchantName  string          `json:"merchant_name,omitempty"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	Status        string          `json:"status"`
	ReferenceDate time.Time       `json:"reference_date"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// --- Interface ---

type SettlementService interface {
	CreateSettlement(ctx context.Context, req CreateSettlementRequest, userID string) (*SettlementResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateSettlementStatusRequest, userID string) (*SettlementResponse, error)
	GetSettlement(ctx context.Context, id string) (*SettlementResponse, error)
	ListSettlements(ctx context.Context, filter repository.SettlementFilter) ([]SettlementResponse, int64, error)
}

type settlementService struct {
	settlementRepo      repository.SettlementRepository
	merchantRepo        repository.MerchantRepository
	auditRepo           repository.AuditRepository
	notificationService NotificationService
	logger              zerolog.Logger
}

func NewSettlementService(
	settlementRepo repository.SettlementRepository,
	merchantRepo repository.MerchantRepository,
	auditRepo repository.AuditRepository,
	notificationService NotificationService,
	logger zerolog.Logger,
) SettlementService {
	return &settlementService{
		settlementRepo:      settlementRepo,
		merchantRepo:        merchantRepo,
		auditRepo:           auditRepo,
		notificationService: notificationService,
		logger:              logger,
	}
}

// --- Implementation ---

func (s *settlementService) CreateSettlement(ctx context.Context, req CreateSettlementRequest, userID string) (*SettlementResponse, error) {
	merchantID, err := uuid.Parse(req.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant id")
	}
	if _, err := s.merchantRepo.FindByID(ctx, merchantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to fetch merchant: %w", err)
	}

	gross, ok := parse.Decimal(req.GrossAmount)
	if !ok {
		return nil, fmt.Errorf("gross amount %q is not a valid amount", req.GrossAmount)
	}
	fee := decimal.Zero
	if req.FeeAmount != "" {
		fee, ok = parse.Decimal(req.FeeAmount)
		if !ok {
			return nil, fmt.Errorf("fee amount %q is not a valid amount", req.FeeAmount)
		}
	}
	referenceDate, ok := parse.BrazilianDate(req.ReferenceDate)
	if !ok {
		return nil, fmt.Errorf("reference date %q is not a valid date", req.ReferenceDate)
	}

	settlementNo, err := s.nextSettlementNo(ctx, referenceDate)
	if err != nil {
		return nil, err
	}

	settlement := model.Settlement{
		SettlementNo:  settlementNo,
		MerchantID:    merchantID,
		GrossAmount:   gross,
		FeeAmount:     fee,
		NetAmount:     gross.Sub(fee),
		Status:        model.SettlementPending,
		ReferenceDate: referenceDate,
		Note:          req.Note,
	}
	if err := s.settlementRepo.Create(ctx, &settlement); err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	s.logger.Info().Str("settlement_no", settlementNo).Str("merchant_id", merchantID.String()).Msg("settlement created")
	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateSettlement, settlement.ID.String(), settlementNo, req)

	resp := toSettlementResponse(settlement)
	return &resp, nil
}

func (s *settlementService) UpdateStatus(ctx context.Context, id string, req UpdateSettlementStatusRequest, userID string) (*SettlementResponse, error) {
	settlementID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid settlement id")
	}

	settlement, err := s.settlementRepo.FindByID(ctx, settlementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settlement not found")
		}
		return nil, fmt.Errorf("failed to fetch settlement: %w", err)
	}

	settlement.Status = req.Status
	if req.Note != "" {
		settlement.Note = req.Note
	}
	if req.Status == model.SettlementPaid {
		paymentDate := time.Now()
		if req.PaymentDate != "" {
			if parsed, ok := parse.BrazilianDate(req.PaymentDate); ok {
				paymentDate = parsed
			} else {
				return nil, fmt.Errorf("payment date %q is not a valid date", req.PaymentDate)
			}
		}
		settlement.PaymentDate = &paymentDate
	}

	if err := s.settlementRepo.Update(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to update settlement: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateSettlement, id, settlement.SettlementNo, req)
	s.notificationService.Notify(ctx, model.NotificationSettlementStatus, &settlement.MerchantID,
		"Status de liquidação atualizado",
		fmt.Sprintf("Liquidação %s agora está %s", settlement.SettlementNo, req.Status))

	resp := toSettlementResponse(*settlement)
	return &resp, nil
}

func (s *settlementService) GetSettlement(ctx context.Context, id string) (*SettlementResponse, error) {
	settlementID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid settlement id")
	}
	settlement, err := s.settlementRepo.FindByID(ctx, settlementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settlement not found")
		}
		return nil, fmt.Errorf("failed to fetch settlement: %w", err)
	}
	resp := toSettlementResponse(*settlement)
	return &resp, nil
}

func (s *settlementService) ListSettlements(ctx context.Context, filter repository.SettlementFilter) ([]SettlementResponse, int64, error) {
	settlements, total, err := s.settlementRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	responses := make([]SettlementResponse, 0, len(settlements))
	for _, settlement := range settlements {
		responses = append(responses, toSettlementResponse(settlement))
	}
	return responses, total, nil
}

// nextSettlementNo produces "ST-YYYYMM-NNNN" scoped to the reference month.
func (s *settlementService) nextSettlementNo(ctx context.Context, referenceDate time.Time) (string, error) {
	prefix := fmt.Sprintf("ST-%s-", referenceDate.Format("200601"))
	count, err := s.settlementRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count settlements: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func toSettlementResponse(settlement model.Settlement) SettlementResponse {
	resp := SettlementResponse{
		ID:            settlement.ID.String(),
		SettlementNo:  settlement.SettlementNo,
		MerchantID:    settlement.MerchantID.String(),
		GrossAmount:   settlement.GrossAmount,
		FeeAmount:     settlement.FeeAmount,
		NetAmount:     settlement.NetAmount,
		Status:        settlement.Status,
		ReferenceDate: settlement.ReferenceDate,
		PaymentDate:   settlement.PaymentDate,
		Note:          settlement.Note,
		CreatedAt:     settlement.CreatedAt,
	}
	if settlement.Merchant != nil {
		resp.MerchantName = settlement.Merchant.LegalName
	}
	return resp
}
