package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/parse"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// --- DTOs ---

// CreateMerchantRequest accepts the freeform values as they arrive from
// onboarding spreadsheets. Dates, hours and business days are normalized
// before they reach the database; unparseable values fall back to defaults
// and are reported in the response warnings.
type CreateMerchantRequest struct {
	LegalName    string `json:"legal_name" binding:"required"`
	TradeName    string `json:"trade_name"`
	Document     string `json:"document" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	OpeningDate  string `json:"opening_date"`
	OpeningHour  string `json:"opening_hour"`
	ClosingHour  string `json:"closing_hour"`
	BusinessDays string `json:"business_days"`
}

type UpdateMerchantRequest struct {
	LegalName    *string `json:"legal_name"`
	TradeName    *string `json:"trade_name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
	Status       *string `json:"status" binding:"omitempty,oneof=PENDING ACTIVE SUSPENDED"`
	OpeningDate  *string `json:"opening_date"`
	OpeningHour  *string `json:"opening_hour"`
	ClosingHour  *string `json:"closing_hour"`
	BusinessDays *string `json:"business_days"`
}

type MerchantResponse struct {
	ID              string     `json:"id"`
	LegalName       string     `json:"legal_name"`
	TradeName       string     `json:"trade_name"`
	Document        string     `json:"document"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status"`
	OpeningDate     *time.Time `json:"opening_date,omitempty"`
	OpeningHour     string     `json:"opening_hour"`
	ClosingHour     string     `json:"closing_hour"`
	BusinessDays    string     `json:"business_days"`
	MerchantPriceID *string    `json:"merchant_price_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Warnings        []string   `json:"warnings,omitempty"`
}

// --- Interface ---

type MerchantService interface {
	CreateMerchant(ctx context.Context, req CreateMerchantRequest, userID string) (*MerchantResponse, error)
	UpdateMerchant(ctx context.Context, id string, req UpdateMerchantRequest, userID string) (*MerchantResponse, error)
	DeleteMerchant(ctx context.Context, id string, userID string) error
	GetMerchant(ctx context.Context, id string) (*MerchantResponse, error)
	ListMerchants(ctx context.Context, status, search string, page, limit int) ([]MerchantResponse, int64, error)
}

type merchantService struct {
	merchantRepo repository.MerchantRepository
	auditRepo    repository.AuditRepository
	logger       zerolog.Logger
}

func NewMerchantService(merchantRepo repository.MerchantRepository, auditRepo repository.AuditRepository, logger zerolog.Logger) MerchantService {
	return &merchantService{merchantRepo: merchantRepo, auditRepo: auditRepo, logger: logger}
}

// --- Implementation ---

func (s *merchantService) CreateMerchant(ctx context.Context, req CreateMerchantRequest, userID string) (*MerchantResponse, error) {
	document := normalizeDocument(req.Document)
	if existing, err := s.merchantRepo.FindByDocument(ctx, document); err == nil && existing != nil {
		return nil, fmt.Errorf("merchant with document %s already exists", document)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check document: %w", err)
	}

	var warnings []string
	merchant := model.Merchant{
		LegalName: req.LegalName,
		TradeName: req.TradeName,
		Document:  document,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    model.MerchantStatusPending,
	}

	if req.OpeningDate != "" {
		if date, ok := parse.BrazilianDate(req.OpeningDate); ok {
			merchant.OpeningDate = &date
		} else {
			warnings = append(warnings, fmt.Sprintf("opening date %q not recognized, left empty", req.OpeningDate))
			s.logger.Warn().Str("raw", req.OpeningDate).Msg("unparseable opening date")
		}
	}
	merchant.OpeningHour = parse.TimeOfDay(req.OpeningHour)
	if req.ClosingHour != "" {
		merchant.ClosingHour = parse.TimeOfDay(req.ClosingHour)
	} else {
		merchant.ClosingHour = "19:00"
	}
	merchant.BusinessDays = parse.BusinessDays(req.BusinessDays)

	if err := s.merchantRepo.Create(ctx, &merchant); err != nil {
		return nil, fmt.Errorf("failed to create merchant: %w", err)
	}

	s.logger.Info().Str("merchant_id", merchant.ID.String()).Str("document", document).Msg("merchant created")
	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateMerchant, merchant.ID.String(), merchant.LegalName, req)

	resp := toMerchantResponse(merchant)
	resp.Warnings = warnings
	return &resp, nil
}

func (s *merchantService) UpdateMerchant(ctx context.Context, id string, req UpdateMerchantRequest, userID string) (*MerchantResponse, error) {
	merchantID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant id")
	}

	merchant, err := s.merchantRepo.FindByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to fetch merchant: %w", err)
	}

	var warnings []string
	if req.LegalName != nil {
		merchant.LegalName = *req.LegalName
	}
	if req.TradeName != nil {
		merchant.TradeName = *req.TradeName
	}
	if req.Email != nil {
		merchant.Email = *req.Email
	}
	if req.Phone != nil {
		merchant.Phone = *req.Phone
	}
	if req.Status != nil {
		merchant.Status = *req.Status
	}
	if req.OpeningDate != nil {
		if date, ok := parse.BrazilianDate(*req.OpeningDate); ok {
			merchant.OpeningDate = &date
		} else {
			warnings = append(warnings, fmt.Sprintf("opening date %q not recognized, kept previous value", *req.OpeningDate))
		}
	}
	if req.OpeningHour != nil {
		merchant.OpeningHour = parse.TimeOfDay(*req.OpeningHour)
	}
	if req.ClosingHour != nil {
		merchant.ClosingHour = parse.TimeOfDay(*req.ClosingHour)
	}
	if req.BusinessDays != nil {
		merchant.BusinessDays = parse.BusinessDays(*req.BusinessDays)
	}

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, fmt.Errorf("failed to update merchant: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateMerchant, merchant.ID.String(), merchant.LegalName, req)

	resp := toMerchantResponse(*merchant)
	resp.Warnings = warnings
	return &resp, nil
}

func (s *merchantService) DeleteMerchant(ctx context.Context, id string, userID string) error {
	merchantID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid merchant id")
	}

	merchant, err := s.merchantRepo.FindByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMerchantNotFound
		}
		return fmt.Errorf("failed to fetch merchant: %w", err)
	}

	if err := s.merchantRepo.Delete(ctx, merchantID); err != nil {
		return fmt.Errorf("failed to delete merchant: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteMerchant, id, merchant.LegalName, nil)
	return nil
}

func (s *merchantService) GetMerchant(ctx context.Context, id string) (*MerchantResponse, error) {
	merchantID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant id")
	}

	merchant, err := s.merchantRepo.FindByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to fetch merchant: %w", err)
	}

	resp := toMerchantResponse(*merchant)
	return &resp, nil
}

func (s *merchantService) ListMerchants(ctx context.Context, status, search string, page, limit int) ([]MerchantResponse, int64, error) {
	merchants, total, err := s.merchantRepo.List(ctx, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list merchants: %w", err)
	}

	responses := make([]MerchantResponse, 0, len(merchants))
	for _, m := range merchants {
		responses = append(responses, toMerchantResponse(m))
	}
	return responses, total, nil
}

// normalizeDocument strips the usual CNPJ punctuation so lookups match
// regardless of how the document was typed.
func normalizeDocument(raw string) string {
	replacer := strings.NewReplacer(".", "", "/", "", "-", "", " ", "")
	return replacer.Replace(raw)
}

func toMerchantResponse(m model.Merchant) MerchantResponse {
	resp := MerchantResponse{
		ID:           m.ID.String(),
		LegalName:    m.LegalName,
		TradeName:    m.TradeName,
		Document:     m.Document,
		Email:        m.Email,
		Phone:        m.Phone,
		Status:       m.Status,
		OpeningDate:  m.OpeningDate,
		OpeningHour:  m.OpeningHour,
		ClosingHour:  m.ClosingHour,
		BusinessDays: m.BusinessDays,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.MerchantPriceID != nil {
		id := m.MerchantPriceID.String()
		resp.MerchantPriceID = &id
	}
	return resp
}
