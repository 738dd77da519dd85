package service

import (
	"context"
	"errors"
	"fmt"

	"backoffice/internal/model"
	"backoffice/internal/pricing"
	"backoffice/internal/repository"
	"backoffice/pkg/parse"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpdateProductFieldRequest struct {
	GroupSlug        string `json:"group_slug" binding:"required"`
	Kind             string `json:"kind" binding:"required,oneof=credit debit voucher prepaid"`
	Installment      *int   `json:"installment"`       // targets one installment count; splits the bucket when needed
	InstallmentStart int    `json:"installment_start"` // identifies the bucket when installment is absent
	InstallmentEnd   int    `json:"installment_end"`
	Field            string `json:"field" binding:"required"`
	Value            string `json:"value" binding:"required"`
}

// PixFieldUpdate is a partial update: nil fields stay untouched.
type PixFieldUpdate struct {
	CardPixMdr              *string `json:"card_pix_mdr"`
	NonCardPixMdr           *string `json:"non_card_pix_mdr"`
	CardPixCeilingFee       *string `json:"card_pix_ceiling_fee"`
	NonCardPixCeilingFee    *string `json:"non_card_pix_ceiling_fee"`
	CardPixMinimumFee       *string `json:"card_pix_minimum_fee"`
	NonCardPixMinimumFee    *string `json:"non_card_pix_minimum_fee"`
	EventualAnticipationFee *string `json:"eventual_anticipation_fee"` // applied only on EVENTUAL tables
}

type MerchantPriceResponse struct {
	ID                         string               `json:"id"`
	Name                       string               `json:"name"`
	TableType                  string               `json:"table_type"`
	AnticipationType           string               `json:"anticipation_type"`
	CompulsoryAnticipationDays int                  `json:"compulsory_anticipation_days"`
	EventualAnticipationFee    string               `json:"eventual_anticipation_fee"`
	Pix                        PixResponse          `json:"pix"`
	SourceFeeTableID           *string              `json:"source_fee_table_id,omitempty"`
	BrandGroups                []BrandGroupResponse `json:"brand_groups"`
	CreatedAt                  string               `json:"created_at"`
	UpdatedAt                  string               `json:"updated_at"`
}

// --- Interface ---

// PricingService applies targeted edits to a merchant's materialized price
// without disturbing unrelated fields. Composite values (effective rates)
// are never written; they are recomputed on every read.
type PricingService interface {
	GetMerchantPrice(ctx context.Context, priceID string) (*MerchantPriceResponse, error)
	UpdateProductTypeField(ctx context.Context, priceID string, req UpdateProductFieldRequest, userID string) error
	UpdatePixConfig(ctx context.Context, priceID string, fields PixFieldUpdate, userID string) error
}

type pricingService struct {
	priceRepo           repository.MerchantPriceRepository
	auditRepo           repository.AuditRepository
	txManager           repository.TransactionManager
	notificationService NotificationService
	logger              zerolog.Logger
}

func NewPricingService(
	priceRepo repository.MerchantPriceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notificationService NotificationService,
	logger zerolog.Logger,
) PricingService {
	return &pricingService{
		priceRepo:           priceRepo,
		auditRepo:           auditRepo,
		txManager:           txManager,
		notificationService: notificationService,
		logger:              logger,
	}
}

// --- Implementation ---

func (s *pricingService) GetMerchantPrice(ctx context.Context, priceID string) (*MerchantPriceResponse, error) {
	id, err := uuid.Parse(priceID)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant price id")
	}

	price, err := s.priceRepo.FindByIDWithGroups(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantPriceNotFound
		}
		return nil, fmt.Errorf("failed to fetch merchant price: %w", err)
	}

	resp := MerchantPriceResponse{
		ID:                         price.ID.String(),
		Name:                       price.Name,
		TableType:                  price.TableType,
		AnticipationType:           price.AnticipationType,
		CompulsoryAnticipationDays: price.CompulsoryAnticipationDays,
		EventualAnticipationFee:    price.EventualAnticipationFee.StringFixed(4),
		Pix:                        toPixResponse(price.Pix),
		BrandGroups:                toBrandGroupResponses(price.BrandGroups, price.AnticipationType),
		CreatedAt:                  price.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:                  price.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if price.SourceFeeTableID != nil {
		source := price.SourceFeeTableID.String()
		resp.SourceFeeTableID = &source
	}
	return &resp, nil
}

func (s *pricingService) UpdateProductTypeField(ctx context.Context, priceID string, req UpdateProductFieldRequest, userID string) error {
	id, err := uuid.Parse(priceID)
	if err != nil {
		return fmt.Errorf("invalid merchant price id")
	}

	field, ok := pricing.ParseField(req.Field)
	if !ok {
		return ErrUnknownField
	}
	if field.AnticipationField() && !pricing.AnticipationApplicable(req.Kind) {
		return ErrFieldNotEditable
	}

	value, parsed := parse.Decimal(req.Value)
	if !parsed {
		s.logger.Warn().Str("field", req.Field).Str("raw", req.Value).Msg("unparseable pricing value, defaulting to 0")
	}

	if _, err := s.priceRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMerchantPriceNotFound
		}
		return fmt.Errorf("failed to fetch merchant price: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		row, err := s.resolveTargetRow(txCtx, id, req)
		if err != nil {
			return err
		}
		applyField(row, field, value)
		return s.priceRepo.UpdateProductType(txCtx, row)
	})
	if err != nil {
		return err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdatePricing, priceID, req.GroupSlug, req)
	s.notificationService.Notify(ctx, model.NotificationPricingChanged, nil,
		"Precificação atualizada",
		fmt.Sprintf("Campo %s atualizado para o grupo %s", req.Field, req.GroupSlug))
	return nil
}

// resolveTargetRow finds (or creates, by splitting a bucket) the product-type
// row an edit should land on. With an installment the edit targets that
// specific count: an existing [n,n] row wins; a wider covering bucket is
// expanded into per-installment rows first so the override stays local to
// one count. Without an installment the edit targets the bucket row itself.
func (s *pricingService) resolveTargetRow(ctx context.Context, priceID uuid.UUID, req UpdateProductFieldRequest) (*model.ProductType, error) {
	if req.Installment != nil && pricing.SupportsInstallments(req.Kind) {
		n := *req.Installment
		row, err := s.priceRepo.FindProductTypeCovering(ctx, priceID, req.GroupSlug, req.Kind, n)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductRowNotFound
			}
			return nil, fmt.Errorf("failed to locate product row: %w", err)
		}
		if row.InstallmentStart == n && row.InstallmentEnd == n {
			return row, nil
		}

		// Split the bucket into per-installment rows and pick the target.
		var target *model.ProductType
		for _, expanded := range pricing.ExpandInstallments(*row) {
			created := expanded
			created.ID = uuid.Nil
			if err := s.priceRepo.CreateProductType(ctx, &created); err != nil {
				return nil, fmt.Errorf("failed to split installment bucket: %w", err)
			}
			if created.InstallmentStart == n {
				target = &created
			}
		}
		if err := s.priceRepo.DeleteProductType(ctx, row.ID); err != nil {
			return nil, fmt.Errorf("failed to remove split bucket row: %w", err)
		}
		if target == nil {
			return nil, ErrProductRowNotFound
		}
		return target, nil
	}

	start, end := req.InstallmentStart, req.InstallmentEnd
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = start
	}
	row, err := s.priceRepo.FindProductType(ctx, priceID, req.GroupSlug, req.Kind, start, end)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductRowNotFound
		}
		return nil, fmt.Errorf("failed to locate product row: %w", err)
	}
	return row, nil
}

func applyField(row *model.ProductType, field pricing.Field, value decimal.Decimal) {
	switch field {
	case pricing.FieldCardMdr:
		row.CardMdr = value
	case pricing.FieldNonCardMdr:
		row.NonCardMdr = value
	case pricing.FieldCardFee:
		row.CardFee = value
	case pricing.FieldNonCardFee:
		row.NonCardFee = value
	case pricing.FieldCardAnticipationRate:
		row.CardAnticipationRate = value
	case pricing.FieldNonCardAnticipationRate:
		row.NonCardAnticipationRate = value
	}
}

func (s *pricingService) UpdatePixConfig(ctx context.Context, priceID string, fields PixFieldUpdate, userID string) error {
	id, err := uuid.Parse(priceID)
	if err != nil {
		return fmt.Errorf("invalid merchant price id")
	}

	price, err := s.priceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMerchantPriceNotFound
		}
		return fmt.Errorf("failed to fetch merchant price: %w", err)
	}

	applyPixField := func(target *decimal.Decimal, raw *string, name string) {
		if raw == nil {
			return
		}
		value, ok := parse.Decimal(*raw)
		if !ok {
			s.logger.Warn().Str("field", name).Str("raw", *raw).Msg("unparseable pix value, defaulting to 0")
		}
		*target = value
	}

	applyPixField(&price.Pix.CardPixMdr, fields.CardPixMdr, "card_pix_mdr")
	applyPixField(&price.Pix.NonCardPixMdr, fields.NonCardPixMdr, "non_card_pix_mdr")
	applyPixField(&price.Pix.CardPixCeilingFee, fields.CardPixCeilingFee, "card_pix_ceiling_fee")
	applyPixField(&price.Pix.NonCardPixCeilingFee, fields.NonCardPixCeilingFee, "non_card_pix_ceiling_fee")
	applyPixField(&price.Pix.CardPixMinimumFee, fields.CardPixMinimumFee, "card_pix_minimum_fee")
	applyPixField(&price.Pix.NonCardPixMinimumFee, fields.NonCardPixMinimumFee, "non_card_pix_minimum_fee")

	if fields.EventualAnticipationFee != nil {
		if price.AnticipationType == model.AnticipationEventual {
			applyPixField(&price.EventualAnticipationFee, fields.EventualAnticipationFee, "eventual_anticipation_fee")
		} else {
			// Accepted but inert on non-EVENTUAL tables.
			s.logger.Debug().Str("anticipation_type", price.AnticipationType).
				Msg("eventual anticipation fee ignored for non-eventual table")
		}
	}

	if err := s.priceRepo.Update(ctx, price); err != nil {
		return fmt.Errorf("failed to update pix config: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdatePixConfig, priceID, price.Name, fields)
	s.notificationService.Notify(ctx, model.NotificationPricingChanged, nil,
		"Configuração PIX atualizada",
		fmt.Sprintf("Tarifas PIX da tabela %s foram atualizadas", price.Name))
	return nil
}
