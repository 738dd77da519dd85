package service

import (
	"context"
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

type CloneResult struct {
	MerchantPriceID string `json:"merchant_price_id"`
	BrandGroups     int    `json:"brand_groups"`
	ProductTypes    int    `json:"product_types"`
}

// --- Interface ---

// FeeCloneService materializes a fee table onto a merchant: a deep copy of
// the whole aggregate under fresh identities, linked to the merchant as its
// one and only price.
type FeeCloneService interface {
	CloneToMerchant(ctx context.Context, feeTableID, merchantID string, userID string) (CloneResult, error)
}

type feeCloneService struct {
	feeRepo             repository.FeeTableRepository
	merchantRepo        repository.MerchantRepository
	priceRepo           repository.MerchantPriceRepository
	auditRepo           repository.AuditRepository
	txManager           repository.TransactionManager
	notificationService NotificationService
	logger              zerolog.Logger
}

func NewFeeCloneService(
	feeRepo repository.FeeTableRepository,
	merchantRepo repository.MerchantRepository,
	priceRepo repository.MerchantPriceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notificationService NotificationService,
	logger zerolog.Logger,
) FeeCloneService {
	return &feeCloneService{
		feeRepo:             feeRepo,
		merchantRepo:        merchantRepo,
		priceRepo:           priceRepo,
		auditRepo:           auditRepo,
		txManager:           txManager,
		notificationService: notificationService,
		logger:              logger,
	}
}

// --- Implementation ---

// CloneToMerchant copies a fee table into a new MerchantPrice for one
// merchant. All writes happen inside a single transaction: a failure at any
// step, or the context being canceled between steps, rolls back the whole
// clone and leaves no orphaned rows.
//
// The "merchant has no price yet" pre-check gives a friendly error on the
// common path; the authoritative guard is the conditional link write
// (SetMerchantPriceID only lands while merchant_price_id is NULL), so a
// concurrent double clone on the same merchant loses the race and maps to
// the same ErrPriceAlreadyAssigned. The unique index on merchant_price_id
// separately keeps one price from being shared by two merchants.
func (s *feeCloneService) CloneToMerchant(ctx context.Context, feeTableID, merchantID string, userID string) (CloneResult, error) {
	feeID, err := uuid.Parse(feeTableID)
	if err != nil {
		return CloneResult{}, fmt.Errorf("invalid fee table id")
	}
	merchID, err := uuid.Parse(merchantID)
	if err != nil {
		return CloneResult{}, fmt.Errorf("invalid merchant id")
	}

	source, err := s.feeRepo.FindByIDWithGroups(ctx, feeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CloneResult{}, ErrFeeTableNotFound
		}
		return CloneResult{}, fmt.Errorf("failed to fetch fee table: %w", err)
	}

	merchant, err := s.merchantRepo.FindByID(ctx, merchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CloneResult{}, ErrMerchantNotFound
		}
		return CloneResult{}, fmt.Errorf("failed to fetch merchant: %w", err)
	}
	if merchant.MerchantPriceID != nil {
		return CloneResult{}, ErrPriceAlreadyAssigned
	}

	var result CloneResult
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		price := model.MerchantPrice{
			Name:                       source.Name,
			TableType:                  source.TableType,
			AnticipationType:           source.AnticipationType,
			CompulsoryAnticipationDays: source.CompulsoryAnticipationDays,
			EventualAnticipationFee:    source.EventualAnticipationFee,
			Pix:                        source.Pix,
			SourceFeeTableID:           &source.ID,
		}
		if err := s.priceRepo.Create(txCtx, &price); err != nil {
			return fmt.Errorf("failed to create merchant price: %w", err)
		}

		now := time.Now().UnixMilli()
		for i, sourceGroup := range source.BrandGroups {
			if err := txCtx.Err(); err != nil {
				return err
			}

			group := model.BrandGroup{
				MerchantPriceID: &price.ID,
				Brand:           sourceGroup.Brand,
				Slug:            brandSlug(sourceGroup.Brand, now, i),
				Position:        sourceGroup.Position,
			}
			if err := s.priceRepo.CreateBrandGroup(txCtx, &group); err != nil {
				return fmt.Errorf("failed to clone brand group %s: %w", sourceGroup.Brand, err)
			}
			result.BrandGroups++

			for _, sourceRow := range sourceGroup.ProductTypes {
				row := model.ProductType{
					BrandGroupID:            group.ID,
					Kind:                    sourceRow.Kind,
					InstallmentStart:        sourceRow.InstallmentStart,
					InstallmentEnd:          sourceRow.InstallmentEnd,
					CardMdr:                 sourceRow.CardMdr,
					NonCardMdr:              sourceRow.NonCardMdr,
					CardFee:                 sourceRow.CardFee,
					NonCardFee:              sourceRow.NonCardFee,
					CardAnticipationRate:    sourceRow.CardAnticipationRate,
					NonCardAnticipationRate: sourceRow.NonCardAnticipationRate,
				}
				if err := s.priceRepo.CreateProductType(txCtx, &row); err != nil {
					return fmt.Errorf("failed to clone product type %s for %s: %w", sourceRow.Kind, sourceGroup.Brand, err)
				}
				result.ProductTypes++
			}
		}

		if err := s.merchantRepo.SetMerchantPriceID(txCtx, merchID, price.ID); err != nil {
			if errors.Is(err, repository.ErrMerchantAlreadyLinked) || errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPriceAlreadyAssigned
			}
			return fmt.Errorf("failed to link merchant to price: %w", err)
		}

		result.MerchantPriceID = price.ID.String()
		return nil
	})
	if err != nil {
		return CloneResult{}, err
	}

	s.logger.Info().
		Str("fee_table_id", feeTableID).
		Str("merchant_id", merchantID).
		Str("merchant_price_id", result.MerchantPriceID).
		Int("brand_groups", result.BrandGroups).
		Int("product_types", result.ProductTypes).
		Msg("fee table cloned to merchant")

	writeAudit(ctx, s.auditRepo, userID, model.ActionCloneFeeTable, result.MerchantPriceID, source.Name, map[string]string{
		"fee_table_id": feeTableID,
		"merchant_id":  merchantID,
	})

	s.notificationService.Notify(ctx, model.NotificationFeeAssigned, &merchID,
		"Tabela de taxas atribuída",
		fmt.Sprintf("A tabela %q foi atribuída ao estabelecimento %s.", source.Name, merchant.LegalName))

	return result, nil
}
