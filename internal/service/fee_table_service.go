package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

// Rate fields arrive as strings because imported tables carry mixed locale
// formats ("2,50", "2.50", "2,50 %"); everything is normalized through
// pkg/parse before persistence.
type ProductTypePayload struct {
	Label                   string `json:"label"` // optional descriptive label; overrides kind/range when set
	Kind                    string `json:"kind"`
	InstallmentStart        int    `json:"installment_start"`
	InstallmentEnd          int    `json:"installment_end"`
	CardMdr                 string `json:"card_mdr"`
	NonCardMdr              string `json:"non_card_mdr"`
	CardFee                 string `json:"card_fee"`
	NonCardFee              string `json:"non_card_fee"`
	CardAnticipationRate    string `json:"card_anticipation_rate"`
	NonCardAnticipationRate string `json:"non_card_anticipation_rate"`
}

type BrandGroupPayload struct {
	Brand        string               `json:"brand" binding:"required"`
	Position     int                  `json:"position"`
	ProductTypes []ProductTypePayload `json:"product_types"`
}

type PixPayload struct {
	CardPixMdr           string `json:"card_pix_mdr"`
	NonCardPixMdr        string `json:"non_card_pix_mdr"`
	CardPixCeilingFee    string `json:"card_pix_ceiling_fee"`
	NonCardPixCeilingFee string `json:"non_card_pix_ceiling_fee"`
	CardPixMinimumFee    string `json:"card_pix_minimum_fee"`
	NonCardPixMinimumFee string `json:"non_card_pix_minimum_fee"`
}

type CreateFeeTableRequest struct {
	Name                       string              `json:"name" binding:"required"`
	TableType                  string              `json:"table_type"`
	AnticipationType           string              `json:"anticipation_type" binding:"required,oneof=NOANTICIPATION EVENTUAL COMPULSORY"`
	CompulsoryAnticipationDays int                 `json:"compulsory_anticipation_days"`
	EventualAnticipationFee    string              `json:"eventual_anticipation_fee"`
	Pix                        PixPayload          `json:"pix"`
	BrandGroups                []BrandGroupPayload `json:"brand_groups"`
}

type UpdateFeeTableRequest struct {
	Name                       *string              `json:"name"`
	TableType                  *string              `json:"table_type"`
	AnticipationType           *string              `json:"anticipation_type"`
	CompulsoryAnticipationDays *int                 `json:"compulsory_anticipation_days"`
	EventualAnticipationFee    *string              `json:"eventual_anticipation_fee"`
	Pix                        *PixPayload          `json:"pix"`
	BrandGroups                *[]BrandGroupPayload `json:"brand_groups"` // nil = untouched, [] = clear all
}

type ProductTypeResponse struct {
	ID                      string `json:"id"`
	Label                   string `json:"label"`
	Kind                    string `json:"kind"`
	InstallmentStart        int    `json:"installment_start"`
	InstallmentEnd          int    `json:"installment_end"`
	CardMdr                 string `json:"card_mdr"`
	NonCardMdr              string `json:"non_card_mdr"`
	CardFee                 string `json:"card_fee"`
	NonCardFee              string `json:"non_card_fee"`
	CardAnticipationRate    string `json:"card_anticipation_rate"`
	NonCardAnticipationRate string `json:"non_card_anticipation_rate"`
	CardEffectiveRate       string `json:"card_effective_rate"`     // read-only composite
	NonCardEffectiveRate    string `json:"non_card_effective_rate"` // read-only composite
}

type BrandGroupResponse struct {
	ID           string                `json:"id"`
	Slug         string                `json:"slug"`
	Brand        string                `json:"brand"`
	Position     int                   `json:"position"`
	ProductTypes []ProductTypeResponse `json:"product_types"`
}

type PixResponse struct {
	CardPixMdr           string `json:"card_pix_mdr"`
	NonCardPixMdr        string `json:"non_card_pix_mdr"`
	CardPixCeilingFee    string `json:"card_pix_ceiling_fee"`
	NonCardPixCeilingFee string `json:"non_card_pix_ceiling_fee"`
	CardPixMinimumFee    string `json:"card_pix_minimum_fee"`
	NonCardPixMinimumFee string `json:"non_card_pix_minimum_fee"`
}

type FeeTableResponse struct {
	ID                         string               `json:"id"`
	Name                       string               `json:"name"`
	Active                     bool                 `json:"active"`
	TableType                  string               `json:"table_type"`
	AnticipationType           string               `json:"anticipation_type"`
	CompulsoryAnticipationDays int                  `json:"compulsory_anticipation_days"`
	EventualAnticipationFee    string               `json:"eventual_anticipation_fee"`
	Pix                        PixResponse          `json:"pix"`
	BrandGroups                []BrandGroupResponse `json:"brand_groups,omitempty"`
	Warnings                   []string             `json:"warnings,omitempty"` // degraded numeric parses
	CreatedAt                  string               `json:"created_at"`
	UpdatedAt                  string               `json:"updated_at"`
}

// --- Interface ---

type FeeTableService interface {
	CreateFeeTable(ctx context.Context, req CreateFeeTableRequest, userID string) (FeeTableResponse, error)
	UpdateFeeTable(ctx context.Context, id string, req UpdateFeeTableRequest, userID string) (FeeTableResponse, error)
	DeleteFeeTable(ctx context.Context, id string, userID string) error
	GetFeeTable(ctx context.Context, id string) (FeeTableResponse, error)
	ListFeeTables(ctx context.Context, activeOnly bool, search string, page, limit int) ([]FeeTableResponse, int64, error)
	SetActive(ctx context.Context, id string, active bool, userID string) (FeeTableResponse, error)
}

type feeTableService struct {
	feeRepo   repository.FeeTableRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	logger    zerolog.Logger
}

func NewFeeTableService(
	feeRepo repository.FeeTableRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	logger zerolog.Logger,
) FeeTableService {
	return &feeTableService{feeRepo: feeRepo, auditRepo: auditRepo, txManager: txManager, logger: logger}
}

// --- Implementation ---

func (s *feeTableService) CreateFeeTable(ctx context.Context, req CreateFeeTableRequest, userID string) (FeeTableResponse, error) {
	var warnings []string

	table := model.FeeTable{
		Name:                       req.Name,
		Active:                     true,
		TableType:                  req.TableType,
		AnticipationType:           req.AnticipationType,
		CompulsoryAnticipationDays: req.CompulsoryAnticipationDays,
		EventualAnticipationFee:    s.parseRate(req.EventualAnticipationFee, "eventual_anticipation_fee", &warnings),
		Pix:                        s.parsePix(req.Pix, &warnings),
	}

	groups, groupWarnings := s.buildGroups(req.BrandGroups)
	warnings = append(warnings, groupWarnings...)
	table.BrandGroups = groups

	if errs := pricing.ValidateTable(table); len(errs) > 0 {
		return FeeTableResponse{}, fmt.Errorf("invalid fee table: %s", joinFieldErrors(errs))
	}

	if err := s.feeRepo.Create(ctx, &table); err != nil {
		return FeeTableResponse{}, fmt.Errorf("failed to create fee table: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateFeeTable, table.ID.String(), table.Name, req)

	resp := toFeeTableResponse(table, true)
	resp.Warnings = warnings
	return resp, nil
}

func (s *feeTableService) UpdateFeeTable(ctx context.Context, id string, req UpdateFeeTableRequest, userID string) (FeeTableResponse, error) {
	tableID, err := uuid.Parse(id)
	if err != nil {
		return FeeTableResponse{}, fmt.Errorf("invalid fee table id")
	}

	table, err := s.feeRepo.FindByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FeeTableResponse{}, ErrFeeTableNotFound
		}
		return FeeTableResponse{}, fmt.Errorf("failed to fetch fee table: %w", err)
	}

	var warnings []string

	if req.Name != nil {
		table.Name = *req.Name
	}
	if req.TableType != nil {
		table.TableType = *req.TableType
	}
	if req.AnticipationType != nil {
		// Switching type leaves the now-inapplicable fields untouched; they
		// become inert until the type switches back.
		table.AnticipationType = *req.AnticipationType
	}
	if req.CompulsoryAnticipationDays != nil {
		table.CompulsoryAnticipationDays = *req.CompulsoryAnticipationDays
	}
	if req.EventualAnticipationFee != nil {
		table.EventualAnticipationFee = s.parseRate(*req.EventualAnticipationFee, "eventual_anticipation_fee", &warnings)
	}
	if req.Pix != nil {
		table.Pix = s.parsePix(*req.Pix, &warnings)
	}

	var groups []model.BrandGroup
	if req.BrandGroups != nil {
		var groupWarnings []string
		groups, groupWarnings = s.buildGroups(*req.BrandGroups)
		warnings = append(warnings, groupWarnings...)
	}

	check := *table
	if req.BrandGroups != nil {
		check.BrandGroups = groups
	}
	if errs := pricing.ValidateTable(check); len(errs) > 0 {
		return FeeTableResponse{}, fmt.Errorf("invalid fee table: %s", joinFieldErrors(errs))
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.feeRepo.Update(txCtx, table); err != nil {
			return fmt.Errorf("failed to update fee table: %w", err)
		}
		if req.BrandGroups != nil {
			if err := s.feeRepo.ReplaceGroups(txCtx, tableID, groups); err != nil {
				return fmt.Errorf("failed to replace brand groups: %w", err)
			}
			table.BrandGroups = groups
		}
		return nil
	})
	if err != nil {
		return FeeTableResponse{}, err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateFeeTable, table.ID.String(), table.Name, req)

	resp := toFeeTableResponse(*table, req.BrandGroups != nil)
	resp.Warnings = warnings
	return resp, nil
}

func (s *feeTableService) DeleteFeeTable(ctx context.Context, id string, userID string) error {
	tableID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid fee table id")
	}

	table, err := s.feeRepo.FindByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeeTableNotFound
		}
		return fmt.Errorf("failed to fetch fee table: %w", err)
	}

	if err := s.feeRepo.Delete(ctx, tableID); err != nil {
		return fmt.Errorf("failed to delete fee table: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteFeeTable, id, table.Name, map[string]string{"deleted_id": id})
	return nil
}

func (s *feeTableService) GetFeeTable(ctx context.Context, id string) (FeeTableResponse, error) {
	tableID, err := uuid.Parse(id)
	if err != nil {
		return FeeTableResponse{}, fmt.Errorf("invalid fee table id")
	}

	table, err := s.feeRepo.FindByIDWithGroups(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FeeTableResponse{}, ErrFeeTableNotFound
		}
		return FeeTableResponse{}, fmt.Errorf("failed to fetch fee table: %w", err)
	}

	return toFeeTableResponse(*table, true), nil
}

func (s *feeTableService) ListFeeTables(ctx context.Context, activeOnly bool, search string, page, limit int) ([]FeeTableResponse, int64, error) {
	tables, total, err := s.feeRepo.List(ctx, activeOnly, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch fee tables: %w", err)
	}

	res := make([]FeeTableResponse, 0, len(tables))
	for _, t := range tables {
		res = append(res, toFeeTableResponse(t, false))
	}
	return res, total, nil
}

func (s *feeTableService) SetActive(ctx context.Context, id string, active bool, userID string) (FeeTableResponse, error) {
	tableID, err := uuid.Parse(id)
	if err != nil {
		return FeeTableResponse{}, fmt.Errorf("invalid fee table id")
	}

	table, err := s.feeRepo.FindByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FeeTableResponse{}, ErrFeeTableNotFound
		}
		return FeeTableResponse{}, fmt.Errorf("failed to fetch fee table: %w", err)
	}

	if err := s.feeRepo.SetActive(ctx, tableID, active); err != nil {
		return FeeTableResponse{}, fmt.Errorf("failed to update fee table: %w", err)
	}
	table.Active = active

	writeAudit(ctx, s.auditRepo, userID, model.ActionUpdateFeeTable, id, table.Name, map[string]bool{"active": active})
	return toFeeTableResponse(*table, false), nil
}

// --- Helpers ---

// parseRate normalizes a locale-tolerant numeric string, collecting a warning
// instead of failing when the input cannot be understood.
func (s *feeTableService) parseRate(raw, field string, warnings *[]string) decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero
	}
	d, ok := parse.Decimal(raw)
	if !ok {
		s.logger.Warn().Str("field", field).Str("raw", raw).Msg("unparseable rate value, defaulting to 0")
		*warnings = append(*warnings, fmt.Sprintf("%s: could not parse %q, defaulted to 0", field, raw))
	}
	return d
}

func (s *feeTableService) parsePix(p PixPayload, warnings *[]string) model.PixFeeConfig {
	return model.PixFeeConfig{
		CardPixMdr:           s.parseRate(p.CardPixMdr, "pix.card_pix_mdr", warnings),
		NonCardPixMdr:        s.parseRate(p.NonCardPixMdr, "pix.non_card_pix_mdr", warnings),
		CardPixCeilingFee:    s.parseRate(p.CardPixCeilingFee, "pix.card_pix_ceiling_fee", warnings),
		NonCardPixCeilingFee: s.parseRate(p.NonCardPixCeilingFee, "pix.non_card_pix_ceiling_fee", warnings),
		CardPixMinimumFee:    s.parseRate(p.CardPixMinimumFee, "pix.card_pix_minimum_fee", warnings),
		NonCardPixMinimumFee: s.parseRate(p.NonCardPixMinimumFee, "pix.non_card_pix_minimum_fee", warnings),
	}
}

// buildGroups converts incoming payloads into the model tree. Rows with a
// descriptive label are remapped through the product-type mapper; rows whose
// label is unrecognized are skipped with a warning.
func (s *feeTableService) buildGroups(payloads []BrandGroupPayload) ([]model.BrandGroup, []string) {
	var warnings []string
	now := time.Now().UnixMilli()

	groups := make([]model.BrandGroup, 0, len(payloads))
	for i, gp := range payloads {
		group := model.BrandGroup{
			Brand:    strings.ToUpper(strings.TrimSpace(gp.Brand)),
			Slug:     brandSlug(gp.Brand, now, i),
			Position: gp.Position,
		}
		if group.Position == 0 {
			group.Position = i
		}

		for _, pp := range gp.ProductTypes {
			kind, start, end := pp.Kind, pp.InstallmentStart, pp.InstallmentEnd
			if pp.Label != "" {
				var ok bool
				kind, start, end, ok = pricing.ParseLabel(pp.Label)
				if !ok {
					s.logger.Warn().Str("label", pp.Label).Msg("unmapped product type label, row skipped")
					warnings = append(warnings, fmt.Sprintf("brand %s: unmapped label %q, row skipped", gp.Brand, pp.Label))
					continue
				}
			}
			if start == 0 {
				start = 1
			}
			if end == 0 {
				end = start
			}

			group.ProductTypes = append(group.ProductTypes, model.ProductType{
				Kind:                    kind,
				InstallmentStart:        start,
				InstallmentEnd:          end,
				CardMdr:                 s.parseRate(pp.CardMdr, "card_mdr", &warnings),
				NonCardMdr:              s.parseRate(pp.NonCardMdr, "non_card_mdr", &warnings),
				CardFee:                 s.parseRate(pp.CardFee, "card_fee", &warnings),
				NonCardFee:              s.parseRate(pp.NonCardFee, "non_card_fee", &warnings),
				CardAnticipationRate:    s.parseRate(pp.CardAnticipationRate, "card_anticipation_rate", &warnings),
				NonCardAnticipationRate: s.parseRate(pp.NonCardAnticipationRate, "non_card_anticipation_rate", &warnings),
			})
		}

		groups = append(groups, group)
	}

	return groups, warnings
}

func brandSlug(brand string, timestamp int64, index int) string {
	cleaned := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(brand), " ", "-"))
	return fmt.Sprintf("%s-%d-%d", cleaned, timestamp, index)
}

func joinFieldErrors(errs []pricing.FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// --- Response mappers ---

func toPixResponse(p model.PixFeeConfig) PixResponse {
	return PixResponse{
		CardPixMdr:           p.CardPixMdr.StringFixed(4),
		NonCardPixMdr:        p.NonCardPixMdr.StringFixed(4),
		CardPixCeilingFee:    p.CardPixCeilingFee.StringFixed(4),
		NonCardPixCeilingFee: p.NonCardPixCeilingFee.StringFixed(4),
		CardPixMinimumFee:    p.CardPixMinimumFee.StringFixed(4),
		NonCardPixMinimumFee: p.NonCardPixMinimumFee.StringFixed(4),
	}
}

func toProductTypeResponse(row model.ProductType, anticipationType string) ProductTypeResponse {
	return ProductTypeResponse{
		ID:                      row.ID.String(),
		Label:                   pricing.Label(row.Kind, row.InstallmentStart, row.InstallmentEnd),
		Kind:                    row.Kind,
		InstallmentStart:        row.InstallmentStart,
		InstallmentEnd:          row.InstallmentEnd,
		CardMdr:                 row.CardMdr.StringFixed(4),
		NonCardMdr:              row.NonCardMdr.StringFixed(4),
		CardFee:                 row.CardFee.StringFixed(4),
		NonCardFee:              row.NonCardFee.StringFixed(4),
		CardAnticipationRate:    row.CardAnticipationRate.StringFixed(4),
		NonCardAnticipationRate: row.NonCardAnticipationRate.StringFixed(4),
		CardEffectiveRate:       pricing.EffectiveRate(row, anticipationType, pricing.RateContext{CardPresent: true}).StringFixed(4),
		NonCardEffectiveRate:    pricing.EffectiveRate(row, anticipationType, pricing.RateContext{CardPresent: false}).StringFixed(4),
	}
}

func toBrandGroupResponses(groups []model.BrandGroup, anticipationType string) []BrandGroupResponse {
	res := make([]BrandGroupResponse, 0, len(groups))
	for _, g := range groups {
		gr := BrandGroupResponse{
			ID:       g.ID.String(),
			Slug:     g.Slug,
			Brand:    g.Brand,
			Position: g.Position,
		}
		for _, row := range g.ProductTypes {
			gr.ProductTypes = append(gr.ProductTypes, toProductTypeResponse(row, anticipationType))
		}
		res = append(res, gr)
	}
	return res
}

func toFeeTableResponse(t model.FeeTable, withGroups bool) FeeTableResponse {
	resp := FeeTableResponse{
		ID:                         t.ID.String(),
		Name:                       t.Name,
		Active:                     t.Active,
		TableType:                  t.TableType,
		AnticipationType:           t.AnticipationType,
		CompulsoryAnticipationDays: t.CompulsoryAnticipationDays,
		EventualAnticipationFee:    t.EventualAnticipationFee.StringFixed(4),
		Pix:                        toPixResponse(t.Pix),
		CreatedAt:                  t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                  t.UpdatedAt.Format(time.RFC3339),
	}
	if withGroups {
		resp.BrandGroups = toBrandGroupResponses(t.BrandGroups, t.AnticipationType)
	}
	return resp
}
