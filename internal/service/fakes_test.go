package service

import (
	"context"
	"errors"
	"sort"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes so service tests run without a database.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

type fakeNotifier struct {
	kinds []string
}

func (f *fakeNotifier) Create(ctx context.Context, req CreateNotificationRequest) (NotificationResponse, error) {
	return NotificationResponse{}, nil
}

func (f *fakeNotifier) List(ctx context.Context, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifier) MarkRead(ctx context.Context, id string) error { return nil }

func (f *fakeNotifier) MarkAllRead(ctx context.Context) error { return nil }

func (f *fakeNotifier) CountUnread(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeNotifier) Notify(ctx context.Context, kind string, merchantID *uuid.UUID, title, message string) {
	f.kinds = append(f.kinds, kind)
}

type fakeFeeTableRepo struct {
	tables map[uuid.UUID]*model.FeeTable
}

func newFakeFeeTableRepo() *fakeFeeTableRepo {
	return &fakeFeeTableRepo{tables: map[uuid.UUID]*model.FeeTable{}}
}

func (f *fakeFeeTableRepo) Create(ctx context.Context, table *model.FeeTable) error {
	if table.ID == uuid.Nil {
		table.ID = uuid.New()
	}
	for i := range table.BrandGroups {
		group := &table.BrandGroups[i]
		if group.ID == uuid.Nil {
			group.ID = uuid.New()
		}
		group.FeeTableID = &table.ID
		for j := range group.ProductTypes {
			row := &group.ProductTypes[j]
			if row.ID == uuid.Nil {
				row.ID = uuid.New()
			}
			row.BrandGroupID = group.ID
		}
	}
	stored := *table
	f.tables[table.ID] = &stored
	return nil
}

func (f *fakeFeeTableRepo) Update(ctx context.Context, table *model.FeeTable) error {
	if _, ok := f.tables[table.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *table
	stored.BrandGroups = f.tables[table.ID].BrandGroups
	f.tables[table.ID] = &stored
	return nil
}

func (f *fakeFeeTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.tables, id)
	return nil
}

func (f *fakeFeeTableRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FeeTable, error) {
	table, ok := f.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *table
	out.BrandGroups = nil
	return &out, nil
}

func (f *fakeFeeTableRepo) FindByIDWithGroups(ctx context.Context, id uuid.UUID) (*model.FeeTable, error) {
	table, ok := f.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *table
	return &out, nil
}

func (f *fakeFeeTableRepo) List(ctx context.Context, activeOnly bool, search string, page, limit int) ([]model.FeeTable, int64, error) {
	var tables []model.FeeTable
	for _, table := range f.tables {
		if activeOnly && !table.Active {
			continue
		}
		tables = append(tables, *table)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, int64(len(tables)), nil
}

func (f *fakeFeeTableRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	table, ok := f.tables[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	table.Active = active
	return nil
}

func (f *fakeFeeTableRepo) ReplaceGroups(ctx context.Context, tableID uuid.UUID, groups []model.BrandGroup) error {
	table, ok := f.tables[tableID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range groups {
		if groups[i].ID == uuid.Nil {
			groups[i].ID = uuid.New()
		}
		groups[i].FeeTableID = &tableID
	}
	table.BrandGroups = groups
	return nil
}

type fakeMerchantRepo struct {
	merchants       map[uuid.UUID]*model.Merchant
	duplicateOnLink bool
	unlinkedOnFind  bool // FindByID hides an existing link, as a racing reader would see it
}

func newFakeMerchantRepo() *fakeMerchantRepo {
	return &fakeMerchantRepo{merchants: map[uuid.UUID]*model.Merchant{}}
}

func (f *fakeMerchantRepo) Create(ctx context.Context, merchant *model.Merchant) error {
	if merchant.ID == uuid.Nil {
		merchant.ID = uuid.New()
	}
	stored := *merchant
	f.merchants[merchant.ID] = &stored
	return nil
}

func (f *fakeMerchantRepo) Update(ctx context.Context, merchant *model.Merchant) error {
	if _, ok := f.merchants[merchant.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *merchant
	f.merchants[merchant.ID] = &stored
	return nil
}

func (f *fakeMerchantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.merchants, id)
	return nil
}

func (f *fakeMerchantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Merchant, error) {
	merchant, ok := f.merchants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *merchant
	if f.unlinkedOnFind {
		out.MerchantPriceID = nil
	}
	return &out, nil
}

func (f *fakeMerchantRepo) FindByDocument(ctx context.Context, document string) (*model.Merchant, error) {
	for _, merchant := range f.merchants {
		if merchant.Document == document {
			out := *merchant
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMerchantRepo) List(ctx context.Context, status, search string, page, limit int) ([]model.Merchant, int64, error) {
	var merchants []model.Merchant
	for _, merchant := range f.merchants {
		if status != "" && merchant.Status != status {
			continue
		}
		merchants = append(merchants, *merchant)
	}
	return merchants, int64(len(merchants)), nil
}

// SetMerchantPriceID mirrors the real repository's compare-and-swap: the
// link only lands while the stored merchant is still unlinked.
func (f *fakeMerchantRepo) SetMerchantPriceID(ctx context.Context, merchantID, priceID uuid.UUID) error {
	if f.duplicateOnLink {
		return gorm.ErrDuplicatedKey
	}
	merchant, ok := f.merchants[merchantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if merchant.MerchantPriceID != nil {
		return repository.ErrMerchantAlreadyLinked
	}
	id := priceID
	merchant.MerchantPriceID = &id
	return nil
}

type fakePriceRepo struct {
	prices map[uuid.UUID]*model.MerchantPrice
	groups []*model.BrandGroup
	rows   []*model.ProductType

	failRowInsertAfter int // -1 disables the injected failure
	rowInserts         int
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{prices: map[uuid.UUID]*model.MerchantPrice{}, failRowInsertAfter: -1}
}

func (f *fakePriceRepo) Create(ctx context.Context, price *model.MerchantPrice) error {
	if price.ID == uuid.Nil {
		price.ID = uuid.New()
	}
	stored := *price
	stored.BrandGroups = nil
	f.prices[price.ID] = &stored
	return nil
}

func (f *fakePriceRepo) Update(ctx context.Context, price *model.MerchantPrice) error {
	if _, ok := f.prices[price.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *price
	stored.BrandGroups = nil
	f.prices[price.ID] = &stored
	return nil
}

func (f *fakePriceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MerchantPrice, error) {
	price, ok := f.prices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *price
	return &out, nil
}

func (f *fakePriceRepo) FindByIDWithGroups(ctx context.Context, id uuid.UUID) (*model.MerchantPrice, error) {
	price, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, group := range f.groups {
		if group.MerchantPriceID == nil || *group.MerchantPriceID != id {
			continue
		}
		assembled := *group
		for _, row := range f.rows {
			if row.BrandGroupID == group.ID {
				assembled.ProductTypes = append(assembled.ProductTypes, *row)
			}
		}
		price.BrandGroups = append(price.BrandGroups, assembled)
	}
	return price, nil
}

func (f *fakePriceRepo) CreateBrandGroup(ctx context.Context, group *model.BrandGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	stored := *group
	stored.ProductTypes = nil
	f.groups = append(f.groups, &stored)
	return nil
}

func (f *fakePriceRepo) CreateProductType(ctx context.Context, row *model.ProductType) error {
	if f.failRowInsertAfter >= 0 && f.rowInserts >= f.failRowInsertAfter {
		return errors.New("insert failed")
	}
	f.rowInserts++
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	stored := *row
	f.rows = append(f.rows, &stored)
	return nil
}

func (f *fakePriceRepo) groupBySlug(priceID uuid.UUID, slug string) *model.BrandGroup {
	for _, group := range f.groups {
		if group.MerchantPriceID != nil && *group.MerchantPriceID == priceID && group.Slug == slug {
			return group
		}
	}
	return nil
}

func (f *fakePriceRepo) FindProductType(ctx context.Context, priceID uuid.UUID, groupSlug, kind string, installmentStart, installmentEnd int) (*model.ProductType, error) {
	group := f.groupBySlug(priceID, groupSlug)
	if group == nil {
		return nil, gorm.ErrRecordNotFound
	}
	for _, row := range f.rows {
		if row.BrandGroupID == group.ID && row.Kind == kind &&
			row.InstallmentStart == installmentStart && row.InstallmentEnd == installmentEnd {
			out := *row
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePriceRepo) FindProductTypeCovering(ctx context.Context, priceID uuid.UUID, groupSlug, kind string, installment int) (*model.ProductType, error) {
	group := f.groupBySlug(priceID, groupSlug)
	if group == nil {
		return nil, gorm.ErrRecordNotFound
	}
	var best *model.ProductType
	for _, row := range f.rows {
		if row.BrandGroupID != group.ID || row.Kind != kind {
			continue
		}
		if row.InstallmentStart > installment || row.InstallmentEnd < installment {
			continue
		}
		if best == nil || row.InstallmentEnd-row.InstallmentStart < best.InstallmentEnd-best.InstallmentStart {
			best = row
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := *best
	return &out, nil
}

func (f *fakePriceRepo) UpdateProductType(ctx context.Context, row *model.ProductType) error {
	for i, stored := range f.rows {
		if stored.ID == row.ID {
			updated := *row
			f.rows[i] = &updated
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakePriceRepo) DeleteProductType(ctx context.Context, id uuid.UUID) error {
	for i, stored := range f.rows {
		if stored.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.FeeTableRepository = (*fakeFeeTableRepo)(nil)
var _ repository.MerchantRepository = (*fakeMerchantRepo)(nil)
var _ repository.MerchantPriceRepository = (*fakePriceRepo)(nil)
var _ repository.AuditRepository = (*fakeAuditRepo)(nil)
var _ repository.TransactionManager = fakeTxManager{}
var _ NotificationService = (*fakeNotifier)(nil)
