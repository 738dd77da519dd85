package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSettlementRepo struct {
	settlements map[uuid.UUID]*model.Settlement
}

func newFakeSettlementRepo() *fakeSettlementRepo {
	return &fakeSettlementRepo{settlements: map[uuid.UUID]*model.Settlement{}}
}

func (f *fakeSettlementRepo) Create(ctx context.Context, settlement *model.Settlement) error {
	if settlement.ID == uuid.Nil {
		settlement.ID = uuid.New()
	}
	stored := *settlement
	f.settlements[settlement.ID] = &stored
	return nil
}

func (f *fakeSettlementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Settlement, error) {
	settlement, ok := f.settlements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *settlement
	return &out, nil
}

func (f *fakeSettlementRepo) List(ctx context.Context, filter repository.SettlementFilter) ([]model.Settlement, int64, error) {
	var out []model.Settlement
	for _, settlement := range f.settlements {
		out = append(out, *settlement)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSettlementRepo) Update(ctx context.Context, settlement *model.Settlement) error {
	if _, ok := f.settlements[settlement.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *settlement
	f.settlements[settlement.ID] = &stored
	return nil
}

func (f *fakeSettlementRepo) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	for _, settlement := range f.settlements {
		if strings.HasPrefix(settlement.SettlementNo, prefix) {
			count++
		}
	}
	return count, nil
}

var _ repository.SettlementRepository = (*fakeSettlementRepo)(nil)

func newSettlementService(merchantRepo *fakeMerchantRepo) (SettlementService, *fakeSettlementRepo, *fakeNotifier) {
	repo := newFakeSettlementRepo()
	notifier := &fakeNotifier{}
	svc := NewSettlementService(repo, merchantRepo, &fakeAuditRepo{}, notifier, zerolog.Nop())
	return svc, repo, notifier
}

func TestCreateSettlementParsesAmountsAndNumbersSequentially(t *testing.T) {
	merchantRepo := newFakeMerchantRepo()
	merchant := seedMerchant(t, merchantRepo)
	svc, _, _ := newSettlementService(merchantRepo)

	first, err := svc.CreateSettlement(context.Background(), CreateSettlementRequest{
		MerchantID:    merchant.ID.String(),
		GrossAmount:   "R$ 1.234,56",
		FeeAmount:     "34,56",
		ReferenceDate: "10/07/2026",
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "ST-202607-0001", first.SettlementNo)
	assert.True(t, first.GrossAmount.Equal(dec("1234.56")), "gross: %s", first.GrossAmount)
	assert.True(t, first.FeeAmount.Equal(dec("34.56")))
	assert.True(t, first.NetAmount.Equal(dec("1200")), "net: %s", first.NetAmount)
	assert.Equal(t, "PENDING", first.Status)
	assert.Equal(t, time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC), first.ReferenceDate)

	second, err := svc.CreateSettlement(context.Background(), CreateSettlementRequest{
		MerchantID:    merchant.ID.String(),
		GrossAmount:   "500.00",
		ReferenceDate: "20/07/2026",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ST-202607-0002", second.SettlementNo)

	// A different month restarts the sequence
	nextMonth, err := svc.CreateSettlement(context.Background(), CreateSettlementRequest{
		MerchantID:    merchant.ID.String(),
		GrossAmount:   "500.00",
		ReferenceDate: "01/08/2026",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ST-202608-0001", nextMonth.SettlementNo)
}

func TestCreateSettlementRejectsBadAmountAndUnknownMerchant(t *testing.T) {
	merchantRepo := newFakeMerchantRepo()
	merchant := seedMerchant(t, merchantRepo)
	svc, _, _ := newSettlementService(merchantRepo)

	_, err := svc.CreateSettlement(context.Background(), CreateSettlementRequest{
		MerchantID:    merchant.ID.String(),
		GrossAmount:   "abc",
		ReferenceDate: "10/07/2026",
	}, "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid amount")

	_, err = svc.CreateSettlement(context.Background(), CreateSettlementRequest{
		MerchantID:    uuid.NewString(),
		GrossAmount:   "100",
		ReferenceDate: "10/07/2026",
	}, "user-1")
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestUpdateSettlementStatusPaidSetsPaymentDateAndNotifies(t *testing.T) {
	merchantRepo := newFakeMerchantRepo()
	merchant := seedMerchant(t, merchantRepo)
	svc, _, notifier := newSettlementService(merchantRepo)

	created, err := svc.CreateSettlement(context.Background(), CreateSettlementRequest{
		MerchantID:    merchant.ID.String(),
		GrossAmount:   "100",
		ReferenceDate: "10/07/2026",
	}, "user-1")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), created.ID, UpdateSettlementStatusRequest{
		Status:      "PAID",
		PaymentDate: "12/07/2026",
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "PAID", updated.Status)
	require.NotNil(t, updated.PaymentDate)
	assert.Equal(t, time.Date(2026, time.July, 12, 0, 0, 0, 0, time.UTC), *updated.PaymentDate)
	assert.Contains(t, notifier.kinds, model.NotificationSettlementStatus)
}
