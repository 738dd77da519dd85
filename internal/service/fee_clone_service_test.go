package service

import (
	"context"
	"testing"

	"backoffice/internal/model"
	"backoffice/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedFeeTable(t *testing.T, feeRepo *fakeFeeTableRepo) *model.FeeTable {
	t.Helper()

	table := &model.FeeTable{
		Name:                       "Tabela Varejo",
		Active:                     true,
		AnticipationType:           model.AnticipationCompulsory,
		CompulsoryAnticipationDays: 1,
		Pix: model.PixFeeConfig{
			CardPixMdr: dec("0.99"),
		},
		BrandGroups: []model.BrandGroup{
			{
				Brand:    "VISA",
				Slug:     "visa-1",
				Position: 0,
				ProductTypes: []model.ProductType{
					{Kind: model.KindCredit, InstallmentStart: 1, InstallmentEnd: 1, CardMdr: dec("2.5"), CardAnticipationRate: dec("1.2")},
					{Kind: model.KindCredit, InstallmentStart: 2, InstallmentEnd: 6, CardMdr: dec("3.1"), CardAnticipationRate: dec("1.2")},
					{Kind: model.KindCredit, InstallmentStart: 7, InstallmentEnd: 12, CardMdr: dec("3.6"), CardAnticipationRate: dec("1.2")},
					{Kind: model.KindDebit, InstallmentStart: 1, InstallmentEnd: 1, CardMdr: dec("1.5")},
				},
			},
			{
				Brand:    "MASTERCARD",
				Slug:     "mastercard-1",
				Position: 1,
				ProductTypes: []model.ProductType{
					{Kind: model.KindCredit, InstallmentStart: 1, InstallmentEnd: 1, CardMdr: dec("2.7")},
				},
			},
		},
	}
	require.NoError(t, feeRepo.Create(context.Background(), table))
	return table
}

func seedMerchant(t *testing.T, merchantRepo *fakeMerchantRepo) *model.Merchant {
	t.Helper()

	merchant := &model.Merchant{
		LegalName: "Padaria do Centro LTDA",
		Document:  "12345678000190",
		Status:    model.MerchantStatusActive,
	}
	require.NoError(t, merchantRepo.Create(context.Background(), merchant))
	return merchant
}

func newCloneService(feeRepo *fakeFeeTableRepo, merchantRepo *fakeMerchantRepo, priceRepo *fakePriceRepo, notifier *fakeNotifier) FeeCloneService {
	return NewFeeCloneService(feeRepo, merchantRepo, priceRepo, &fakeAuditRepo{}, fakeTxManager{}, notifier, zerolog.Nop())
}

func TestCloneToMerchantCopiesWholeAggregate(t *testing.T) {
	feeRepo := newFakeFeeTableRepo()
	merchantRepo := newFakeMerchantRepo()
	priceRepo := newFakePriceRepo()
	notifier := &fakeNotifier{}
	table := seedFeeTable(t, feeRepo)
	merchant := seedMerchant(t, merchantRepo)

	svc := newCloneService(feeRepo, merchantRepo, priceRepo, notifier)

	result, err := svc.CloneToMerchant(context.Background(), table.ID.String(), merchant.ID.String(), "op-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.BrandGroups)
	assert.Equal(t, 5, result.ProductTypes)

	priceID, err := uuid.Parse(result.MerchantPriceID)
	require.NoError(t, err)
	assert.NotEqual(t, table.ID, priceID)

	price, err := priceRepo.FindByIDWithGroups(context.Background(), priceID)
	require.NoError(t, err)

	// Header fields and PIX config carried over, provenance recorded.
	assert.Equal(t, table.Name, price.Name)
	assert.Equal(t, model.AnticipationCompulsory, price.AnticipationType)
	assert.True(t, price.Pix.CardPixMdr.Equal(dec("0.99")))
	require.NotNil(t, price.SourceFeeTableID)
	assert.Equal(t, table.ID, *price.SourceFeeTableID)

	// Every cloned group carries a fresh identity linked to the price, never
	// back to the source table.
	require.Len(t, price.BrandGroups, 2)
	sourceGroupIDs := map[uuid.UUID]bool{}
	for _, group := range table.BrandGroups {
		sourceGroupIDs[group.ID] = true
	}
	for _, group := range price.BrandGroups {
		assert.False(t, sourceGroupIDs[group.ID], "cloned group reuses source id")
		assert.Nil(t, group.FeeTableID)
		require.NotNil(t, group.MerchantPriceID)
		assert.Equal(t, priceID, *group.MerchantPriceID)
	}

	// Rate values copied exactly.
	visa := price.BrandGroups[0]
	require.Len(t, visa.ProductTypes, 4)
	assert.True(t, visa.ProductTypes[0].CardMdr.Equal(dec("2.5")))
	assert.True(t, visa.ProductTypes[1].CardMdr.Equal(dec("3.1")))

	// Merchant now linked to the new price.
	updated, err := merchantRepo.FindByID(context.Background(), merchant.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.MerchantPriceID)
	assert.Equal(t, priceID, *updated.MerchantPriceID)

	assert.Contains(t, notifier.kinds, model.NotificationFeeAssigned)
}

func TestCloneToMerchantRejectsSecondPrice(t *testing.T) {
	feeRepo := newFakeFeeTableRepo()
	merchantRepo := newFakeMerchantRepo()
	priceRepo := newFakePriceRepo()
	table := seedFeeTable(t, feeRepo)
	merchant := seedMerchant(t, merchantRepo)

	existing := uuid.New()
	merchantRepo.merchants[merchant.ID].MerchantPriceID = &existing

	svc := newCloneService(feeRepo, merchantRepo, priceRepo, &fakeNotifier{})

	_, err := svc.CloneToMerchant(context.Background(), table.ID.String(), merchant.ID.String(), "op-1")
	assert.ErrorIs(t, err, ErrPriceAlreadyAssigned)
	assert.Empty(t, priceRepo.groups)
}

func TestCloneToMerchantLinkLostRaceKeepsFirstPrice(t *testing.T) {
	// The pre-check read a snapshot from before a concurrent clone linked the
	// merchant. The conditional link write must refuse to overwrite the
	// existing link, so the first price survives and the late clone rolls
	// back with the usual sentinel.
	feeRepo := newFakeFeeTableRepo()
	merchantRepo := newFakeMerchantRepo()
	priceRepo := newFakePriceRepo()
	table := seedFeeTable(t, feeRepo)
	merchant := seedMerchant(t, merchantRepo)

	firstPrice := uuid.New()
	merchantRepo.merchants[merchant.ID].MerchantPriceID = &firstPrice
	merchantRepo.unlinkedOnFind = true

	svc := newCloneService(feeRepo, merchantRepo, priceRepo, &fakeNotifier{})

	_, err := svc.CloneToMerchant(context.Background(), table.ID.String(), merchant.ID.String(), "op-1")
	assert.ErrorIs(t, err, ErrPriceAlreadyAssigned)

	stored := merchantRepo.merchants[merchant.ID]
	require.NotNil(t, stored.MerchantPriceID)
	assert.Equal(t, firstPrice, *stored.MerchantPriceID)
}

func TestCloneToMerchantMapsDuplicateKeyToAlreadyAssigned(t *testing.T) {
	// The pre-check passed but another clone won the race: the unique index
	// violation surfaces as the same sentinel error.
	feeRepo := newFakeFeeTableRepo()
	merchantRepo := newFakeMerchantRepo()
	merchantRepo.duplicateOnLink = true
	priceRepo := newFakePriceRepo()
	table := seedFeeTable(t, feeRepo)
	merchant := seedMerchant(t, merchantRepo)

	svc := newCloneService(feeRepo, merchantRepo, priceRepo, &fakeNotifier{})

	_, err := svc.CloneToMerchant(context.Background(), table.ID.String(), merchant.ID.String(), "op-1")
	assert.ErrorIs(t, err, ErrPriceAlreadyAssigned)
}

func TestCloneToMerchantUnknownTable(t *testing.T) {
	feeRepo := newFakeFeeTableRepo()
	merchantRepo := newFakeMerchantRepo()
	merchant := seedMerchant(t, merchantRepo)

	svc := newCloneService(feeRepo, merchantRepo, newFakePriceRepo(), &fakeNotifier{})

	_, err := svc.CloneToMerchant(context.Background(), uuid.NewString(), merchant.ID.String(), "op-1")
	assert.ErrorIs(t, err, ErrFeeTableNotFound)
}

func TestCloneToMerchantUnknownMerchant(t *testing.T) {
	feeRepo := newFakeFeeTableRepo()
	table := seedFeeTable(t, feeRepo)

	svc := newCloneService(feeRepo, newFakeMerchantRepo(), newFakePriceRepo(), &fakeNotifier{})

	_, err := svc.CloneToMerchant(context.Background(), table.ID.String(), uuid.NewString(), "op-1")
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestCloneToMerchantFailureLeavesMerchantUnlinked(t *testing.T) {
	feeRepo := newFakeFeeTableRepo()
	merchantRepo := newFakeMerchantRepo()
	priceRepo := newFakePriceRepo()
	priceRepo.failRowInsertAfter = 2
	table := seedFeeTable(t, feeRepo)
	merchant := seedMerchant(t, merchantRepo)

	svc := newCloneService(feeRepo, merchantRepo, priceRepo, &fakeNotifier{})

	_, err := svc.CloneToMerchant(context.Background(), table.ID.String(), merchant.ID.String(), "op-1")
	require.Error(t, err)

	updated, err := merchantRepo.FindByID(context.Background(), merchant.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.MerchantPriceID)
}

func TestCreateThenCloneNormalizesLocaleRates(t *testing.T) {
	// End to end: a table created from "2,50"-style inputs clones to a price
	// whose rows carry 2.5, and the compulsory effective rate reads 3.7.
	feeRepo := newFakeFeeTableRepo()
	merchantRepo := newFakeMerchantRepo()
	priceRepo := newFakePriceRepo()
	merchant := seedMerchant(t, merchantRepo)

	tableSvc := NewFeeTableService(feeRepo, &fakeAuditRepo{}, fakeTxManager{}, zerolog.Nop())
	created, err := tableSvc.CreateFeeTable(context.Background(), CreateFeeTableRequest{
		Name:                       "Tabela Importada",
		AnticipationType:           model.AnticipationCompulsory,
		CompulsoryAnticipationDays: 1,
		BrandGroups: []BrandGroupPayload{
			{
				Brand: "VISA",
				ProductTypes: []ProductTypePayload{
					{
						Kind:                 model.KindCredit,
						InstallmentStart:     1,
						InstallmentEnd:       1,
						CardMdr:              "2,50 %",
						CardAnticipationRate: "1,20",
					},
				},
			},
		},
	}, "op-1")
	require.NoError(t, err)
	assert.Empty(t, created.Warnings)

	svc := newCloneService(feeRepo, merchantRepo, priceRepo, &fakeNotifier{})
	result, err := svc.CloneToMerchant(context.Background(), created.ID, merchant.ID.String(), "op-1")
	require.NoError(t, err)

	priceID := uuid.MustParse(result.MerchantPriceID)
	price, err := priceRepo.FindByIDWithGroups(context.Background(), priceID)
	require.NoError(t, err)

	require.Len(t, price.BrandGroups, 1)
	require.Len(t, price.BrandGroups[0].ProductTypes, 1)
	row := price.BrandGroups[0].ProductTypes[0]
	assert.True(t, row.CardMdr.Equal(dec("2.5")), "got %s", row.CardMdr)
	assert.True(t, row.CardAnticipationRate.Equal(dec("1.2")))

	effective := pricing.EffectiveRate(row, price.AnticipationType, pricing.RateContext{CardPresent: true})
	assert.True(t, effective.Equal(dec("3.7")), "got %s", effective)
}
