package service

import (
	"context"
	"testing"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMerchantPrice(t *testing.T, priceRepo *fakePriceRepo) (*model.MerchantPrice, *model.BrandGroup) {
	t.Helper()
	ctx := context.Background()

	price := &model.MerchantPrice{
		Name:             "Tabela Varejo",
		AnticipationType: model.AnticipationCompulsory,
	}
	require.NoError(t, priceRepo.Create(ctx, price))

	group := &model.BrandGroup{
		MerchantPriceID: &price.ID,
		Brand:           "VISA",
		Slug:            "visa-1700000000-0",
	}
	require.NoError(t, priceRepo.CreateBrandGroup(ctx, group))

	rows := []model.ProductType{
		{BrandGroupID: group.ID, Kind: model.KindCredit, InstallmentStart: 1, InstallmentEnd: 1, CardMdr: dec("2.5"), CardAnticipationRate: dec("1.2")},
		{BrandGroupID: group.ID, Kind: model.KindCredit, InstallmentStart: 2, InstallmentEnd: 6, CardMdr: dec("3.1"), CardAnticipationRate: dec("1.2")},
		{BrandGroupID: group.ID, Kind: model.KindDebit, InstallmentStart: 1, InstallmentEnd: 1, CardMdr: dec("1.5")},
	}
	for i := range rows {
		require.NoError(t, priceRepo.CreateProductType(ctx, &rows[i]))
	}
	return price, group
}

func newTestPricingService(priceRepo *fakePriceRepo, notifier *fakeNotifier) PricingService {
	return NewPricingService(priceRepo, &fakeAuditRepo{}, fakeTxManager{}, notifier, zerolog.Nop())
}

func TestUpdateProductTypeFieldExactRow(t *testing.T) {
	priceRepo := newFakePriceRepo()
	notifier := &fakeNotifier{}
	price, group := seedMerchantPrice(t, priceRepo)
	svc := newTestPricingService(priceRepo, notifier)

	err := svc.UpdateProductTypeField(context.Background(), price.ID.String(), UpdateProductFieldRequest{
		GroupSlug:        group.Slug,
		Kind:             model.KindCredit,
		InstallmentStart: 1,
		InstallmentEnd:   1,
		Field:            "card_mdr",
		Value:            "3,10 %",
	}, "op-1")
	require.NoError(t, err)

	row, err := priceRepo.FindProductType(context.Background(), price.ID, group.Slug, model.KindCredit, 1, 1)
	require.NoError(t, err)
	assert.True(t, row.CardMdr.Equal(dec("3.1")), "got %s", row.CardMdr)
	// Untouched fields survive the edit.
	assert.True(t, row.CardAnticipationRate.Equal(dec("1.2")))

	assert.Contains(t, notifier.kinds, model.NotificationPricingChanged)
}

func TestUpdateProductTypeFieldSplitsBucket(t *testing.T) {
	priceRepo := newFakePriceRepo()
	price, group := seedMerchantPrice(t, priceRepo)
	svc := newTestPricingService(priceRepo, &fakeNotifier{})

	installment := 4
	err := svc.UpdateProductTypeField(context.Background(), price.ID.String(), UpdateProductFieldRequest{
		GroupSlug:   group.Slug,
		Kind:        model.KindCredit,
		Installment: &installment,
		Field:       "card_mdr",
		Value:       "3.9",
	}, "op-1")
	require.NoError(t, err)

	// The [2,6] bucket is gone, replaced by per-installment rows.
	_, err = priceRepo.FindProductType(context.Background(), price.ID, group.Slug, model.KindCredit, 2, 6)
	assert.Error(t, err)

	for n := 2; n <= 6; n++ {
		row, err := priceRepo.FindProductType(context.Background(), price.ID, group.Slug, model.KindCredit, n, n)
		require.NoError(t, err, "missing row for %d installments", n)
		want := dec("3.1")
		if n == installment {
			want = dec("3.9")
		}
		assert.True(t, row.CardMdr.Equal(want), "installment %d: got %s", n, row.CardMdr)
		// Bucket rates are inherited by every split row.
		assert.True(t, row.CardAnticipationRate.Equal(dec("1.2")))
	}

	// Rows outside the bucket are untouched.
	single, err := priceRepo.FindProductType(context.Background(), price.ID, group.Slug, model.KindCredit, 1, 1)
	require.NoError(t, err)
	assert.True(t, single.CardMdr.Equal(dec("2.5")))
}

func TestUpdateProductTypeFieldExistingSingleRowWins(t *testing.T) {
	priceRepo := newFakePriceRepo()
	price, group := seedMerchantPrice(t, priceRepo)
	svc := newTestPricingService(priceRepo, &fakeNotifier{})

	installment := 1
	err := svc.UpdateProductTypeField(context.Background(), price.ID.String(), UpdateProductFieldRequest{
		GroupSlug:   group.Slug,
		Kind:        model.KindCredit,
		Installment: &installment,
		Field:       "card_fee",
		Value:       "0,75",
	}, "op-1")
	require.NoError(t, err)

	row, err := priceRepo.FindProductType(context.Background(), price.ID, group.Slug, model.KindCredit, 1, 1)
	require.NoError(t, err)
	assert.True(t, row.CardFee.Equal(dec("0.75")))
	// No split happened.
	assert.Len(t, priceRepo.rows, 3)
}

func TestUpdateProductTypeFieldRejectsAnticipationOnDebit(t *testing.T) {
	priceRepo := newFakePriceRepo()
	price, group := seedMerchantPrice(t, priceRepo)
	svc := newTestPricingService(priceRepo, &fakeNotifier{})

	err := svc.UpdateProductTypeField(context.Background(), price.ID.String(), UpdateProductFieldRequest{
		GroupSlug:        group.Slug,
		Kind:             model.KindDebit,
		InstallmentStart: 1,
		InstallmentEnd:   1,
		Field:            "card_anticipation_rate",
		Value:            "1.0",
	}, "op-1")
	assert.ErrorIs(t, err, ErrFieldNotEditable)
}

func TestUpdateProductTypeFieldUnknownField(t *testing.T) {
	priceRepo := newFakePriceRepo()
	price, group := seedMerchantPrice(t, priceRepo)
	svc := newTestPricingService(priceRepo, &fakeNotifier{})

	err := svc.UpdateProductTypeField(context.Background(), price.ID.String(), UpdateProductFieldRequest{
		GroupSlug:        group.Slug,
		Kind:             model.KindCredit,
		InstallmentStart: 1,
		InstallmentEnd:   1,
		Field:            "effective_rate",
		Value:            "5.0",
	}, "op-1")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestUpdateProductTypeFieldMissingRow(t *testing.T) {
	priceRepo := newFakePriceRepo()
	price, group := seedMerchantPrice(t, priceRepo)
	svc := newTestPricingService(priceRepo, &fakeNotifier{})

	installment := 12 // no bucket covers it in the seed
	err := svc.UpdateProductTypeField(context.Background(), price.ID.String(), UpdateProductFieldRequest{
		GroupSlug:   group.Slug,
		Kind:        model.KindCredit,
		Installment: &installment,
		Field:       "card_mdr",
		Value:       "4.0",
	}, "op-1")
	assert.ErrorIs(t, err, ErrProductRowNotFound)
}

func TestUpdateProductTypeFieldUnknownPrice(t *testing.T) {
	svc := newTestPricingService(newFakePriceRepo(), &fakeNotifier{})

	err := svc.UpdateProductTypeField(context.Background(), uuid.NewString(), UpdateProductFieldRequest{
		GroupSlug:        "visa-1",
		Kind:             model.KindCredit,
		InstallmentStart: 1,
		InstallmentEnd:   1,
		Field:            "card_mdr",
		Value:            "2.0",
	}, "op-1")
	assert.ErrorIs(t, err, ErrMerchantPriceNotFound)
}

func TestUpdatePixConfigPartialUpdate(t *testing.T) {
	priceRepo := newFakePriceRepo()
	price, _ := seedMerchantPrice(t, priceRepo)
	priceRepo.prices[price.ID].Pix.NonCardPixMdr = dec("1.4")
	svc := newTestPricingService(priceRepo, &fakeNotifier{})

	value := "0,99"
	err := svc.UpdatePixConfig(context.Background(), price.ID.String(), PixFieldUpdate{
		CardPixMdr: &value,
	}, "op-1")
	require.NoError(t, err)

	updated, err := priceRepo.FindByID(context.Background(), price.ID)
	require.NoError(t, err)
	assert.True(t, updated.Pix.CardPixMdr.Equal(dec("0.99")))
	// Fields not in the request keep their values.
	assert.True(t, updated.Pix.NonCardPixMdr.Equal(dec("1.4")))
}

func TestUpdatePixConfigEventualFeeOnlyOnEventualTables(t *testing.T) {
	priceRepo := newFakePriceRepo()
	price, _ := seedMerchantPrice(t, priceRepo) // COMPULSORY
	svc := newTestPricingService(priceRepo, &fakeNotifier{})

	fee := "2,9"
	err := svc.UpdatePixConfig(context.Background(), price.ID.String(), PixFieldUpdate{
		EventualAnticipationFee: &fee,
	}, "op-1")
	require.NoError(t, err)

	updated, err := priceRepo.FindByID(context.Background(), price.ID)
	require.NoError(t, err)
	assert.True(t, updated.EventualAnticipationFee.IsZero(), "fee applied on a compulsory table")

	// On an EVENTUAL table the same request takes effect.
	priceRepo.prices[price.ID].AnticipationType = model.AnticipationEventual
	require.NoError(t, svc.UpdatePixConfig(context.Background(), price.ID.String(), PixFieldUpdate{
		EventualAnticipationFee: &fee,
	}, "op-1"))

	updated, err = priceRepo.FindByID(context.Background(), price.ID)
	require.NoError(t, err)
	assert.True(t, updated.EventualAnticipationFee.Equal(dec("2.9")))
}
