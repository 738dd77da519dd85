package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/model"
)

func TestLabelRoundTrip(t *testing.T) {
	triples := []struct {
		kind       string
		start, end int
	}{
		{model.KindCredit, 1, 1},
		{model.KindCredit, 2, 6},
		{model.KindCredit, 7, 12},
		{model.KindDebit, 1, 1},
		{model.KindVoucher, 1, 1},
		{model.KindPrepaid, 1, 1},
	}

	for _, tr := range triples {
		label := Label(tr.kind, tr.start, tr.end)
		require.NotEmpty(t, label)

		kind, start, end, ok := ParseLabel(label)
		require.True(t, ok, "label %q", label)
		assert.Equal(t, tr.kind, kind)
		assert.Equal(t, tr.start, start)
		assert.Equal(t, tr.end, end)
	}
}

func TestLabelFixedStrings(t *testing.T) {
	assert.Equal(t, "Crédito à Vista", Label(model.KindCredit, 1, 1))
	assert.Equal(t, "Crédito Parcelado (2 a 6 vezes)", Label(model.KindCredit, 2, 6))
	assert.Equal(t, "Débito", Label(model.KindDebit, 1, 1))
	assert.Equal(t, "Voucher", Label(model.KindVoucher, 5, 9)) // range ignored
	assert.Equal(t, "Pré-Pago", Label(model.KindPrepaid, 1, 1))
}

func TestParseLabelRejectsUnknown(t *testing.T) {
	for _, label := range []string{"", "Boleto", "Crédito Parcelado (6 a 2 vezes)", "Crédito Parcelado (0 a 3 vezes)", "credit"} {
		_, _, _, ok := ParseLabel(label)
		assert.False(t, ok, "label %q", label)
	}
}

func TestExpandInstallments(t *testing.T) {
	bucket := model.ProductType{
		Kind:             model.KindCredit,
		InstallmentStart: 2,
		InstallmentEnd:   6,
		CardMdr:          decimal.RequireFromString("2.5"),
	}

	rows := ExpandInstallments(bucket)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, 2+i, row.InstallmentStart)
		assert.Equal(t, 2+i, row.InstallmentEnd)
		assert.True(t, row.CardMdr.Equal(bucket.CardMdr))
	}

	// Non-installment kinds pass through untouched
	debit := model.ProductType{Kind: model.KindDebit, InstallmentStart: 1, InstallmentEnd: 1}
	assert.Equal(t, []model.ProductType{debit}, ExpandInstallments(debit))
}

func TestCollapseInstallmentsRoundTrip(t *testing.T) {
	bucket := model.ProductType{
		Kind:             model.KindCredit,
		InstallmentStart: 7,
		InstallmentEnd:   12,
		CardMdr:          decimal.RequireFromString("3.1"),
		NonCardMdr:       decimal.RequireFromString("3.6"),
	}

	collapsed := CollapseInstallments(ExpandInstallments(bucket))
	require.Len(t, collapsed, 1)
	assert.Equal(t, 7, collapsed[0].InstallmentStart)
	assert.Equal(t, 12, collapsed[0].InstallmentEnd)
	assert.True(t, collapsed[0].CardMdr.Equal(bucket.CardMdr))
}

func TestCollapseInstallmentsKeepsDivergentRates(t *testing.T) {
	rows := ExpandInstallments(model.ProductType{
		Kind:             model.KindCredit,
		InstallmentStart: 2,
		InstallmentEnd:   4,
		CardMdr:          decimal.RequireFromString("2.5"),
	})
	// Per-installment override on the 3x row breaks the run
	rows[1].CardMdr = decimal.RequireFromString("2.8")

	collapsed := CollapseInstallments(rows)
	assert.Len(t, collapsed, 3)
}
