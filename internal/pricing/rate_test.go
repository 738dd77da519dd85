package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"backoffice/internal/model"
)

func creditRow() model.ProductType {
	return model.ProductType{
		Kind:                    model.KindCredit,
		InstallmentStart:        1,
		InstallmentEnd:          1,
		CardMdr:                 decimal.RequireFromString("2.5"),
		NonCardMdr:              decimal.RequireFromString("3.0"),
		CardAnticipationRate:    decimal.RequireFromString("1.2"),
		NonCardAnticipationRate: decimal.RequireFromString("1.5"),
	}
}

func TestEffectiveRateCompulsoryBlendsAnticipation(t *testing.T) {
	row := creditRow()

	got := EffectiveRate(row, model.AnticipationCompulsory, RateContext{CardPresent: true})
	assert.Equal(t, "3.7", got.String())

	got = EffectiveRate(row, model.AnticipationCompulsory, RateContext{CardPresent: false})
	assert.Equal(t, "4.5", got.String())
}

func TestEffectiveRateNonCompulsoryIsPlainMdr(t *testing.T) {
	row := creditRow()

	for _, antType := range []string{model.AnticipationNone, model.AnticipationEventual} {
		got := EffectiveRate(row, antType, RateContext{CardPresent: true})
		assert.Equal(t, "2.5", got.String(), "type %s", antType)
	}
}

func TestEffectiveRateCompulsoryIgnoresAnticipationForDebit(t *testing.T) {
	row := creditRow()
	row.Kind = model.KindDebit

	got := EffectiveRate(row, model.AnticipationCompulsory, RateContext{CardPresent: true})
	assert.Equal(t, "2.5", got.String())
}

func TestAnticipationApplicable(t *testing.T) {
	assert.True(t, AnticipationApplicable(model.KindCredit))
	assert.False(t, AnticipationApplicable(model.KindDebit))
	assert.False(t, AnticipationApplicable(model.KindVoucher))
	assert.False(t, AnticipationApplicable(model.KindPrepaid))
}
