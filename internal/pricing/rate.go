package pricing

import (
	"github.com/shopspring/decimal"

	"backoffice/internal/model"
)

// RateContext selects between the card-present and card-not-present fields of
// a rate row.
type RateContext struct {
	CardPresent bool
}

// EffectiveRate computes the rate the merchant actually pays on a product
// type. Under COMPULSORY anticipation the anticipation rate is blended into
// the displayed rate (MDR + anticipation for the matching context); under
// EVENTUAL or NOANTICIPATION the anticipation is billed separately, so the
// stored MDR is returned as-is.
func EffectiveRate(row model.ProductType, anticipationType string, ctx RateContext) decimal.Decimal {
	mdr := row.NonCardMdr
	anticipation := row.NonCardAnticipationRate
	if ctx.CardPresent {
		mdr = row.CardMdr
		anticipation = row.CardAnticipationRate
	}

	if anticipationType == model.AnticipationCompulsory && AnticipationApplicable(row.Kind) {
		return mdr.Add(anticipation)
	}
	return mdr
}

// AnticipationApplicable reports whether a product kind carries an
// anticipation fee at all. Debit, voucher and prepaid settle same-day by
// domain rule, so only credit qualifies.
func AnticipationApplicable(kind string) bool {
	return kind == model.KindCredit
}
