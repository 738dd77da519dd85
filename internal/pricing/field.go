package pricing

// Field identifies one editable rate column of a product-type row. Updates
// arrive keyed by this closed enum rather than free-form column names, so an
// unknown field is rejected at parse time and the switch in the update engine
// stays exhaustive.
type Field string

const (
	FieldCardMdr                 Field = "card_mdr"
	FieldNonCardMdr              Field = "non_card_mdr"
	FieldCardFee                 Field = "card_fee"
	FieldNonCardFee              Field = "non_card_fee"
	FieldCardAnticipationRate    Field = "card_anticipation_rate"
	FieldNonCardAnticipationRate Field = "non_card_anticipation_rate"
)

// ParseField validates a wire-level field name. The effective/total rate is
// deliberately absent: composites are recomputed, never written.
func ParseField(raw string) (Field, bool) {
	switch Field(raw) {
	case FieldCardMdr, FieldNonCardMdr, FieldCardFee, FieldNonCardFee,
		FieldCardAnticipationRate, FieldNonCardAnticipationRate:
		return Field(raw), true
	}
	return "", false
}

// AnticipationField reports whether f is one of the anticipation-rate
// columns, which are only editable on kinds where anticipation applies.
func (f Field) AnticipationField() bool {
	return f == FieldCardAnticipationRate || f == FieldNonCardAnticipationRate
}
