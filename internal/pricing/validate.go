package pricing

import (
	"fmt"

	"backoffice/internal/model"
)

// FieldError is a structured per-field validation failure. Validation never
// aborts on the first problem; all errors come back together so the portal
// can highlight every bad field at once.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateGroups checks the brand-group tree shared by FeeTable and
// MerchantPrice aggregates: valid kinds, installment ranges in order,
// non-credit rows pinned to [1,1], no brand repeated across groups, and no
// duplicate (group, kind, range) row.
func ValidateGroups(groups []model.BrandGroup) []FieldError {
	var errs []FieldError

	seenBrands := map[string]bool{}
	for gi, g := range groups {
		prefix := fmt.Sprintf("brand_groups[%d]", gi)

		if g.Brand == "" {
			errs = append(errs, FieldError{prefix + ".brand", "brand is required"})
		} else if seenBrands[g.Brand] {
			errs = append(errs, FieldError{prefix + ".brand", fmt.Sprintf("brand %s appears in more than one group", g.Brand)})
		}
		seenBrands[g.Brand] = true

		seenRows := map[string]bool{}
		for pi, row := range g.ProductTypes {
			rowPrefix := fmt.Sprintf("%s.product_types[%d]", prefix, pi)

			if !ValidKind(row.Kind) {
				errs = append(errs, FieldError{rowPrefix + ".kind", fmt.Sprintf("unknown kind %q", row.Kind)})
				continue
			}
			if row.InstallmentStart < 1 || row.InstallmentStart > row.InstallmentEnd {
				errs = append(errs, FieldError{rowPrefix + ".installments", fmt.Sprintf("invalid range [%d,%d]", row.InstallmentStart, row.InstallmentEnd)})
			}
			if !SupportsInstallments(row.Kind) && (row.InstallmentStart != 1 || row.InstallmentEnd != 1) {
				errs = append(errs, FieldError{rowPrefix + ".installments", row.Kind + " does not support installments"})
			}

			key := fmt.Sprintf("%s/%d-%d", row.Kind, row.InstallmentStart, row.InstallmentEnd)
			if seenRows[key] {
				errs = append(errs, FieldError{rowPrefix, "duplicate row for " + key})
			}
			seenRows[key] = true
		}
	}

	return errs
}

// ValidateTable runs ValidateGroups plus the table-header checks.
func ValidateTable(table model.FeeTable) []FieldError {
	var errs []FieldError

	if table.Name == "" {
		errs = append(errs, FieldError{"name", "name is required"})
	}
	switch table.AnticipationType {
	case model.AnticipationNone, model.AnticipationEventual, model.AnticipationCompulsory:
	default:
		errs = append(errs, FieldError{"anticipation_type", fmt.Sprintf("unknown anticipation type %q", table.AnticipationType)})
	}
	if table.CompulsoryAnticipationDays < 0 {
		errs = append(errs, FieldError{"compulsory_anticipation_days", "must not be negative"})
	}

	return append(errs, ValidateGroups(table.BrandGroups)...)
}
