// Package pricing holds the fee-table business rules: the mapping between
// descriptive product-type labels and canonical (kind, installment range)
// triples, installment-bucket expansion, effective-rate composition, and
// aggregate validation. Everything here is pure; persistence stays in the
// repository/service layers.
package pricing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"backoffice/internal/model"
)

// Fixed labels used by imported spreadsheets and the portal screens.
const (
	labelCreditSingle = "Crédito à Vista"
	labelDebit        = "Débito"
	labelVoucher      = "Voucher"
	labelPrepaid      = "Pré-Pago"
)

var installmentLabelRe = regexp.MustCompile(`^Crédito Parcelado \((\d{1,2}) a (\d{1,2}) vezes\)$`)

// Label renders the human-readable name of a product modality. Credit with
// range [1,1] is "Crédito à Vista"; other credit ranges render as
// "Crédito Parcelado (N a M vezes)". Debit, voucher and prepaid ignore the
// installment range (they never have one).
func Label(kind string, start, end int) string {
	switch kind {
	case model.KindCredit:
		if start == 1 && end == 1 {
			return labelCreditSingle
		}
		return fmt.Sprintf("Crédito Parcelado (%d a %d vezes)", start, end)
	case model.KindDebit:
		return labelDebit
	case model.KindVoucher:
		return labelVoucher
	case model.KindPrepaid:
		return labelPrepaid
	}
	return ""
}

// ParseLabel maps a label back to its canonical triple. Unrecognized labels
// return ok=false; callers treat those rows as unmapped and skip them.
func ParseLabel(label string) (kind string, start, end int, ok bool) {
	switch strings.TrimSpace(label) {
	case labelCreditSingle:
		return model.KindCredit, 1, 1, true
	case labelDebit:
		return model.KindDebit, 1, 1, true
	case labelVoucher:
		return model.KindVoucher, 1, 1, true
	case labelPrepaid:
		return model.KindPrepaid, 1, 1, true
	}

	if m := installmentLabelRe.FindStringSubmatch(strings.TrimSpace(label)); m != nil {
		start, _ = strconv.Atoi(m[1])
		end, _ = strconv.Atoi(m[2])
		if start >= 1 && start <= end {
			return model.KindCredit, start, end, true
		}
	}
	return "", 0, 0, false
}

// ValidKind reports whether kind is one of the four product kinds.
func ValidKind(kind string) bool {
	switch kind {
	case model.KindCredit, model.KindDebit, model.KindVoucher, model.KindPrepaid:
		return true
	}
	return false
}

// SupportsInstallments reports whether a kind can carry an installment range
// other than [1,1]. Only credit installs in this domain.
func SupportsInstallments(kind string) bool {
	return kind == model.KindCredit
}

// ExpandInstallments turns one bucket row (e.g. [2,6]) into one row per
// installment count, each carrying the bucket's rate fields with a [n,n]
// range. Used when the portal exposes per-installment overrides. Rows that
// are not installment credit come back unchanged as a single row.
func ExpandInstallments(row model.ProductType) []model.ProductType {
	if !SupportsInstallments(row.Kind) || row.InstallmentStart == row.InstallmentEnd {
		return []model.ProductType{row}
	}

	rows := make([]model.ProductType, 0, row.InstallmentEnd-row.InstallmentStart+1)
	for n := row.InstallmentStart; n <= row.InstallmentEnd; n++ {
		r := row
		r.InstallmentStart = n
		r.InstallmentEnd = n
		rows = append(rows, r)
	}
	return rows
}

// CollapseInstallments is the inverse of ExpandInstallments: contiguous
// single-installment credit rows with identical rate fields collapse back
// into one bucket row spanning the full range. Rows that do not form such a
// run are returned as-is, so a mixed list survives a collapse unchanged.
func CollapseInstallments(rows []model.ProductType) []model.ProductType {
	out := make([]model.ProductType, 0, len(rows))
	i := 0
	for i < len(rows) {
		run := rows[i]
		j := i + 1
		for j < len(rows) &&
			SupportsInstallments(run.Kind) &&
			rows[j].Kind == run.Kind &&
			rows[j].InstallmentStart == rows[j].InstallmentEnd &&
			run.InstallmentEnd+1 == rows[j].InstallmentStart &&
			sameRates(run, rows[j]) {
			run.InstallmentEnd = rows[j].InstallmentEnd
			j++
		}
		out = append(out, run)
		i = j
	}
	return out
}

func sameRates(a, b model.ProductType) bool {
	return a.CardMdr.Equal(b.CardMdr) &&
		a.NonCardMdr.Equal(b.NonCardMdr) &&
		a.CardFee.Equal(b.CardFee) &&
		a.NonCardFee.Equal(b.NonCardFee) &&
		a.CardAnticipationRate.Equal(b.CardAnticipationRate) &&
		a.NonCardAnticipationRate.Equal(b.NonCardAnticipationRate)
}
