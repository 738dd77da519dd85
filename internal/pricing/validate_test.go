package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/model"
)

func TestValidateGroups(t *testing.T) {
	t.Run("valid tree has no errors", func(t *testing.T) {
		groups := []model.BrandGroup{
			{Brand: "VISA", ProductTypes: []model.ProductType{
				{Kind: model.KindCredit, InstallmentStart: 1, InstallmentEnd: 1},
				{Kind: model.KindCredit, InstallmentStart: 2, InstallmentEnd: 6},
				{Kind: model.KindDebit, InstallmentStart: 1, InstallmentEnd: 1},
			}},
			{Brand: "MASTERCARD", ProductTypes: []model.ProductType{
				{Kind: model.KindCredit, InstallmentStart: 1, InstallmentEnd: 1},
			}},
		}
		assert.Empty(t, ValidateGroups(groups))
	})

	t.Run("duplicate brand across groups", func(t *testing.T) {
		groups := []model.BrandGroup{
			{Brand: "VISA"},
			{Brand: "VISA"},
		}
		errs := ValidateGroups(groups)
		require.Len(t, errs, 1)
		assert.Equal(t, "brand_groups[1].brand", errs[0].Field)
	})

	t.Run("inverted installment range", func(t *testing.T) {
		groups := []model.BrandGroup{
			{Brand: "ELO", ProductTypes: []model.ProductType{
				{Kind: model.KindCredit, InstallmentStart: 6, InstallmentEnd: 2},
			}},
		}
		errs := ValidateGroups(groups)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "[6,2]")
	})

	t.Run("installments on non-credit kind", func(t *testing.T) {
		groups := []model.BrandGroup{
			{Brand: "ELO", ProductTypes: []model.ProductType{
				{Kind: model.KindDebit, InstallmentStart: 2, InstallmentEnd: 6},
			}},
		}
		errs := ValidateGroups(groups)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "does not support installments")
	})

	t.Run("duplicate product row", func(t *testing.T) {
		groups := []model.BrandGroup{
			{Brand: "VISA", ProductTypes: []model.ProductType{
				{Kind: model.KindCredit, InstallmentStart: 2, InstallmentEnd: 6},
				{Kind: model.KindCredit, InstallmentStart: 2, InstallmentEnd: 6},
			}},
		}
		errs := ValidateGroups(groups)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "duplicate row")
	})

	t.Run("unknown kind reported once", func(t *testing.T) {
		groups := []model.BrandGroup{
			{Brand: "VISA", ProductTypes: []model.ProductType{
				{Kind: "boleto", InstallmentStart: 1, InstallmentEnd: 1},
			}},
		}
		errs := ValidateGroups(groups)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "boleto")
	})
}

func TestValidateTable(t *testing.T) {
	table := model.FeeTable{
		Name:             "Tabela Padrão",
		AnticipationType: model.AnticipationCompulsory,
		BrandGroups: []model.BrandGroup{
			{Brand: "VISA", ProductTypes: []model.ProductType{
				{Kind: model.KindCredit, InstallmentStart: 1, InstallmentEnd: 1},
			}},
		},
	}
	assert.Empty(t, ValidateTable(table))

	table.Name = ""
	table.AnticipationType = "SOMETIMES"
	table.CompulsoryAnticipationDays = -1
	errs := ValidateTable(table)
	assert.Len(t, errs, 3)
}

func TestParseField(t *testing.T) {
	f, ok := ParseField("card_mdr")
	require.True(t, ok)
	assert.Equal(t, FieldCardMdr, f)
	assert.False(t, f.AnticipationField())

	f, ok = ParseField("non_card_anticipation_rate")
	require.True(t, ok)
	assert.True(t, f.AnticipationField())

	_, ok = ParseField("effective_rate")
	assert.False(t, ok)
}
