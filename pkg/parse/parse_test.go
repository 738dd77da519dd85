package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"brazilian thousands", "1.234,56", "1234.56", true},
		{"international thousands", "1,234.56", "1234.56", true},
		{"percentage suffix", "2,50%", "2.5", true},
		{"currency prefix", "R$ 1.500,00", "1500", true},
		{"plain decimal", "3.14", "3.14", true},
		{"plain integer", "42", "42", true},
		{"lone comma as decimal", "2,5", "2.5", true},
		{"lone comma as thousands", "1,500", "1500", true},
		{"multiple dots grouping", "1.234.567,89", "1234567.89", true},
		{"whitespace", "  7,25 % ", "7.25", true},
		{"garbage", "abc%", "0", false},
		{"empty", "", "0", false},
		{"symbols only", "R$ %", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decimal(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"12", 12, true},
		{" 12 ", 12, true},
		{"12.9", 12, true},
		{"-3.2", -4, true},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := Int(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestBrazilianDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, ok := BrazilianDate("15/08/2024")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("leap day on leap year", func(t *testing.T) {
		got, ok := BrazilianDate("29/02/2024")
		require.True(t, ok)
		assert.Equal(t, "2024-02-29", got.Format("2006-01-02"))
	})

	t.Run("leap day on non-leap year", func(t *testing.T) {
		_, ok := BrazilianDate("29/02/2023")
		assert.False(t, ok)
	})

	t.Run("day overflow rejected, not normalized", func(t *testing.T) {
		_, ok := BrazilianDate("31/02/2024")
		assert.False(t, ok)
	})

	t.Run("malformed inputs", func(t *testing.T) {
		for _, input := range []string{"2024-02-15", "1/2/2024", "00/01/2024", "15/13/2024", "15/01/1899", "15/01/2101", ""} {
			_, ok := BrazilianDate(input)
			assert.False(t, ok, "input %q", input)
		}
	})
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"08:30", "08:30"},
		{"8:30", "08:30"},
		{"manhã", "09:00"},
		{"pela manha", "09:00"},
		{"à tarde", "14:00"},
		{"noite", "19:00"},
		{"abre às 10", "10:00"},
		{"10h30", "10:30"},
		{"99", "23:00"},
		{"sem horário", "09:00"},
		{"", "09:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeOfDay(tt.input), "input %q", tt.input)
	}
}

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1111100", "1111100"},
		{"0000011", "0000011"},
		{"segunda a sexta", "1111100"},
		{"Segunda a Sábado", "1111110"},
		{"todos os dias", "1111111"},
		{"segunda, quarta e sexta", "1010100"},
		{"sábado e domingo", "0000011"},
		{"qualquer coisa", "1111100"},
		{"", "1111100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BusinessDays(tt.input), "input %q", tt.input)
	}
}
