// Package parse normalizes the free-text values that arrive from imported fee
// spreadsheets and merchant registration forms: Brazilian and international
// number formats, DD/MM/YYYY dates, and free-form business hours/days.
//
// Every function degrades to a documented default instead of returning an
// error; the second return value reports whether the input was actually
// understood so callers can log a warning.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	dateRe   = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	clockRe  = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
	digitsRe = regexp.MustCompile(`\d{1,2}`)
	bitsRe   = regexp.MustCompile(`^[01]{7}$`)
)

// Decimal parses a percentage or currency string into a decimal value.
// It strips "%", "R$" and whitespace, then decides which of "," and "." is
// the decimal separator: whichever appears rightmost wins, so "1.234,56" and
// "1,234.56" both come out as 1234.56. A lone comma followed by at most two
// digits is treated as a decimal separator.
//
// The heuristic is lossy by nature (there is no locale context on imported
// sheets); unparseable input yields (0, false).
func Decimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// Brazilian: "." groups thousands, "," is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// International: "," groups thousands
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Int parses an integer, flooring fractional input. Returns (0, false) when
// the input is not numeric.
func Int(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(math.Floor(f)), true
	}
	return 0, false
}

// BrazilianDate parses a strict DD/MM/YYYY date. The calendar parts are
// range-checked (day 1-31, month 1-12, year 1900-2100) and then round-tripped
// through time.Date so that overflows like 31/02/2024 are rejected rather
// than normalized into March.
func BrazilianDate(raw string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// TimeOfDay normalizes free-text opening/closing hours into "HH:MM".
// Strict HH:MM input passes through; the keywords manhã/tarde/noite map to
// 09:00/14:00/19:00; otherwise the first one-or-two-digit number is taken as
// the hour (clamped to 0-23) and an optional second number as the minute
// (clamped to 0-59). Falls back to "09:00".
func TimeOfDay(raw string) string {
	s := strings.TrimSpace(raw)
	if m := clockRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return twoDigit(hour) + ":" + m[2]
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "manhã") || strings.Contains(lower, "manha"):
		return "09:00"
	case strings.Contains(lower, "tarde"):
		return "14:00"
	case strings.Contains(lower, "noite"):
		return "19:00"
	}

	nums := digitsRe.FindAllString(lower, 2)
	if len(nums) == 0 {
		return "09:00"
	}

	hour, _ := strconv.Atoi(nums[0])
	if hour > 23 {
		hour = 23
	}
	minute := 0
	if len(nums) > 1 {
		minute, _ = strconv.Atoi(nums[1])
		if minute > 59 {
			minute = 59
		}
	}
	return twoDigit(hour) + ":" + twoDigit(minute)
}

// Weekday bit positions for BusinessDays, Monday first.
var weekdayNames = []struct {
	bit   int
	names []string
}{
	{0, []string{"segunda", "seg"}},
	{1, []string{"terça", "terca", "ter"}},
	{2, []string{"quarta", "qua"}},
	{3, []string{"quinta", "qui"}},
	{4, []string{"sexta", "sex"}},
	{5, []string{"sábado", "sabado", "sab"}},
	{6, []string{"domingo", "dom"}},
}

// BusinessDays normalizes a free-text operating-days description into a
// 7-character binary string ordered Monday through Sunday ("1111100" means
// Monday to Friday). Recognized inputs, in priority order: a literal 7-bit
// string, the common range phrases ("segunda a sexta", "segunda a sábado",
// "todos os dias"), and finally a scan for individual day names or
// abbreviations. Unrecognized input defaults to Monday-Friday.
func BusinessDays(raw string) string {
	s := strings.TrimSpace(raw)
	if bitsRe.MatchString(s) {
		return s
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "todos os dias") || strings.Contains(lower, "todo dia"):
		return "1111111"
	case strings.Contains(lower, "segunda a sábado") || strings.Contains(lower, "segunda a sabado"):
		return "1111110"
	case strings.Contains(lower, "segunda a sexta"):
		return "1111100"
	}

	bits := [7]byte{'0', '0', '0', '0', '0', '0', '0'}
	found := false
	for _, day := range weekdayNames {
		for _, name := range day.names {
			if strings.Contains(lower, name) {
				bits[day.bit] = '1'
				found = true
				break
			}
		}
	}
	if !found {
		return "1111100"
	}
	return string(bits[:])
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
