package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats are tried in order; the first successful parse wins.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Excel serial dates count days from this epoch (the 1900 leap-year bug
// makes it Dec 30, not 31).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a spreadsheet date cell. It accepts the common textual
// formats plus raw Excel serial numbers, which excelize surfaces for
// unformatted date cells.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromExcelSerial(serial)
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

func fromExcelSerial(serial float64) (time.Time, error) {
	// 61 = 1900-03-01, past the phantom leap day; ~2958465 = year 9999.
	if serial < 61 || serial > 2958465 {
		return time.Time{}, fmt.Errorf("value %v is not a plausible date serial", serial)
	}
	days := int(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, days)
	if frac > 0 {
		t = t.Add(time.Duration(frac * 24 * float64(time.Hour)))
	}
	return t, nil
}

// currency markers stripped before numeric parsing.
var currencySymbols = []string{"$", "€", "£", "R$", "USD", "EUR", "GBP"}

// ParseAmount coerces an amount cell to a decimal. Currency symbols,
// thousands separators and accounting-style parentheses are tolerated;
// anything else non-numeric fails, which drops the row upstream.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}

	// 1,234.56 style thousands separators
	if strings.Contains(s, ",") && strings.Contains(s, ".") &&
		strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
