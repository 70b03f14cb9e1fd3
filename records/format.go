package records

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DisplayDateLayout is the en-US two-digit rendering used on the screens.
const DisplayDateLayout = "01/02/2006"

var (
	// "/Date(1750982400000)/" with an optional backslash before each slash,
	// and the optional "+0000" offset some gateways append.
	legacyDatePattern = regexp.MustCompile(`\\?/Date\((\d+)(?:[+-]\d{4})?\)\\?/`)
	// Bare "Date(1750982400000)" for payloads that lost their slashes.
	legacyDateFallback = regexp.MustCompile(`Date\((\d+)(?:[+-]\d{4})?\)`)
)

// ParseLegacyDate decodes a SAP legacy epoch date into a UTC time.
// ok is false when neither pattern matches.
func ParseLegacyDate(raw string) (t time.Time, ok bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, re := range []*regexp.Regexp{legacyDatePattern, legacyDateFallback} {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// FormatLegacyDate renders a legacy epoch date as MM/DD/YYYY. Input that
// cannot be parsed comes back unchanged.
func FormatLegacyDate(raw string) string {
	t, ok := ParseLegacyDate(raw)
	if !ok {
		return raw
	}
	return t.Format(DisplayDateLayout)
}

// ParseMonthKey splits an "MM-YYYY" key. The month in the key is 1-based;
// the returned index is 0-based.
func ParseMonthKey(raw string) (monthIndex int, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || year < 0 {
		return 0, 0, false
	}
	// Out-of-range months are rejected rather than rolled into the next year.
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return month - 1, year, true
}

// FormatMonthKey renders "06-2025" as "June 2025". Malformed keys are
// returned unchanged.
func FormatMonthKey(raw string) string {
	idx, year, ok := ParseMonthKey(raw)
	if !ok {
		return raw
	}
	return monthNames[idx] + " " + strconv.Itoa(year)
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatQuantity renders a quantity with two decimals and an optional
// unit suffix. Unparseable quantities are returned unchanged.
func FormatQuantity(qty, unit string) string {
	if qty == "" {
		return ""
	}
	d, err := decimal.NewFromString(strings.TrimSpace(qty))
	if err != nil {
		return qty
	}
	s := d.StringFixed(2)
	if unit != "" {
		return s + " " + unit
	}
	return s
}
