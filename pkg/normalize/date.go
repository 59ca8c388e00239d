package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order against export date cells.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/06",
	"1/2/06 15:04",
	"01-02-06",
	"1-2-06",
	"01-02-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
}

// Excel serial day numbers accepted for unformatted date cells (1900-01-01 .. 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseDate parses an export date cell. Cells already rendered in AP style are
// accepted too, so re-cleaning a cleaned table is stable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return truncateDay(t), true
	}

	expanded := expandAPMonth(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, expanded); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a calendar date as "Sept. 5, 2025".
func FormatDate(t time.Time) string {
	s := t.Format("January 2, 2006")
	for _, m := range apMonths {
		if strings.HasPrefix(s, m.full) {
			return m.ap + strings.TrimPrefix(s, m.full)
		}
	}
	return s
}

// Date normalizes an export date cell. Unparseable input yields "", a zero
// time and false; the zero time sorts after every valid date.
func Date(s string) (string, time.Time, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return "", time.Time{}, false
	}
	return FormatDate(t), t, true
}

func expandAPMonth(s string) string {
	for _, m := range apMonths {
		if strings.HasPrefix(s, m.ap) {
			return m.full + strings.TrimPrefix(s, m.ap)
		}
	}
	return s
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
