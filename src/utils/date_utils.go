package utils

import (
	"fmt"
	"time"
)

const ISODateFormat = "2006-01-02"

// MonthKey formats (year, month) as the "YYYY-MM" key used by the expense
// summary document.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseISODate parses a "YYYY-MM-DD" date string.
func ParseISODate(dateStr string) (time.Time, error) {
	return time.Parse(ISODateFormat, dateStr)
}

// PrevMonth steps (year, month) one month back, wrapping the year boundary.
func PrevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth steps (year, month) one month forward, wrapping the year boundary.
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
