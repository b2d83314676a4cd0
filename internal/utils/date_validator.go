package utils

import (
	"fmt"
	"strings"
	"time"
)

type DateFormat string

const (
	FormatISO8601     DateFormat = time.RFC3339
	FormatISO8601Nano DateFormat = time.RFC3339Nano
	FormatISO8601Date DateFormat = "2006-01-02"
	FormatDateTime    DateFormat = "2006-01-02T15:04:05"
	FormatDateTimeMin DateFormat = "2006-01-02T15:04"
	FormatDotDate     DateFormat = "02.01.2006"
	FormatSlashDate   DateFormat = "02/01/2006"
	FormatYearMonth   DateFormat = "2006-01"
)

// Formats without a zone are interpreted in the calendar location.
var dayFormats = []DateFormat{
	FormatISO8601,
	FormatISO8601Nano,
	FormatISO8601Date,
	FormatDateTime,
	FormatDateTimeMin,
	FormatDotDate,
	FormatSlashDate,
	FormatYearMonth,
}

// ParseDate accepts the date formats the clients send and returns the instant in loc.
func ParseDate(input string, loc *time.Location) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}

	for _, format := range dayFormats {
		parsed, err := time.ParseInLocation(string(format), input, loc)
		if err == nil {
			return parsed.In(loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %s", input)
}

// ParseDay parses input and truncates it to the start of its calendar day in loc.
func ParseDay(input string, loc *time.Location) (time.Time, error) {
	parsed, err := ParseDate(input, loc)
	if err != nil {
		return time.Time{}, err
	}
	return DayStart(parsed, loc), nil
}
