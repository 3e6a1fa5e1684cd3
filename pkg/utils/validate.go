package utils

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// DATE_LAYOUT is the wire format for calendar dates.
const DATE_LAYOUT = "2006-01-02"

var (
	iataCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IsIATACode reports whether s is a 3-letter IATA airport code.
func IsIATACode(s string) bool {
	return iataCodeRegex.MatchString(s)
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DATE_LAYOUT, s)
}

// ParseInt parses an integer, falling back to def on bad input.
func ParseInt(value string, def int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return def
}

// Round2 rounds a value to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
