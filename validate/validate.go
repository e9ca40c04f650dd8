// Package validate holds the input checks shared by the registry and the ledger.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
)

var urlPattern = regexp.MustCompile(`(?i)^(?:http|ftp)s?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// decimalPattern is a plain non-negative decimal: no sign other than +, no exponent, no hex.
var decimalPattern = regexp.MustCompile(`^\+?\d+(?:\.\d+)?$`)

// URL accepts an empty string (no link) or a full http(s)/ftp(s) URL.
func URL(link string) error {
	if link == "" {
		return nil
	}
	if !urlPattern.MatchString(link) {
		return apperror.ErrInvalidURL
	}
	return nil
}

// Value parses a monetary amount. Both "1500.00" and "1500,00" are accepted.
func Value(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperror.ErrInvalidNumber
	}
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	if !decimalPattern.MatchString(raw) {
		return 0, apperror.ErrInvalidNumber
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.Signbit(v) || math.IsInf(v, 0) {
		return 0, apperror.ErrInvalidNumber
	}
	return v, nil
}

// Required rejects blank text for the named field.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validation("%s is required", field)
	}
	return nil
}

// ID parses a positive integer identifier typed by the user.
func ID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("%s must be a positive number", field)
	}
	return id, nil
}
