// Package validate holds the field checks run before any workflow touches
// the store. Each check returns the normalized value or a validation error;
// callers stop at the first failure.
package validate

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
)

// DateTimeLayout is the layout of a date and a time joined by one space.
const DateTimeLayout = domain.DateLayout + " " + domain.TimeLayout

// Required trims value and fails when nothing is left.
func Required(value, name string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apperr.Validation("%s is required", name)
	}
	return v, nil
}

func toFloat(value interface{}, name string) (float64, error) {
	if value == nil {
		return 0, apperr.Validation("%s must be a number", name)
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperr.Validation("%s must be a number", name)
	}
	return f, nil
}

// Number parses value as any number.
func Number(value interface{}, name string) (float64, error) {
	return toFloat(value, name)
}

// PositiveNumber parses value as a number and rejects negatives. Zero is
// accepted.
func PositiveNumber(value interface{}, name string) (float64, error) {
	f, err := toFloat(value, name)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, apperr.Validation("%s must be a positive number", name)
	}
	return f, nil
}

// NonNegativeNumber parses value as a number and rejects negatives.
func NonNegativeNumber(value interface{}, name string) (float64, error) {
	f, err := toFloat(value, name)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, apperr.Validation("%s must not be negative", name)
	}
	return f, nil
}

// StrictlyPositive parses value as a number greater than zero.
func StrictlyPositive(value interface{}, name string) (float64, error) {
	f, err := toFloat(value, name)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, apperr.Validation("%s must be greater than zero", name)
	}
	return f, nil
}

// PositiveInt parses value as a whole number greater than zero.
func PositiveInt(value interface{}, name string) (int, error) {
	f, err := toFloat(value, name)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, apperr.Validation("%s must be a whole number", name)
	}
	if n <= 0 {
		return 0, apperr.Validation("%s must be greater than zero", name)
	}
	return n, nil
}

// IntRange parses value as a whole number within [min, max].
func IntRange(value interface{}, min, max int, name string) (int, error) {
	f, err := toFloat(value, name)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f || n < min || n > max {
		return 0, apperr.Validation("%s must be a whole number between %d and %d", name, min, max)
	}
	return n, nil
}

// Email accepts a value with an "@" whose domain part contains a dot.
func Email(value string) (string, error) {
	v := strings.TrimSpace(value)
	at := strings.Index(v, "@")
	if at < 0 || !strings.Contains(v[at+1:], ".") {
		return "", apperr.Validation("invalid email address")
	}
	return v, nil
}

// Date parses value with layout exactly. An empty layout means
// domain.DateLayout.
func Date(value, layout, name string) (time.Time, error) {
	if layout == "" {
		layout = domain.DateLayout
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid %s format (%s)", strings.ToLower(name), layout)
	}
	return t, nil
}

// DateTime parses a date and a time-of-day into one local instant.
func DateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.Local)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date/time format (%s)", DateTimeLayout)
	}
	return t, nil
}

// FutureDateTime fails unless t is strictly after now.
func FutureDateTime(t, now time.Time, name string) error {
	if !t.After(now) {
		return apperr.Validation("%s must be in the future", name)
	}
	return nil
}

// DateRange parses both dates and fails when end is before start.
func DateRange(start, end string) (time.Time, time.Time, error) {
	s, err := Date(start, "", "start date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := Date(end, "", "end date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, apperr.Validation("end date must not be before start date")
	}
	return s, e, nil
}

// OneOf fails when value is not in allowed.
func OneOf(value string, allowed []string, name string) (string, error) {
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", apperr.Validation("invalid %s %q, expected one of %s", name, value, strings.Join(allowed, ", "))
}
