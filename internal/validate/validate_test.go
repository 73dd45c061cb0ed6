package validate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
)

func TestRequired(t *testing.T) {
	v, err := Required("  latte ", "name")
	require.NoError(t, err)
	assert.Equal(t, "latte", v)

	_, err = Required("   ", "name")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 400, apperr.As(err).Status())
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(interface{}, string) (float64, error)
		value   interface{}
		want    float64
		wantErr bool
	}{
		{"positive accepts zero", PositiveNumber, "0", 0, false},
		{"positive accepts float", PositiveNumber, 3.5, 3.5, false},
		{"positive rejects negative", PositiveNumber, "-1", 0, true},
		{"positive rejects text", PositiveNumber, "abc", 0, true},
		{"positive rejects nil", PositiveNumber, nil, 0, true},
		{"non negative accepts zero", NonNegativeNumber, 0, 0, false},
		{"non negative rejects negative", NonNegativeNumber, -0.5, 0, true},
		{"strict rejects zero", StrictlyPositive, "0", 0, true},
		{"strict accepts", StrictlyPositive, " 2.25 ", 2.25, false},
		{"strict rejects NaN text", StrictlyPositive, "NaN", 0, true},
		{"non negative rejects Inf text", NonNegativeNumber, "Inf", 0, true},
		{"number rejects negative Inf", Number, "-Inf", 0, true},
		{"number rejects NaN float", Number, math.NaN(), 0, true},
		{"positive rejects Inf float", PositiveNumber, math.Inf(1), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.value, "price")
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegers(t *testing.T) {
	n, err := PositiveInt("4", "guests")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = PositiveInt(0, "guests")
	assert.Error(t, err)
	_, err = PositiveInt(2.5, "guests")
	assert.Error(t, err)

	n, err = IntRange(5, 1, 5, "rating")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, err = IntRange("6", 1, 5, "rating")
	assert.Error(t, err)
	_, err = IntRange(0, 1, 5, "rating")
	assert.Error(t, err)
}

func TestEmail(t *testing.T) {
	for _, ok := range []string{"a@b.c", " manager@demo.com "} {
		_, err := Email(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "plain", "a.b@host", "a@", "@"} {
		_, err := Email(bad)
		assert.Error(t, err, bad)
	}
}

func TestDates(t *testing.T) {
	d, err := Date("2025-12-01", "", "Date")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())

	_, err = Date("2025-13-01", "", "Date")
	assert.Error(t, err)
	_, err = Date("01/12/2025", domain.DateLayout, "Date")
	assert.Error(t, err)

	dt, err := DateTime("2025-12-01", "19:00")
	require.NoError(t, err)
	assert.Equal(t, 19, dt.Hour())
	_, err = DateTime("2025-12-01", "7pm")
	assert.Error(t, err)
}

func TestFutureDateTime(t *testing.T) {
	now := time.Date(2025, 11, 30, 12, 0, 0, 0, time.Local)
	assert.NoError(t, FutureDateTime(now.Add(time.Minute), now, "reservation time"))
	assert.Error(t, FutureDateTime(now, now, "reservation time"), "equal instant is not in the future")
	assert.Error(t, FutureDateTime(now.Add(-time.Hour), now, "reservation time"))
}

func TestDateRange(t *testing.T) {
	_, _, err := DateRange("2025-01-01", "2025-01-01")
	assert.NoError(t, err)
	_, _, err = DateRange("2025-01-02", "2025-01-01")
	assert.Error(t, err)
	_, _, err = DateRange("2025-01-02", "soon")
	assert.Error(t, err)
}

func TestOneOf(t *testing.T) {
	v, err := OneOf("reserved", domain.TableStatuses, "status")
	require.NoError(t, err)
	assert.Equal(t, "reserved", v)

	_, err = OneOf("broken", domain.TableStatuses, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available, occupied, reserved")
}
