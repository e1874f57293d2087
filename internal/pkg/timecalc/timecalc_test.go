package timecalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutesBetween(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Minute + 59*time.Second)
	now := start.Add(3 * time.Hour)

	assert.Equal(t, 90, MinutesBetween(start, &end, now), "floors partial minutes")
	assert.Equal(t, 180, MinutesBetween(start, nil, now), "open interval runs to now")

	before := start.Add(-5 * time.Minute)
	assert.Equal(t, 0, MinutesBetween(start, &before, now), "clock skew clamps to zero")
}

func TestLocalDateKey_UsesBusinessZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on the 16th is still the evening of the 15th in New York.
	instant := time.Date(2024, 1, 16, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-15", LocalDateKey(instant, ny))
	assert.Equal(t, "2024-01-16", LocalDateKey(instant, time.UTC))
	assert.Equal(t, "2024-01-16", LocalDateKey(instant, nil))
}

func TestCombineDateAndClockTime_RoundTrip(t *testing.T) {
	for _, zone := range []string{"UTC", "America/New_York", "Asia/Jakarta"} {
		loc := LoadLocation(zone)
		ts, err := CombineDateAndClockTime("2024-01-15", "14:30", loc)
		require.NoError(t, err)

		assert.Equal(t, "2:30 pm", FormatClockTime(&ts, loc), zone)
		assert.Equal(t, "2024-01-15", LocalDateKey(ts, loc), zone)
	}
}

func TestCombineDateAndClockTime_InvalidInput(t *testing.T) {
	_, err := CombineDateAndClockTime("2024-13-40", "14:30", time.UTC)
	assert.Error(t, err)

	_, err = CombineDateAndClockTime("2024-01-15", "2:30pm", time.UTC)
	assert.Error(t, err)

	_, err = CombineDateAndClockTime("2024-01-15", "25:00", time.UTC)
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h0m", FormatDuration(0))
	assert.Equal(t, "8h0m", FormatDuration(480))
	assert.Equal(t, "1h5m", FormatDuration(65))
	assert.Equal(t, "0h0m", FormatDuration(-10))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "No change", FormatDelta(0))
	assert.Equal(t, "+1h 0m", FormatDelta(60))
	assert.Equal(t, "-0h 45m", FormatDelta(-45))
	assert.Equal(t, "+2h 15m", FormatDelta(135))
}

func TestFormatClockTime_Placeholder(t *testing.T) {
	assert.Equal(t, ClockTimePlaceholder, FormatClockTime(nil, time.UTC))

	morning := time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "9:05 am", FormatClockTime(&morning, time.UTC))

	midnight := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "12:00 am", FormatClockTime(&midnight, time.UTC))
}

func TestLoadLocation_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation(""))
	assert.Equal(t, time.UTC, LoadLocation("Mars/Olympus_Mons"))
	assert.Equal(t, "Asia/Jakarta", LoadLocation("Asia/Jakarta").String())
}
