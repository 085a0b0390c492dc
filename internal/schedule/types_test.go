package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

func TestWeekdayOfUsesISOConvention(t *testing.T) {
	// 2026-02-25 is a Wednesday; under Monday=1..Sunday=7 that is day 3.
	wed := time.Date(2026, time.February, 25, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, schedule.Wednesday, schedule.WeekdayOf(wed))
	assert.Equal(t, 3, int(schedule.WeekdayOf(wed)))

	// A full week starting on a known Monday maps onto 1..7 in order.
	monday := time.Date(2026, time.February, 23, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		got := schedule.WeekdayOf(d)
		assert.Equal(t, schedule.Weekday(i+1), got, "offset %d (%s)", i, d.Weekday())
		assert.True(t, got.Valid())
	}
}

func TestWeekdayStringNames(t *testing.T) {
	assert.Equal(t, "Monday", schedule.Monday.String())
	assert.Equal(t, "Sunday", schedule.Sunday.String())
	assert.False(t, schedule.Weekday(0).Valid())
	assert.False(t, schedule.Weekday(8).Valid())
}

func TestNormalizeTimeOfDay(t *testing.T) {
	for input, want := range map[string]string{
		"5:00":     "05:00",
		"05:00":    "05:00",
		"05:00:00": "05:00",
		" 16:30 ":  "16:30",
	} {
		got, err := schedule.NormalizeTimeOfDay(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	for _, bad := range []string{"", "25:00", "10:61", "noon", "10"} {
		_, err := schedule.NormalizeTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestSessionKeyDerivesWeekdayFromDate(t *testing.T) {
	sess := schedule.SessionInfo{
		Date:      time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), // Friday
		TimeOfDay: "05:00",
		Modality:  schedule.ModalityFocus,
	}
	assert.Equal(t, schedule.SlotKey{
		Day:       schedule.Friday,
		TimeOfDay: "05:00",
		Modality:  schedule.ModalityFocus,
	}, sess.Key())
}
