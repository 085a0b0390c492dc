package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

func TestMaterializeMonthCreatesOneSessionPerMatchingDate(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.addSlot(schedule.Friday, "05:00", schedule.ModalityFocus, 3)
	store.addSlot(schedule.Wednesday, "16:00", schedule.ModalityReduced, 8)
	svc := newService(t, store)

	report, err := svc.MaterializeMonth(context.Background(), schedule.MonthKey{Year: 2026, Month: time.May}, nil)
	require.NoError(t, err)
	// Five Fridays plus four Wednesdays.
	assert.Equal(t, 9, report.Created)
	assert.Zero(t, report.SkippedExisting)

	sessions, err := store.ListSessionsInMonth(context.Background(), schedule.MonthKey{Year: 2026, Month: time.May})
	require.NoError(t, err)
	require.Len(t, sessions, 9)
	for _, sess := range sessions {
		day := schedule.WeekdayOf(sess.Date)
		switch sess.Modality {
		case schedule.ModalityFocus:
			assert.Equal(t, schedule.Friday, day)
			assert.Equal(t, "05:00", sess.TimeOfDay)
			assert.Equal(t, 3, sess.Capacity)
		case schedule.ModalityReduced:
			assert.Equal(t, schedule.Wednesday, day)
			assert.Equal(t, "16:00", sess.TimeOfDay)
			assert.Equal(t, 8, sess.Capacity)
		default:
			t.Fatalf("unexpected modality %q", sess.Modality)
		}
	}
}

func TestMaterializeMonthIsIdempotent(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.addSlot(schedule.Friday, "05:00", schedule.ModalityFocus, 3)
	svc := newService(t, store)
	key := schedule.MonthKey{Year: 2026, Month: time.May}

	first, err := svc.MaterializeMonth(context.Background(), key, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Created)

	second, err := svc.MaterializeMonth(context.Background(), key, nil)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 5, second.SkippedExisting)

	sessions, err := store.ListSessionsInMonth(context.Background(), key)
	require.NoError(t, err)
	assert.Len(t, sessions, 5)
}

func TestMaterializeMonthHonorsExclusions(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.addSlot(schedule.Friday, "05:00", schedule.ModalityFocus, 3)
	svc := newService(t, store)

	holiday := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.MaterializeMonth(context.Background(), schedule.MonthKey{Year: 2026, Month: time.May}, []time.Time{holiday})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Created)
	assert.Equal(t, 1, report.SkippedExcluded)
}

func TestMaterializeMonthRequiresOpenWindow(t *testing.T) {
	store := newStubStore()
	store.addSlot(schedule.Friday, "05:00", schedule.ModalityFocus, 3)
	svc := newService(t, store)

	_, err := svc.MaterializeMonth(context.Background(), schedule.MonthKey{Year: 2026, Month: time.May}, nil)
	require.ErrorIs(t, err, schedule.ErrWindowClosed)
}
