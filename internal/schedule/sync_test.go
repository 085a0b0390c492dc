package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

// May 2026 has five Fridays (1, 8, 15, 22, 29) and four Wednesdays
// (6, 13, 20, 27).  The clock is pinned to the morning of May 1st.
var mayClock = func() time.Time {
	return time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
}

var mayFridays = []string{"2026-05-01", "2026-05-08", "2026-05-15", "2026-05-22", "2026-05-29"}
var mayWednesdays = []string{"2026-05-06", "2026-05-13", "2026-05-20", "2026-05-27"}

func newService(t *testing.T, store schedule.Store) *schedule.Service {
	t.Helper()
	svc, err := schedule.NewService(store, schedule.WithClock(mayClock))
	require.NoError(t, err)
	return svc
}

func addFridaySessions(store *stubStore, capacity int) []int64 {
	ids := make([]int64, 0, len(mayFridays))
	for _, d := range mayFridays {
		ids = append(ids, store.addSession(d, "05:00", schedule.ModalityFocus, capacity))
	}
	return ids
}

func TestSyncCreatesReservationPerMaterializedSession(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Friday, "05:00", schedule.ModalityFocus)
	addFridaySessions(store, 3)
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Len(t, res.Created, 5)
	require.Empty(t, res.Deleted)
	require.Empty(t, res.Warnings)
	for _, r := range res.Created {
		require.True(t, r.FromFixedSchedule)
		require.Equal(t, int64(7), r.UserID)
	}
	require.Len(t, store.activeByUser(7), 5)
}

func TestSyncIsIdempotent(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Friday, "05:00", schedule.ModalityFocus)
	addFridaySessions(store, 3)
	svc := newService(t, store)

	first, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Len(t, first.Created, 5)

	second, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Empty(t, second.Created)
	require.Empty(t, second.Deleted)
	require.Empty(t, second.Warnings)
	require.Len(t, store.activeByUser(7), 5)
}

func TestSyncReportsFullSessionAndWaitlists(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Friday, "05:00", schedule.ModalityFocus)
	ids := addFridaySessions(store, 3)
	// The second Friday is already full with other members.
	now := mayClock()
	for user := int64(100); user < 103; user++ {
		store.addReservation(user, ids[1], false, false, now)
	}
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{WaitlistOnFull: true})
	require.NoError(t, err)
	require.Len(t, res.Created, 4)
	require.Empty(t, res.Deleted)
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	require.Equal(t, schedule.WarnCapacityExceeded, w.Kind)
	require.Equal(t, ids[1], w.SessionID)
	require.True(t, w.Waitlisted)
	require.Equal(t, 3, store.activeCount(ids[1]))
}

func TestSyncPlanChangeReplacesReservations(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Friday, "05:00", schedule.ModalityFocus)
	addFridaySessions(store, 3)
	for _, d := range mayWednesdays {
		store.addSession(d, "16:00", schedule.ModalityReduced, 8)
	}
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Len(t, res.Created, 5)

	// Admin moves the member from Friday focus to Wednesday reduced.
	store.clearAssignments(7)
	store.assign(7, schedule.Wednesday, "16:00", schedule.ModalityReduced)

	res, err = svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Len(t, res.Deleted, 5)
	require.Len(t, res.Created, 4)

	remaining := store.activeByUser(7)
	require.Len(t, remaining, 4)
	for _, r := range remaining {
		sess, err := store.GetSession(context.Background(), r.SessionID)
		require.NoError(t, err)
		require.Equal(t, schedule.Wednesday, schedule.WeekdayOf(sess.Date))
		require.Equal(t, schedule.ModalityReduced, sess.Modality)
	}
}

func TestSyncNoOpenWindowsIsFailSafe(t *testing.T) {
	store := newStubStore()
	store.assign(7, schedule.Friday, "05:00", schedule.ModalityFocus)
	ids := addFridaySessions(store, 3)
	// An existing reservation that no assignment matches anymore.
	store.addReservation(7, ids[0], true, false, mayClock())
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Empty(t, res.Created)
	require.Empty(t, res.Deleted)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, schedule.WarnInvalidWindow, res.Warnings[0].Kind)
	require.Len(t, store.activeByUser(7), 1)
}

func TestSyncNeverTouchesOtherUsers(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Friday, "05:00", schedule.ModalityFocus)
	ids := addFridaySessions(store, 3)
	// Member 8 holds a reservation that matches nothing in member 7's plan.
	other := store.addReservation(8, ids[2], true, false, mayClock())
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.NotContains(t, res.Deleted, other)
	require.Len(t, store.activeByUser(8), 1)
}

func TestSyncLeavesClosedMonthsUntouched(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Wednesday, "16:00", schedule.ModalityReduced)
	for _, d := range mayWednesdays {
		store.addSession(d, "16:00", schedule.ModalityReduced, 8)
	}
	// A stale Friday reservation in June, whose window is not open.  The
	// deletion pass must not reach it.
	june := store.addSession("2026-06-05", "05:00", schedule.ModalityFocus, 3)
	stale := store.addReservation(7, june, true, false, mayClock())
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.NotContains(t, res.Deleted, stale)
	require.Len(t, res.Created, 4)
	require.Len(t, store.activeByUser(7), 5)
}

func TestSyncPreservesMakeupReservations(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Wednesday, "16:00", schedule.ModalityReduced)
	for _, d := range mayWednesdays {
		store.addSession(d, "16:00", schedule.ModalityReduced, 8)
	}
	// A make-up class on a Friday the member's plan does not cover.
	friday := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 3)
	makeup := store.addReservation(7, friday, false, true, mayClock())
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.NotContains(t, res.Deleted, makeup)
	require.Len(t, store.activeByUser(7), 5)
}

func TestSyncWarnsOnUnmaterializedSlot(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Monday, "07:00", schedule.ModalityFocus)
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Empty(t, res.Created)
	require.Empty(t, res.Deleted)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, schedule.WarnSlotNotMaterialized, res.Warnings[0].Kind)
}

func TestSyncEmptyPlanPrunesFixedReservations(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	ids := addFridaySessions(store, 3)
	store.addReservation(7, ids[0], true, false, mayClock())
	store.addReservation(7, ids[1], false, false, mayClock())
	svc := newService(t, store)

	res, err := svc.SyncUser(context.Background(), 7, schedule.SyncOptions{})
	require.NoError(t, err)
	require.Len(t, res.Deleted, 2)
	require.Empty(t, store.activeByUser(7))
}
