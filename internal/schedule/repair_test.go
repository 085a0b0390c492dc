package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

func TestTrimOverbookedKeepsOldestReservations(t *testing.T) {
	store := newStubStore()
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 2)
	base := mayClock()
	// Four active reservations on a capacity-2 session, created in order.
	keep1 := store.addReservation(1, id, true, false, base)
	keep2 := store.addReservation(2, id, true, false, base.Add(time.Minute))
	evict1 := store.addReservation(3, id, true, false, base.Add(2*time.Minute))
	evict2 := store.addReservation(4, id, false, false, base.Add(3*time.Minute))
	svc := newService(t, store)

	repaired, err := svc.TrimOverbooked(context.Background())
	require.NoError(t, err)
	require.Len(t, repaired, 1)
	r := repaired[0]
	assert.Equal(t, id, r.SessionID)
	assert.Equal(t, 2, r.Capacity)
	assert.Equal(t, 4, r.Active)
	require.Len(t, r.Evicted, 2)
	assert.Equal(t, evict1, r.Evicted[0].ID)
	assert.Equal(t, evict2, r.Evicted[1].ID)

	assert.Equal(t, 2, store.activeCount(id))
	assert.Len(t, store.activeByUser(1), 1)
	assert.Len(t, store.activeByUser(2), 1)
	assert.Empty(t, store.activeByUser(3))
	_ = keep1
	_ = keep2

	// Evicted members are queued for the seat, oldest eviction first.
	head, ok, err := store.NextWaitlisted(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), head.UserID)
}

func TestTrimOverbookedBreaksTimestampTiesByID(t *testing.T) {
	store := newStubStore()
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 1)
	at := mayClock()
	first := store.addReservation(1, id, true, false, at)
	second := store.addReservation(2, id, true, false, at)
	svc := newService(t, store)

	repaired, err := svc.TrimOverbooked(context.Background())
	require.NoError(t, err)
	require.Len(t, repaired, 1)
	require.Len(t, repaired[0].Evicted, 1)
	assert.Equal(t, second, repaired[0].Evicted[0].ID)
	assert.Len(t, store.activeByUser(1), 1)
	_ = first
}

func TestTrimOverbookedIgnoresHealthySessions(t *testing.T) {
	store := newStubStore()
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 3)
	store.addReservation(1, id, true, false, mayClock())
	svc := newService(t, store)

	repaired, err := svc.TrimOverbooked(context.Background())
	require.NoError(t, err)
	assert.Empty(t, repaired)
	assert.Equal(t, 1, store.activeCount(id))
}

func TestInspectReportsUnmaterializedSlots(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	store.assign(7, schedule.Friday, "05:00", schedule.ModalityFocus)
	store.assign(7, schedule.Monday, "07:00", schedule.ModalityFocus)
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 3)
	store.addReservation(7, id, true, false, mayClock())
	svc := newService(t, store)

	report, err := svc.Inspect(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, report.Assignments, 2)
	require.Len(t, report.UnmaterializedSlots, 1)
	assert.Equal(t, schedule.Monday, report.UnmaterializedSlots[0].Day)
	assert.Equal(t, 1, report.FutureReservations)
	assert.Empty(t, report.DuplicateSessionIDs)
	assert.Empty(t, report.OverbookedSessionIDs)
}
