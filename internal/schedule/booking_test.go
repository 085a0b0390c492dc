package schedule_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

func TestBookCreatesManualReservation(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 3)
	svc := newService(t, store)

	r, waitlisted, err := svc.Book(context.Background(), 7, id, false, false)
	require.NoError(t, err)
	require.False(t, waitlisted)
	assert.False(t, r.FromFixedSchedule)
	assert.Equal(t, int64(7), r.UserID)
}

func TestBookRejectsClosedMonth(t *testing.T) {
	store := newStubStore()
	id := store.addSession("2026-06-05", "05:00", schedule.ModalityFocus, 3)
	svc := newService(t, store)

	_, _, err := svc.Book(context.Background(), 7, id, false, false)
	require.ErrorIs(t, err, schedule.ErrWindowClosed)
}

func TestBookRejectsDuplicate(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 3)
	svc := newService(t, store)

	_, _, err := svc.Book(context.Background(), 7, id, false, false)
	require.NoError(t, err)
	_, _, err = svc.Book(context.Background(), 7, id, false, false)
	require.ErrorIs(t, err, schedule.ErrAlreadyBooked)
}

func TestBookFullSessionJoinsWaitlist(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 1)
	store.addReservation(100, id, false, false, mayClock())
	svc := newService(t, store)

	// Without opting into the waitlist the capacity error surfaces.
	_, _, err := svc.Book(context.Background(), 7, id, false, false)
	require.ErrorIs(t, err, schedule.ErrCapacityExceeded)

	_, waitlisted, err := svc.Book(context.Background(), 7, id, false, true)
	require.NoError(t, err)
	require.True(t, waitlisted)
	head, ok, err := store.NextWaitlisted(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), head.UserID)
}

// The capacity invariant must hold no matter how many concurrent callers
// race for the last seats.
func TestBookCapacityInvariantUnderConcurrency(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	const capacity = 3
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, capacity)
	svc := newService(t, store)

	const callers = 40
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			_, _, err := svc.Book(context.Background(), user, id, false, false)
			errs <- err
		}(int64(1000 + i))
	}
	wg.Wait()
	close(errs)

	booked, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			booked++
		default:
			require.ErrorIs(t, err, schedule.ErrCapacityExceeded)
			rejected++
		}
	}
	assert.Equal(t, capacity, booked)
	assert.Equal(t, callers-capacity, rejected)
	assert.Equal(t, capacity, store.activeCount(id))
}

func TestCancelPromotesWaitlistFIFO(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 1)
	svc := newService(t, store)

	_, _, err := svc.Book(context.Background(), 7, id, false, false)
	require.NoError(t, err)
	// Two members queue up in order.
	_, w1, err := svc.Book(context.Background(), 8, id, false, true)
	require.NoError(t, err)
	require.True(t, w1)
	_, w2, err := svc.Book(context.Background(), 9, id, false, true)
	require.NoError(t, err)
	require.True(t, w2)

	holder := store.activeByUser(7)
	require.Len(t, holder, 1)

	cancelled, promoted, err := svc.Cancel(context.Background(), 7, holder[0].ID)
	require.NoError(t, err)
	assert.Equal(t, id, cancelled.SessionID)
	assert.Equal(t, int64(7), cancelled.UserID)
	require.NotNil(t, promoted)
	assert.Equal(t, int64(8), promoted.UserID)
	assert.Equal(t, id, promoted.SessionID)
	assert.Len(t, store.activeByUser(8), 1)
	assert.Empty(t, store.activeByUser(7))

	// Member 9 is still queued for the next free seat.
	head, ok, err := store.NextWaitlisted(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(9), head.UserID)
}

func TestCancelRejectsForeignReservation(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 3)
	rid := store.addReservation(7, id, false, false, mayClock())
	svc := newService(t, store)

	_, _, err := svc.Cancel(context.Background(), 8, rid)
	require.ErrorIs(t, err, schedule.ErrNotOwner)
	require.Len(t, store.activeByUser(7), 1)
}

func TestCancelWithoutWaitlistJustFreesSeat(t *testing.T) {
	store := newStubStore()
	store.openWindow(2026, time.May)
	id := store.addSession("2026-05-08", "05:00", schedule.ModalityFocus, 3)
	rid := store.addReservation(7, id, false, false, mayClock())
	svc := newService(t, store)

	cancelled, promoted, err := svc.Cancel(context.Background(), 7, rid)
	require.NoError(t, err)
	assert.Equal(t, id, cancelled.SessionID)
	assert.Nil(t, promoted)
	assert.Equal(t, 0, store.activeCount(id))
}
