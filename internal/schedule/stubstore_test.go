package schedule_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

// stubStore is an in-memory Store.  Every method takes the store mutex,
// so CreateReservation's capacity check-and-insert is atomic exactly as
// the SQL implementation guarantees, which lets the stress tests exercise
// the capacity invariant with real goroutines.  WithTx is a passthrough;
// transactional rollback is not simulated.
type stubStore struct {
	mu           sync.Mutex
	nextID       int64
	assignments  map[int64][]schedule.SlotRef
	windows      map[schedule.MonthKey]bool
	slots        []schedule.Slot
	sessions     map[int64]schedule.SessionInfo
	reservations map[int64]schedule.ReservationInfo
	cancelled    map[int64]bool
	waitlist     []schedule.WaitlistEntry
}

func newStubStore() *stubStore {
	return &stubStore{
		assignments:  make(map[int64][]schedule.SlotRef),
		windows:      make(map[schedule.MonthKey]bool),
		sessions:     make(map[int64]schedule.SessionInfo),
		reservations: make(map[int64]schedule.ReservationInfo),
		cancelled:    make(map[int64]bool),
	}
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

// Fixture helpers.

func (s *stubStore) assign(userID int64, day schedule.Weekday, tod string, mod schedule.Modality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[userID] = append(s.assignments[userID], schedule.SlotRef{
		SlotID: s.id(), Day: day, TimeOfDay: tod, Modality: mod,
	})
}

func (s *stubStore) clearAssignments(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[userID] = nil
}

func (s *stubStore) openWindow(year int, month time.Month) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[schedule.MonthKey{Year: year, Month: month}] = true
}

func (s *stubStore) addSlot(day schedule.Weekday, tod string, mod schedule.Modality, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = append(s.slots, schedule.Slot{
		ID: s.id(), Day: day, TimeOfDay: tod, Modality: mod, Capacity: capacity,
	})
}

func (s *stubStore) addSession(date string, tod string, mod schedule.Modality, capacity int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	id := s.id()
	s.sessions[id] = schedule.SessionInfo{
		ID: id, Date: d, TimeOfDay: tod, Modality: mod, Capacity: capacity,
	}
	return id
}

func (s *stubStore) addReservation(userID, sessionID int64, fromFixed, makeup bool, createdAt time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.reservations[id] = schedule.ReservationInfo{
		ID: id, UserID: userID, SessionID: sessionID,
		FromFixedSchedule: fromFixed, Makeup: makeup, CreatedAt: createdAt,
	}
	return id
}

func (s *stubStore) activeByUser(userID int64) []schedule.ReservationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schedule.ReservationInfo
	for id, r := range s.reservations {
		if !s.cancelled[id] && r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubStore) activeCount(sessionID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCountLocked(sessionID)
}

func (s *stubStore) activeCountLocked(sessionID int64) int {
	n := 0
	for id, r := range s.reservations {
		if !s.cancelled[id] && r.SessionID == sessionID {
			n++
		}
	}
	return n
}

// Store implementation.

func (s *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx schedule.Store) error) error {
	return fn(ctx, s)
}

func (s *stubStore) ListActiveFixedAssignments(_ context.Context, userID int64) ([]schedule.SlotRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schedule.SlotRef(nil), s.assignments[userID]...), nil
}

func (s *stubStore) ListOpenMonthWindows(context.Context) ([]schedule.MonthKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schedule.MonthKey
	for k, open := range s.windows {
		if open {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *stubStore) MonthWindowOpen(_ context.Context, key schedule.MonthKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows[key], nil
}

func (s *stubStore) ListFutureSessions(_ context.Context, from time.Time) ([]schedule.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schedule.SessionInfo
	for _, sess := range s.sessions {
		if !sess.Date.Before(from) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) GetSession(_ context.Context, sessionID int64) (schedule.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return schedule.SessionInfo{}, schedule.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubStore) ListActiveReservations(_ context.Context, userID int64, sessionIDs []int64) ([]schedule.ReservationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[int64]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		want[id] = true
	}
	var out []schedule.ReservationInfo
	for id, r := range s.reservations {
		if !s.cancelled[id] && r.UserID == userID && want[r.SessionID] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) GetReservation(_ context.Context, reservationID int64) (schedule.ReservationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[reservationID]
	if !ok || s.cancelled[reservationID] {
		return schedule.ReservationInfo{}, schedule.ErrReservationNotFound
	}
	return r, nil
}

func (s *stubStore) DeleteReservations(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.cancelled[id] = true
	}
	return nil
}

func (s *stubStore) CreateReservation(_ context.Context, userID, sessionID int64, fromFixed, makeup bool) (schedule.ReservationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return schedule.ReservationInfo{}, schedule.ErrSessionNotFound
	}
	for id, r := range s.reservations {
		if !s.cancelled[id] && r.UserID == userID && r.SessionID == sessionID {
			return schedule.ReservationInfo{}, schedule.ErrAlreadyBooked
		}
	}
	if s.activeCountLocked(sessionID) >= sess.Capacity {
		return schedule.ReservationInfo{}, schedule.ErrCapacityExceeded
	}
	id := s.id()
	r := schedule.ReservationInfo{
		ID: id, UserID: userID, SessionID: sessionID,
		FromFixedSchedule: fromFixed, Makeup: makeup,
		CreatedAt: time.Now().UTC(),
	}
	s.reservations[id] = r
	return r, nil
}

func (s *stubStore) EnqueueWaitlist(_ context.Context, userID, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.waitlist {
		if e.UserID == userID && e.SessionID == sessionID {
			return nil
		}
	}
	s.waitlist = append(s.waitlist, schedule.WaitlistEntry{
		ID: s.id(), SessionID: sessionID, UserID: userID, CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *stubStore) NextWaitlisted(_ context.Context, sessionID int64) (schedule.WaitlistEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.waitlist {
		if e.SessionID == sessionID {
			return e, true, nil
		}
	}
	return schedule.WaitlistEntry{}, false, nil
}

func (s *stubStore) RemoveWaitlistEntry(_ context.Context, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.waitlist {
		if e.ID == entryID {
			s.waitlist = append(s.waitlist[:i], s.waitlist[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *stubStore) ListActiveSlots(context.Context) ([]schedule.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schedule.Slot(nil), s.slots...), nil
}

func (s *stubStore) ListSessionsInMonth(_ context.Context, key schedule.MonthKey) ([]schedule.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schedule.SessionInfo
	for _, sess := range s.sessions {
		if schedule.MonthKeyOf(sess.Date) == key {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *stubStore) CreateSessions(_ context.Context, seeds []schedule.SessionSeed) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := 0
	for _, seed := range seeds {
		exists := false
		for _, sess := range s.sessions {
			if sess.Date.Equal(seed.Date) && sess.TimeOfDay == seed.TimeOfDay && sess.Modality == seed.Modality {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		id := s.id()
		s.sessions[id] = schedule.SessionInfo{
			ID: id, Date: seed.Date, TimeOfDay: seed.TimeOfDay,
			Modality: seed.Modality, Capacity: seed.Capacity,
		}
		created++
	}
	return created, nil
}

func (s *stubStore) ListOverbookedSessions(_ context.Context, from time.Time) ([]schedule.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schedule.SessionInfo
	for _, sess := range s.sessions {
		if sess.Date.Before(from) {
			continue
		}
		if s.activeCountLocked(sess.ID) > sess.Capacity {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) ActiveReservationsBySession(_ context.Context, sessionID int64) ([]schedule.ReservationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schedule.ReservationInfo
	for id, r := range s.reservations {
		if !s.cancelled[id] && r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
