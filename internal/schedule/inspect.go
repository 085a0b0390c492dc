package schedule

import "context"

// Inspect builds a read-only diagnostic for one member: which of their
// assignments have no materialized sessions inside the open windows, how
// many future reservations they hold, and whether any of those sit on
// duplicate or overbooked sessions.  It replaces the ad-hoc
// investigation queries operators used to run by hand.
func (s *Service) Inspect(ctx context.Context, userID int64) (UserReport, error) {
	report := UserReport{UserID: userID}

	assignments, err := s.store.ListActiveFixedAssignments(ctx, userID)
	if err != nil {
		return report, err
	}
	report.Assignments = assignments

	windows, err := s.store.ListOpenMonthWindows(ctx)
	if err != nil {
		return report, err
	}
	report.OpenWindows = windows
	open := make(map[MonthKey]bool, len(windows))
	for _, w := range windows {
		open[w] = true
	}

	sessions, err := s.store.ListFutureSessions(ctx, s.today())
	if err != nil {
		return report, err
	}
	matched := make(map[SlotKey]bool)
	var ids []int64
	for _, sess := range sessions {
		if !open[MonthKeyOf(sess.Date)] {
			continue
		}
		matched[sess.Key()] = true
		ids = append(ids, sess.ID)
	}
	for _, a := range assignments {
		if !matched[a.Key()] {
			report.UnmaterializedSlots = append(report.UnmaterializedSlots, a)
		}
	}

	reservations, err := s.store.ListActiveReservations(ctx, userID, ids)
	if err != nil {
		return report, err
	}
	report.FutureReservations = len(reservations)
	perSession := make(map[int64]int)
	for _, r := range reservations {
		perSession[r.SessionID]++
	}
	for id, n := range perSession {
		if n > 1 {
			report.DuplicateSessionIDs = append(report.DuplicateSessionIDs, id)
		}
	}

	overbooked, err := s.store.ListOverbookedSessions(ctx, s.today())
	if err != nil {
		return report, err
	}
	mine := make(map[int64]bool, len(perSession))
	for id := range perSession {
		mine[id] = true
	}
	for _, sess := range overbooked {
		if mine[sess.ID] {
			report.OverbookedSessionIDs = append(report.OverbookedSessionIDs, sess.ID)
		}
	}
	return report, nil
}
