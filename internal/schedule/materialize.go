package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MaterializeMonth creates one session per active weekly slot per
// matching calendar date in the given month.  The month window must
// exist and be open.  Dates listed in exclude (studio closures,
// holidays) are skipped.  Re-running is safe: dates that already carry a
// non-cancelled session for the slot's time and modality are left alone.
func (s *Service) MaterializeMonth(ctx context.Context, key MonthKey, exclude []time.Time) (MaterializeReport, error) {
	report := MaterializeReport{Month: key}
	excluded := make(map[time.Time]bool, len(exclude))
	for _, d := range exclude {
		excluded[DateOnly(d)] = true
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		openOK, err := tx.MonthWindowOpen(ctx, key)
		if err != nil {
			return err
		}
		if !openOK {
			return fmt.Errorf("month %s: %w", key, ErrWindowClosed)
		}

		slots, err := tx.ListActiveSlots(ctx)
		if err != nil {
			return err
		}
		existing, err := tx.ListSessionsInMonth(ctx, key)
		if err != nil {
			return err
		}
		have := make(map[SlotKey]map[time.Time]bool)
		for _, sess := range existing {
			k := sess.Key()
			if have[k] == nil {
				have[k] = make(map[time.Time]bool)
			}
			have[k][DateOnly(sess.Date)] = true
		}

		var seeds []SessionSeed
		first := time.Date(key.Year, key.Month, 1, 0, 0, 0, 0, time.UTC)
		for d := first; d.Month() == key.Month; d = d.AddDate(0, 0, 1) {
			if excluded[d] {
				report.SkippedExcluded++
				continue
			}
			day := WeekdayOf(d)
			for _, slot := range slots {
				if slot.Day != day {
					continue
				}
				if have[slot.Key()][d] {
					report.SkippedExisting++
					continue
				}
				seeds = append(seeds, SessionSeed{
					Date:      d,
					TimeOfDay: slot.TimeOfDay,
					Modality:  slot.Modality,
					Capacity:  slot.Capacity,
				})
			}
		}
		created, err := tx.CreateSessions(ctx, seeds)
		if err != nil {
			return err
		}
		report.Created = created
		return nil
	})
	if err != nil {
		return MaterializeReport{}, err
	}
	s.log.Info("month materialized",
		zap.String("month", key.String()),
		zap.Int("created", report.Created),
		zap.Int("skipped_existing", report.SkippedExisting),
		zap.Int("skipped_excluded", report.SkippedExcluded),
	)
	return report, nil
}
