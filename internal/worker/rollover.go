// Package worker runs the background monthly rollover. Clients apply the
// rollover eagerly when they load a household, but a household nobody opens
// during a month boundary would keep stale flags until the next visit. The
// worker closes that gap by sweeping every household on an interval.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/store"
)

// maxHouseholdRecords bounds a single sweep.
const maxHouseholdRecords = 1000

type RolloverWorker struct {
	records  records.Store
	events   store.EventPublisher
	interval time.Duration
	wake     chan struct{}
}

// NewRolloverWorker builds a worker. events may be nil.
func NewRolloverWorker(rs records.Store, events store.EventPublisher, interval time.Duration) *RolloverWorker {
	return &RolloverWorker{
		records:  rs,
		events:   events,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Wake requests a sweep ahead of the next tick. Safe from any goroutine;
// calls made while a wake is already pending collapse into one.
func (w *RolloverWorker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// ProcessOnce sweeps every household and rolls over the stale ones. It keeps
// going past per-household failures and returns the count of households
// rolled over plus the first error encountered, if any.
func (w *RolloverWorker) ProcessOnce(ctx context.Context, now time.Time) (int, error) {
	households, err := w.records.List(ctx, records.CollectionHouseholds,
		records.Query{}, records.Options{MaxRecords: maxHouseholdRecords})
	if err != nil {
		return 0, fmt.Errorf("list households: %w", err)
	}

	currentMonth := core.MonthID(now)
	var rolled int
	var firstErr error
	for _, rec := range households {
		monthID := rec.Fields.String("monthId")
		if monthID == currentMonth {
			continue
		}

		household := core.Household{
			ID:              rec.ID,
			Code:            rec.Fields.String("householdCode"),
			MonthID:         monthID,
			DailyAdjustment: rec.Fields.Int("dailyAdjustment"),
		}
		slog.InfoContext(ctx, "Rolling household over",
			"household_code", household.Code,
			"stored_month", monthID,
			"current_month", currentMonth)

		if err := store.ApplyRollover(ctx, w.records, &household, now); err != nil {
			slog.ErrorContext(ctx, "Rollover failed",
				"household_code", household.Code, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rolled++

		if w.events != nil {
			if err := w.events.PublishHouseholdEvent(ctx, household.Code, store.EventRollover); err != nil {
				slog.WarnContext(ctx, "Failed to publish rollover event",
					"household_code", household.Code, "error", err)
			}
		}
	}

	return rolled, firstErr
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (w *RolloverWorker) Run(ctx context.Context) error {
	if count, err := w.ProcessOnce(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Initial rollover sweep failed", "error", err)
	} else {
		slog.InfoContext(ctx, "Initial rollover sweep complete", "households_rolled", count)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Rollover worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-w.wake:
			count, err := w.ProcessOnce(ctx, time.Now())
			if err != nil {
				slog.ErrorContext(ctx, "Rollover sweep failed", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Woken rollover sweep complete", "households_rolled", count)
		case now := <-ticker.C:
			count, err := w.ProcessOnce(ctx, now)
			if err != nil {
				slog.ErrorContext(ctx, "Rollover sweep failed", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Rollover sweep complete",
				"households_rolled", count,
				"next_check", now.Add(w.interval).Format("15:04:05"))
		}
	}
}
