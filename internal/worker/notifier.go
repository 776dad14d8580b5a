// Package worker watches record changes and files notifications for
// over-budget months and reached savings goals.
package worker

import (
	"context"
	"fmt"
	"time"

	"masareef/internal/core"
	"masareef/internal/events"
	"masareef/internal/log"
	"masareef/internal/records"
	"masareef/internal/report"
)

// Store is the record access the notifier needs: the per-collection ports
// plus owner enumeration for the periodic sweep.
type Store interface {
	records.Store
	records.Owners
}

// Notifier evaluates an owner's records and inserts notifications when a
// budget or goal threshold is crossed. Notifications are deduplicated: the
// same finding is never filed twice for the same owner and month.
type Notifier struct {
	store     Store
	publisher events.Publisher // nil when no event sink is configured
	logger    *log.Logger
	now       func() time.Time
}

func NewNotifier(store Store, publisher events.Publisher, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Notifier{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
	}
}

// HandleChangeEvent re-evaluates the owner behind a record change. Changes to
// the notifications collection are ignored, otherwise the worker would react
// to its own writes.
func (n *Notifier) HandleChangeEvent(ctx context.Context, e events.ChangeEvent) error {
	if e.Collection == events.CollectionNotifications {
		return nil
	}
	if e.OwnerID == "" {
		return nil
	}
	return n.EvaluateOwner(ctx, e.OwnerID)
}

// EvaluateOwner checks the owner's current month against their declared
// income and their goals against their targets, filing one notification per
// new finding.
func (n *Notifier) EvaluateOwner(ctx context.Context, ownerID string) error {
	expenses, err := n.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	profile, err := n.store.GetProfile(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	goals, err := n.store.ListGoals(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	existing, err := n.store.ListNotifications(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	now := n.now()
	today := core.DateOf(now)
	currentMonth, _ := report.MonthTotals(today, expenses)

	if profile.MonthlyIncome.Cents > 0 && currentMonth.Cents > profile.MonthlyIncome.Cents {
		n.fileOnce(ctx, existing, now, core.Notification{
			OwnerID:  ownerID,
			Severity: core.SeverityWarning,
			Title:    "Over budget",
			Description: fmt.Sprintf("Your spending this month (%s) exceeds your monthly income (%s).",
				currentMonth, profile.MonthlyIncome),
		})
	}

	for _, g := range goals {
		if g.Current.Cents >= g.Target.Cents {
			n.fileOnce(ctx, existing, now, core.Notification{
				OwnerID:     ownerID,
				Severity:    core.SeveritySuccess,
				Title:       "Goal reached: " + g.Name,
				Description: fmt.Sprintf("You saved %s and reached your goal %q.", g.Current, g.Name),
			})
		}
	}

	return nil
}

// fileOnce inserts the notification unless one with the same title already
// exists for the current month.
func (n *Notifier) fileOnce(ctx context.Context, existing []core.Notification, now time.Time, note core.Notification) {
	for _, prev := range existing {
		if prev.Title == note.Title && sameMonth(prev.CreatedAt, now) {
			return
		}
	}

	saved, err := n.store.InsertNotification(ctx, note)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to insert notification",
			log.FieldOwnerID, note.OwnerID,
			log.FieldSeverity, string(note.Severity),
			log.FieldError, err)
		return
	}
	n.logger.InfoContext(ctx, "Notification filed",
		log.FieldOwnerID, note.OwnerID,
		log.FieldSeverity, string(note.Severity),
		"title", note.Title)

	if n.publisher == nil {
		return
	}
	event := events.NewChangeEvent(events.CollectionNotifications, events.OpInsert, saved.OwnerID, saved.ID)
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish notification event",
			log.FieldOwnerID, note.OwnerID,
			log.FieldError, err)
	}
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Sweep evaluates every known owner. It backs up the event-driven path when
// broker messages are lost or the worker was down.
func (n *Notifier) Sweep(ctx context.Context) error {
	owners, err := n.store.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}

	var failed int
	for _, ownerID := range owners {
		if err := n.EvaluateOwner(ctx, ownerID); err != nil {
			n.logger.ErrorContext(ctx, "Owner evaluation failed",
				log.FieldOwnerID, ownerID,
				log.FieldOperation, log.OpSweep,
				log.FieldError, err)
			failed++
		}
	}

	n.logger.InfoContext(ctx, "Sweep completed",
		"owners", len(owners),
		"failed", failed)
	return nil
}

// Run sweeps immediately and then on every tick until the context ends.
func (n *Notifier) Run(ctx context.Context, interval time.Duration) error {
	if err := n.Sweep(ctx); err != nil {
		n.logger.ErrorContext(ctx, "Startup sweep failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.Sweep(ctx); err != nil {
				n.logger.ErrorContext(ctx, "Sweep failed", log.FieldError, err)
			}
		}
	}
}
