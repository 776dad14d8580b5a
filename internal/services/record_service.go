// Package services orchestrates record writes, change-event publication and
// the aggregation/advisory pipeline on top of the record store ports.
package services

import (
	"context"
	"errors"
	"fmt"

	"masareef/internal/core"
	"masareef/internal/events"
	"masareef/internal/log"
	"masareef/internal/records"
)

// InsightInvalidator drops cached advisories for an owner after their records
// change. Satisfied by insights.Generator.
type InsightInvalidator interface {
	Invalidate(ownerID string)
}

// RecordService validates and persists records, then publishes a change event
// for each successful write. Publish failures never fail the write: the record
// is saved, subscribers just miss one refresh trigger.
type RecordService struct {
	store      records.Store
	publisher  events.Publisher   // nil when no event sink is configured
	invalidate InsightInvalidator // nil when advisories are not cached
	logger     *log.Logger
}

func NewRecordService(store records.Store, publisher events.Publisher, invalidate InsightInvalidator, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RecordService{
		store:      store,
		publisher:  publisher,
		invalidate: invalidate,
		logger:     logger.WithComponent(log.ComponentRecords),
	}
}

func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	saved, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.recordsChanged(ctx, events.CollectionExpenses, events.OpInsert, saved.OwnerID, saved.ID)
	return saved, nil
}

func (s *RecordService) ListExpenses(ctx context.Context, ownerID string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, ownerID)
}

func (s *RecordService) DeleteExpense(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteExpense(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.recordsChanged(ctx, events.CollectionExpenses, events.OpDelete, ownerID, id)
	return nil
}

func (s *RecordService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	saved, err := s.store.InsertGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	s.recordsChanged(ctx, events.CollectionGoals, events.OpInsert, saved.OwnerID, saved.ID)
	return saved, nil
}

func (s *RecordService) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, ownerID)
}

func (s *RecordService) DeleteGoal(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteGoal(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.recordsChanged(ctx, events.CollectionGoals, events.OpDelete, ownerID, id)
	return nil
}

func (s *RecordService) GetProfile(ctx context.Context, ownerID string) (core.Profile, error) {
	return s.store.GetProfile(ctx, ownerID)
}

func (s *RecordService) UpdateProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.recordsChanged(ctx, events.CollectionProfiles, events.OpUpdate, p.OwnerID, "")
	return nil
}

func (s *RecordService) ListNotifications(ctx context.Context, ownerID string) ([]core.Notification, error) {
	return s.store.ListNotifications(ctx, ownerID)
}

// ResetAll deletes the owner's expenses and goals and zeroes the declared
// income. The three operations are independent: each runs regardless of the
// others' outcome, there is no rollback, and any failures are joined into a
// single combined error.
func (s *RecordService) ResetAll(ctx context.Context, ownerID string) error {
	var errs []error

	if err := s.store.DeleteAllExpenses(ctx, ownerID); err != nil {
		errs = append(errs, fmt.Errorf("delete expenses: %w", err))
	} else {
		s.recordsChanged(ctx, events.CollectionExpenses, events.OpDelete, ownerID, "")
	}

	if err := s.store.DeleteAllGoals(ctx, ownerID); err != nil {
		errs = append(errs, fmt.Errorf("delete goals: %w", err))
	} else {
		s.recordsChanged(ctx, events.CollectionGoals, events.OpDelete, ownerID, "")
	}

	if err := s.zeroIncome(ctx, ownerID); err != nil {
		errs = append(errs, fmt.Errorf("reset income: %w", err))
	} else {
		s.recordsChanged(ctx, events.CollectionProfiles, events.OpUpdate, ownerID, "")
	}

	if len(errs) > 0 {
		return fmt.Errorf("reset data: %w", errors.Join(errs...))
	}
	return nil
}

func (s *RecordService) zeroIncome(ctx context.Context, ownerID string) error {
	profile, err := s.store.GetProfile(ctx, ownerID)
	if err != nil {
		return err
	}
	profile.MonthlyIncome = core.Money{}
	return s.store.UpsertProfile(ctx, profile)
}

func (s *RecordService) recordsChanged(ctx context.Context, collection, op, ownerID, recordID string) {
	if s.invalidate != nil {
		s.invalidate.Invalidate(ownerID)
	}
	if s.publisher == nil {
		return
	}
	event := events.NewChangeEvent(collection, op, ownerID, recordID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The write already succeeded; subscribers just miss this trigger.
		fields := log.NewFields().
			WithRecord(collection, recordID).
			WithOwner(ownerID).
			WithOperation(log.OpPublish).
			WithError(err)
		s.logger.ErrorContext(ctx, "Failed to publish change event", fields.ToSlice()...)
	}
}
