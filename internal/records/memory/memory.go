// Package memory provides an in-memory record store used in tests and as a
// storage-free development backend. Failures can be injected per operation to
// exercise error paths.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"masareef/internal/core"
	"masareef/internal/records"
)

// Operation names accepted by FailWith.
const (
	OpInsertExpense      = "insert_expense"
	OpListExpenses       = "list_expenses"
	OpDeleteExpense      = "delete_expense"
	OpDeleteAllExpenses  = "delete_all_expenses"
	OpInsertGoal         = "insert_goal"
	OpListGoals          = "list_goals"
	OpDeleteGoal         = "delete_goal"
	OpDeleteAllGoals     = "delete_all_goals"
	OpGetProfile         = "get_profile"
	OpUpsertProfile      = "upsert_profile"
	OpInsertNotification = "insert_notification"
	OpListNotifications  = "list_notifications"
)

type Store struct {
	mu            sync.Mutex
	expenses      map[string][]core.Expense
	goals         map[string][]core.Goal
	profiles      map[string]core.Profile
	notifications map[string][]core.Notification
	failures      map[string]error
}

var _ records.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		expenses:      make(map[string][]core.Expense),
		goals:         make(map[string][]core.Goal),
		profiles:      make(map[string]core.Profile),
		notifications: make(map[string][]core.Notification),
		failures:      make(map[string]error),
	}
}

// FailWith makes every subsequent call of the named operation return err.
// Passing a nil error clears the injection.
func (s *Store) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

func (s *Store) InsertExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpInsertExpense); err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.expenses[e.OwnerID] = append(s.expenses[e.OwnerID], e)
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context, ownerID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpListExpenses); err != nil {
		return nil, err
	}
	out := append([]core.Expense(nil), s.expenses[ownerID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpDeleteExpense); err != nil {
		return err
	}
	list := s.expenses[ownerID]
	for i, e := range list {
		if e.ID == id {
			s.expenses[ownerID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) DeleteAllExpenses(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpDeleteAllExpenses); err != nil {
		return err
	}
	delete(s.expenses, ownerID)
	return nil
}

func (s *Store) InsertGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpInsertGoal); err != nil {
		return core.Goal{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.goals[g.OwnerID] = append(s.goals[g.OwnerID], g)
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, ownerID string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpListGoals); err != nil {
		return nil, err
	}
	return append([]core.Goal(nil), s.goals[ownerID]...), nil
}

func (s *Store) DeleteGoal(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpDeleteGoal); err != nil {
		return err
	}
	list := s.goals[ownerID]
	for i, g := range list {
		if g.ID == id {
			s.goals[ownerID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) DeleteAllGoals(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpDeleteAllGoals); err != nil {
		return err
	}
	delete(s.goals, ownerID)
	return nil
}

func (s *Store) GetProfile(_ context.Context, ownerID string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpGetProfile); err != nil {
		return core.Profile{}, err
	}
	if p, ok := s.profiles[ownerID]; ok {
		return p, nil
	}
	return core.Profile{OwnerID: ownerID}, nil
}

func (s *Store) UpsertProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpUpsertProfile); err != nil {
		return err
	}
	s.profiles[p.OwnerID] = p
	return nil
}

func (s *Store) InsertNotification(_ context.Context, n core.Notification) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpInsertNotification); err != nil {
		return core.Notification{}, err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.notifications[n.OwnerID] = append(s.notifications[n.OwnerID], n)
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, ownerID string) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(OpListNotifications); err != nil {
		return nil, err
	}
	out := append([]core.Notification(nil), s.notifications[ownerID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListOwners implements records.Owners over every collection.
func (s *Store) ListOwners(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	for owner := range s.expenses {
		seen[owner] = struct{}{}
	}
	for owner := range s.goals {
		seen[owner] = struct{}{}
	}
	for owner := range s.profiles {
		seen[owner] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for owner := range seen {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out, nil
}
