package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"masareef/internal/core"
	"masareef/internal/records"

	_ "modernc.org/sqlite"
)

// dateLayout is how expense dates are stored: a calendar date, no time part.
const dateLayout = "2006-01-02"

// SQLiteRepository implements records.Store over a local SQLite database.
// Every query is scoped by owner id; no cross-owner access exists.
type SQLiteRepository struct {
	db *sql.DB
}

var _ records.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, owner_id, name, category, amount_cents, expense_date) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Name, e.Category, e.Amount.Cents, e.Date.Format(dateLayout))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved",
		"id", e.ID,
		"owner_id", e.OwnerID,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, category, amount_cents, expense_date
		 FROM expenses WHERE owner_id = ? ORDER BY expense_date DESC, created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			rawDate string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Category, &e.Amount.Cents, &rawDate); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		t, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", rawDate, err)
		}
		e.Date = core.DateOf(t)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteAllExpenses(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("delete all expenses: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, owner_id, name, target_cents, current_cents, duration_months) VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, g.Target.Cents, g.Current.Cents, g.DurationMonths)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, target_cents, current_cents, duration_months
		 FROM goals WHERE owner_id = ? ORDER BY created_at`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Target.Cents, &g.Current.Cents, &g.DurationMonths); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteAllGoals(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("delete all goals: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, ownerID string) (core.Profile, error) {
	var p core.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id, full_name, monthly_income_cents FROM profiles WHERE owner_id = ?`,
		ownerID).Scan(&p.OwnerID, &p.FullName, &p.MonthlyIncome.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		// Income defaults to zero until the owner stores a profile.
		return core.Profile{OwnerID: ownerID}, nil
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (owner_id, full_name, monthly_income_cents, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(owner_id) DO UPDATE SET
		   full_name = excluded.full_name,
		   monthly_income_cents = excluded.monthly_income_cents,
		   updated_at = CURRENT_TIMESTAMP`,
		p.OwnerID, p.FullName, p.MonthlyIncome.Cents)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) InsertNotification(ctx context.Context, n core.Notification) (core.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, owner_id, severity, title, description, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.OwnerID, string(n.Severity), n.Title, n.Description, n.CreatedAt)
	if err != nil {
		return core.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, ownerID string) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, severity, title, description, created_at
		 FROM notifications WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var (
			n        core.Notification
			severity string
		)
		if err := rows.Scan(&n.ID, &n.OwnerID, &severity, &n.Title, &n.Description, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Severity = core.Severity(severity)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// ListOwners implements records.Owners across all collections.
func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT owner_id FROM expenses
		 UNION SELECT owner_id FROM goals
		 UNION SELECT owner_id FROM profiles
		 ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		out = append(out, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return out, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}
