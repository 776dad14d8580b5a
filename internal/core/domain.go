package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

type (
	// Severity classifies notifications and advisory entries.
	Severity string

	// Date is a calendar date with no time component.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID       string
		OwnerID  string
		Name     string
		Category string
		Amount   Money
		Date     Date
	}

	Goal struct {
		ID             string
		OwnerID        string
		Name           string
		Target         Money
		Current        Money
		DurationMonths int
	}

	// Profile is the per-owner singleton holding the declared monthly income.
	Profile struct {
		OwnerID       string
		FullName      string
		MonthlyIncome Money
	}

	Notification struct {
		ID          string
		OwnerID     string
		Severity    Severity
		Title       string
		Description string
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrEmptyOwner      = errors.New("empty owner id")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidTarget   = errors.New("target amount must be positive")
	ErrInvalidDuration = errors.New("duration must be at least one month")
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrInvalidDate     = errors.New("date cannot be zero")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityWarning, SeveritySuccess, SeverityInfo:
		return true
	default:
		return false
	}
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// SameMonth reports whether two dates fall in the same calendar month and year.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return ErrNameTooLong
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if len(g.Name) > 200 {
		return ErrNameTooLong
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	// Current is a manually maintained running total, it may exceed the target
	// but can never be negative.
	if err := g.Current.Validate(); err != nil {
		return err
	}
	if g.DurationMonths < 1 {
		return ErrInvalidDuration
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.OwnerID) == "" {
		return ErrEmptyOwner
	}
	return p.MonthlyIncome.Validate()
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if !n.Severity.Valid() {
		return ErrInvalidSeverity
	}
	if len(strings.TrimSpace(n.Title)) == 0 {
		return ErrEmptyName
	}
	return nil
}
