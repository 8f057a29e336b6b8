package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxTitleLength = 200

type (
	Money struct {
		Cents int64
	}

	// Expense is the only persisted entity. ID is assigned by the repository
	// and never changes afterwards.
	Expense struct {
		ID       string    `json:"id"`
		Title    string    `json:"title"`
		Amount   Money     `json:"amount"`
		Category string    `json:"category"`
		Date     time.Time `json:"date"`
	}

	// ExpenseInput carries the caller-supplied fields of a new expense.
	// A zero Date means "now".
	ExpenseInput struct {
		Title    string
		Amount   Money
		Category string
		Date     time.Time
	}

	// Patch is a partial update; nil fields are left untouched.
	Patch struct {
		Title    *string    `json:"title,omitempty"`
		Amount   *Money     `json:"amount,omitempty"`
		Category *string    `json:"category,omitempty"`
		Date     *time.Time `json:"date,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyTitle      = errors.New("empty title")
	ErrTitleTooLong    = errors.New("title too long (max 200 characters)")
	ErrUnknownCategory = errors.New("unknown category")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrEmptyPatch      = errors.New("patch has no fields")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks an input against the configured category set. The
// repository does not call this; it is the job of whoever accepts user input.
func (in ExpenseInput) Validate(cats Categories) error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if !cats.Contains(in.Category) {
		return ErrUnknownCategory
	}
	return nil
}

// Validate checks only the fields present in the patch.
func (p Patch) Validate(cats Categories) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Category != nil && !cats.Contains(*p.Category) {
		return ErrUnknownCategory
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Amount == nil && p.Category == nil && p.Date == nil
}

// Apply returns e with the patched fields merged in. The ID is never touched.
func (p Patch) Apply(e Expense) Expense {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = p.Date.UTC()
	}
	return e
}

func validateTitle(title string) error {
	if len(strings.TrimSpace(title)) == 0 {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
