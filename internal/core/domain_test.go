package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestExpenseInputValidate(t *testing.T) {
	cats := DefaultCategories()
	good := ExpenseInput{Title: "Coffee", Amount: Money{Cents: 450}, Category: "food"}
	if err := good.Validate(cats); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		in   ExpenseInput
		want error
	}{
		{ExpenseInput{Title: "  ", Amount: Money{Cents: 1}, Category: "food"}, ErrEmptyTitle},
		{ExpenseInput{Title: strings.Repeat("x", 201), Amount: Money{Cents: 1}, Category: "food"}, ErrTitleTooLong},
		{ExpenseInput{Title: strings.Repeat("é", 201), Amount: Money{Cents: 1}, Category: "food"}, ErrTitleTooLong},
		{ExpenseInput{Title: "a", Amount: Money{Cents: 0}, Category: "food"}, ErrInvalidAmount},
		{ExpenseInput{Title: "a", Amount: Money{Cents: 1}, Category: "rent"}, ErrUnknownCategory},
		{ExpenseInput{Title: "a", Amount: Money{Cents: 1}, Category: AllCategories}, ErrUnknownCategory},
	}
	for i, tc := range cases {
		if err := tc.in.Validate(cats); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}

	// The limit counts characters, not bytes.
	multibyte := ExpenseInput{Title: strings.Repeat("é", 200), Amount: Money{Cents: 1}, Category: "food"}
	if err := multibyte.Validate(cats); err != nil {
		t.Fatalf("200 two-byte characters should be accepted, got %v", err)
	}
}

func TestPatchValidate(t *testing.T) {
	cats := DefaultCategories()
	zero := time.Time{}
	cases := []struct {
		name string
		p    Patch
		want error
	}{
		{"empty", Patch{}, ErrEmptyPatch},
		{"title only", Patch{Title: strPtr("X")}, nil},
		{"blank title", Patch{Title: strPtr("")}, ErrEmptyTitle},
		{"bad amount", Patch{Amount: &Money{Cents: -1}}, ErrInvalidAmount},
		{"bad category", Patch{Category: strPtr("nope")}, ErrUnknownCategory},
		{"zero date", Patch{Date: &zero}, ErrZeroDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.p.Validate(cats); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPatchApplyKeepsIDAndUntouchedFields(t *testing.T) {
	date := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	e := Expense{ID: "abc", Title: "Coffee", Amount: Money{Cents: 450}, Category: "food", Date: date}

	got := Patch{Amount: &Money{Cents: 500}}.Apply(e)
	if got.ID != "abc" || got.Title != "Coffee" || got.Category != "food" || !got.Date.Equal(date) {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
	if got.Amount.Cents != 500 {
		t.Fatalf("amount not patched: %+v", got)
	}
	if e.Amount.Cents != 450 {
		t.Fatalf("original modified")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-01-31", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), false},
		{" 2024-01-31 ", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), false},
		{"2024-01-31T23:30:00+02:00", time.Date(2024, 1, 31, 21, 30, 0, 0, time.UTC), false},
		{"31/01/2024", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDate(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
