// Package http provides HTTP server and handler implementations.
//
// This file turns JSON request bodies into validated domain inputs.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"spesetracker/internal/core"
)

const maxBodyBytes = 64 << 10

// ErrMalformedBody is returned when the body is not a single JSON object of
// the expected shape.
var ErrMalformedBody = errors.New("malformed request body")

// FieldError reports which input field failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

// ExpenseRequest is the body of POST and PATCH /api/expenses. Absent fields
// are nil; for PATCH only the present ones are applied.
type ExpenseRequest struct {
	Title    *string     `json:"title"`
	Amount   *core.Money `json:"amount"`
	Category *string     `json:"category"`
	Date     *string     `json:"date"`
}

// DecodeExpenseRequest reads a single JSON object, rejecting unknown fields
// and trailing data.
func DecodeExpenseRequest(r *http.Request) (ExpenseRequest, error) {
	var req ExpenseRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return ExpenseRequest{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return ExpenseRequest{}, fmt.Errorf("%w: trailing data", ErrMalformedBody)
	}
	if req.Title != nil {
		t := sanitizeInput(*req.Title)
		req.Title = &t
	}
	if req.Category != nil {
		c := strings.TrimSpace(*req.Category)
		req.Category = &c
	}
	return req, nil
}

// ToInput builds a new-expense input. Title, amount and category are
// required; a missing date means "now".
func (req ExpenseRequest) ToInput(cats core.Categories) (core.ExpenseInput, error) {
	var in core.ExpenseInput
	if req.Title == nil {
		return in, &FieldError{Field: "title", Err: core.ErrEmptyTitle}
	}
	if req.Amount == nil {
		return in, &FieldError{Field: "amount", Err: core.ErrInvalidAmount}
	}
	if req.Category == nil {
		return in, &FieldError{Field: "category", Err: core.ErrUnknownCategory}
	}
	in.Title, in.Amount, in.Category = *req.Title, *req.Amount, *req.Category

	if req.Date != nil {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return in, &FieldError{Field: "date", Err: err}
		}
		in.Date = d
	}
	if err := in.Validate(cats); err != nil {
		return in, &FieldError{Field: fieldFor(err), Err: err}
	}
	return in, nil
}

// ToPatch builds a partial update from the fields present in the body.
func (req ExpenseRequest) ToPatch(cats core.Categories) (core.Patch, error) {
	p := core.Patch{Title: req.Title, Amount: req.Amount, Category: req.Category}
	if req.Date != nil {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return p, &FieldError{Field: "date", Err: err}
		}
		p.Date = &d
	}
	if err := p.Validate(cats); err != nil {
		return p, &FieldError{Field: fieldFor(err), Err: err}
	}
	return p, nil
}

func fieldFor(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyTitle), errors.Is(err, core.ErrTitleTooLong):
		return "title"
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrUnknownCategory):
		return "category"
	case errors.Is(err, core.ErrZeroDate):
		return "date"
	default:
		return ""
	}
}
