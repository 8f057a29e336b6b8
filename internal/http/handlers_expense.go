package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"spesetracker/internal/core"
	"spesetracker/internal/expenses"
	"spesetracker/internal/log"
)

type expenseListResponse struct {
	Filter   string         `json:"filter"`
	Expenses []core.Expense `json:"expenses"`
	Total    core.Money     `json:"total"`
	Count    int            `json:"count"`
}

// categoryFilter reads ?category=, defaulting to "all".
func (s *Server) categoryFilter(r *http.Request) (string, bool) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		return core.AllCategories, true
	}
	return category, s.categories.IsFilter(category)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	category, ok := s.categoryFilter(r)
	if !ok {
		BadRequestError("unknown category filter: " + category).Write(w)
		return
	}
	list := core.FilterByCategory(s.repo.Expenses(), category)
	NewResponse().JSON(expenseListResponse{
		Filter:   category,
		Expenses: list,
		Total:    core.Total(list),
		Count:    len(list),
	}).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := s.repo.Find(id)
	if !ok {
		NotFoundError("expense not found").Write(w)
		return
	}
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	req, err := DecodeExpenseRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in, err := req.ToInput(s.categories)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	e, err := s.repo.AddExpense(in)
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}

	logger.InfoContext(r.Context(), "Expense created",
		log.NewFields().WithOperation(log.OpCreate).
			WithExpense(e.ID, e.Title, e.Amount.String(), e.Category).ToSlice()...)
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		JSON(e).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	req, err := DecodeExpenseRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	patch, err := req.ToPatch(s.categories)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	e, found, err := s.repo.UpdateExpense(id, patch)
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	if !found {
		NotFoundError("expense not found").Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Expense updated",
		log.NewFields().WithOperation(log.OpUpdate).
			WithExpense(e.ID, e.Title, e.Amount.String(), e.Category).ToSlice()...)
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	found, err := s.repo.DeleteExpense(id)
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	if !found {
		NotFoundError("expense not found").Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Expense deleted", log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var fe *FieldError
	if errors.As(err, &fe) {
		ValidationFailed(fe.Field, fe.Err.Error()).Write(w)
		return
	}
	ValidationFailed("", err.Error()).Write(w)
}

func (s *Server) writeRepositoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, expenses.ErrNotLoaded), errors.Is(err, expenses.ErrClosed):
		ServiceUnavailableError(err.Error()).Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Repository operation failed", log.FieldError, err.Error())
		InternalServerError("internal error").Write(w)
	}
}
