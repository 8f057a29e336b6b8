package http

import (
	"net/http"

	"spesetracker/internal/core"
)

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Filters    []string `json:"filters"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	keys := s.categories.Keys()
	NewResponse().JSON(categoriesResponse{
		Categories: keys,
		Filters:    append([]string{core.AllCategories}, keys...),
	}).Write(w)
}

// handleSummary returns the filtered list with its total plus the
// per-category breakdown of the whole collection.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	category, ok := s.categoryFilter(r)
	if !ok {
		BadRequestError("unknown category filter: " + category).Write(w)
		return
	}
	NewResponse().JSON(core.Summarize(s.repo.Expenses(), category)).Write(w)
}
