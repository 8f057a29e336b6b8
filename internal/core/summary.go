package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"category"`
	Amount Money  `json:"total"`
}

// CategoryShare is a category total with its share of the grand total.
type CategoryShare struct {
	Name       string  `json:"category"`
	Amount     Money   `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Summary bundles the views a history or dashboard screen renders.
type Summary struct {
	Filter        string          `json:"filter"`
	Expenses      []Expense       `json:"expenses"`
	FilteredTotal Money           `json:"filtered_total"`
	GrandTotal    Money           `json:"grand_total"`
	Breakdown     []CategoryShare `json:"breakdown"`
}

// The functions below are pure: they read the given slice, never modify it,
// and depend on nothing else.

// CategoryTotals sums amounts per category. Categories without records are
// absent. Results are in report order: total descending, then name ascending.
func CategoryTotals(records []Expense) []CategoryAmount {
	sums := make(map[string]int64)
	for _, e := range records {
		sums[e.Category] += e.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Breakdown returns each category's total and percentage of the grand total.
// When the grand total is zero the result is empty.
func Breakdown(records []Expense) []CategoryShare {
	totals := CategoryTotals(records)
	var grand int64
	for _, t := range totals {
		grand += t.Amount.Cents
	}
	if grand == 0 {
		return []CategoryShare{}
	}
	out := make([]CategoryShare, len(totals))
	for i, t := range totals {
		out[i] = CategoryShare{
			Name:       t.Name,
			Amount:     t.Amount,
			Percentage: 100 * float64(t.Amount.Cents) / float64(grand),
		}
	}
	return out
}

// FilterByCategory returns the records of one category in their original
// order. AllCategories returns a copy of the whole slice.
func FilterByCategory(records []Expense, category string) []Expense {
	if category == AllCategories {
		return append([]Expense{}, records...)
	}
	out := make([]Expense, 0)
	for _, e := range records {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

func Total(records []Expense) Money {
	var sum Money
	for _, e := range records {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Summarize filters records by category and computes the totals and the
// breakdown of the unfiltered set.
func Summarize(records []Expense, category string) Summary {
	if category == "" {
		category = AllCategories
	}
	filtered := FilterByCategory(records, category)
	return Summary{
		Filter:        category,
		Expenses:      filtered,
		FilteredTotal: Total(filtered),
		GrandTotal:    Total(records),
		Breakdown:     Breakdown(records),
	}
}
