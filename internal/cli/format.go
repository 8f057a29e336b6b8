package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"spesetracker/internal/core"
)

const shortIDLen = 8

// shortID trims an id to its random tail for display. Commands accept the
// full id or any unique suffix of it.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// renderExpenses prints records newest first with a total footer.
func renderExpenses(w io.Writer, records []core.Expense) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Date", "Title", "Category", "Amount"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
	})
	for _, e := range records {
		table.Append([]string{shortID(e.ID), formatDate(e.Date), e.Title, e.Category, e.Amount.String()})
	}
	table.SetFooter([]string{"", "", "", "Total", core.Total(records).String()})
	table.Render()
}

// renderBreakdown prints category totals and shares, largest first.
func renderBreakdown(w io.Writer, shares []core.CategoryShare, grand core.Money) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Total", "Share"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, s := range shares {
		table.Append([]string{s.Name, s.Amount.String(), formatPercent(s.Percentage)})
	}
	table.SetFooter([]string{"Total", grand.String(), ""})
	table.Render()
}

func renderSummary(w io.Writer, s core.Summary) {
	if len(s.Breakdown) == 0 {
		fmt.Fprintln(w, "No expenses yet.")
		return
	}
	renderBreakdown(w, s.Breakdown, s.GrandTotal)
	if s.Filter != core.AllCategories {
		fmt.Fprintf(w, "%s: %s across %d expenses\n", s.Filter, s.FilteredTotal, len(s.Expenses))
	}
}
