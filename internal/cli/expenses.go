package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spesetracker/internal/core"
)

// ErrAmbiguousID is returned when an id suffix matches more than one record.
var ErrAmbiguousID = errors.New("id matches more than one expense")

// ErrUnknownID is returned when no record matches an id or suffix.
var ErrUnknownID = errors.New("no expense with that id")

func init() {
	rootCmd.AddCommand(addCmd, listCmd, editCmd, deleteCmd, categoriesCmd)

	addCmd.Flags().String("date", "", "Expense date (YYYY-MM-DD); defaults to now")

	listCmd.Flags().StringP("category", "c", core.AllCategories, "Only show this category")

	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("amount", "", "New amount")
	editCmd.Flags().String("category", "", "New category")
	editCmd.Flags().String("date", "", "New date (YYYY-MM-DD)")
}

// resolveID finds the record whose id equals ref or ends with it.
func resolveID(records []core.Expense, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrUnknownID
	}
	match := ""
	for _, e := range records {
		if e.ID == ref {
			return e.ID, nil
		}
		if strings.HasSuffix(e.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownID, ref)
	}
	return match, nil
}

// ─── add ────────────────────────────────────────────────────────────────────

var addCmd = &cobra.Command{
	Use:   "add TITLE AMOUNT CATEGORY",
	Short: "Record a new expense",
	Example: `  spese add "Coffee" 4.50 food
  spese add "Train ticket" 12,90 transport --date 2024-03-01`,
	Args: cobra.ExactArgs(3),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := core.ParseMoney(args[1])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[1], err)
	}
	in := core.ExpenseInput{
		Title:    strings.TrimSpace(args[0]),
		Amount:   amount,
		Category: strings.TrimSpace(args[2]),
	}
	if s, _ := cmd.Flags().GetString("date"); s != "" {
		if in.Date, err = core.ParseDate(s); err != nil {
			return err
		}
	}

	return withApp(cmd, func(a *App) error {
		if err := in.Validate(a.Categories); err != nil {
			return validationHint(err, a.Categories)
		}
		e, err := a.Repo.AddExpense(in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s (%s)\n", shortID(e.ID), e.Title, e.Amount, e.Category)
		return nil
	})
}

// ─── list ───────────────────────────────────────────────────────────────────

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses, newest first",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	return withApp(cmd, func(a *App) error {
		if !a.Categories.IsFilter(category) {
			return validationHint(core.ErrUnknownCategory, a.Categories)
		}
		list := core.FilterByCategory(a.Repo.Expenses(), category)
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No expenses yet.")
			return nil
		}
		renderExpenses(cmd.OutOrStdout(), list)
		return nil
	})
}

// ─── edit ───────────────────────────────────────────────────────────────────

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change fields of an existing expense",
	Example: `  spese edit 3f9c1a2b --amount 5.00
  spese edit 3f9c1a2b --title "Espresso" --category food`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(cmd *cobra.Command) (core.Patch, error) {
	var p core.Patch
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		v = strings.TrimSpace(v)
		p.Title = &v
	}
	if flags.Changed("amount") {
		v, _ := flags.GetString("amount")
		m, err := core.ParseMoney(v)
		if err != nil {
			return p, fmt.Errorf("amount %q: %w", v, err)
		}
		p.Amount = &m
	}
	if flags.Changed("category") {
		v, _ := flags.GetString("category")
		v = strings.TrimSpace(v)
		p.Category = &v
	}
	if flags.Changed("date") {
		v, _ := flags.GetString("date")
		d, err := core.ParseDate(v)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	return p, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *App) error {
		if err := patch.Validate(a.Categories); err != nil {
			if errors.Is(err, core.ErrEmptyPatch) {
				return errors.New("nothing to change: pass at least one of --title, --amount, --category, --date")
			}
			return validationHint(err, a.Categories)
		}
		id, err := resolveID(a.Repo.Expenses(), args[0])
		if err != nil {
			return err
		}
		e, found, err := a.Repo.UpdateExpense(id, patch)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUnknownID, args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s %s (%s) on %s\n",
			shortID(e.ID), e.Title, e.Amount, e.Category, formatDate(e.Date))
		return nil
	})
}

// ─── delete ─────────────────────────────────────────────────────────────────

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete an expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *App) error {
		id, err := resolveID(a.Repo.Expenses(), args[0])
		if err != nil {
			return err
		}
		if _, err := a.Repo.DeleteExpense(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(id))
		return nil
	})
}

// ─── categories ─────────────────────────────────────────────────────────────

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range appConfig.CategorySet().Keys() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

func validationHint(err error, cats core.Categories) error {
	if errors.Is(err, core.ErrUnknownCategory) {
		return fmt.Errorf("%w (choose from: %s)", err, strings.Join(cats.Keys(), ", "))
	}
	return err
}
