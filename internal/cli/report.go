package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wcharczuk/go-chart/v2"

	"spesetracker/internal/core"
)

// ErrNothingToChart is returned by the chart command when there are no
// expenses to plot.
var ErrNothingToChart = errors.New("no expenses to chart")

func init() {
	rootCmd.AddCommand(summaryCmd, chartCmd)

	summaryCmd.Flags().StringP("category", "c", core.AllCategories, "Also report the total of this category")

	chartCmd.Flags().StringP("output", "o", "spese_breakdown.png", "PNG file to write")
	chartCmd.Flags().Int("width", 800, "Image width in pixels")
	chartCmd.Flags().Int("height", 400, "Image height in pixels")
}

// ─── summary ────────────────────────────────────────────────────────────────

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals and the per-category breakdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		return withApp(cmd, func(a *App) error {
			if !a.Categories.IsFilter(category) {
				return validationHint(core.ErrUnknownCategory, a.Categories)
			}
			renderSummary(cmd.OutOrStdout(), core.Summarize(a.Repo.Expenses(), category))
			return nil
		})
	},
}

// ─── chart ──────────────────────────────────────────────────────────────────

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the category breakdown as a PNG bar chart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")

		return withApp(cmd, func(a *App) error {
			shares := core.Breakdown(a.Repo.Expenses())
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create chart file: %w", err)
			}
			if err := renderBreakdownChart(f, shares, width, height); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart saved to: %s\n", output)
			return nil
		})
	},
}

// breakdownChart builds one bar per category, in report order.
func breakdownChart(shares []core.CategoryShare, width, height int) (chart.BarChart, error) {
	if len(shares) == 0 {
		return chart.BarChart{}, ErrNothingToChart
	}

	bars := make([]chart.Value, 0, len(shares))
	maxValue := 0.0
	for _, s := range shares {
		v := s.Amount.Float64()
		if v > maxValue {
			maxValue = v
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (%s)", s.Name, formatPercent(s.Percentage)),
			Value: v,
		})
	}

	bc := chart.BarChart{
		Title: "Spending by category",
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    width,
		Height:   height,
		BarWidth: 60,
		Bars:     bars,
	}
	// A single bar has no range of its own; anchor the axis at zero.
	bc.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1}
	bc.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, ok := v.(float64); ok {
			return fmt.Sprintf("%.2f", vf)
		}
		return ""
	}
	return bc, nil
}

func renderBreakdownChart(w io.Writer, shares []core.CategoryShare, width, height int) error {
	bc, err := breakdownChart(shares, width, height)
	if err != nil {
		return err
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
