package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"balanceup/internal/models"
	"balanceup/internal/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const barWidth = 30

// Styles
type styles struct {
	r       *lipgloss.Renderer
	title   lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	status  map[report.Status]lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		r: r,
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#60a5fa")),
		header: r.NewStyle().
			Bold(true),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("#7f849c")),
		success: r.NewStyle().
			Foreground(lipgloss.Color("42")),
		status: map[report.Status]lipgloss.Style{
			report.StatusWithin: r.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
			report.StatusNear:   r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
			report.StatusOver:   r.NewStyle().Foreground(lipgloss.Color("#f44336")),
		},
	}
}

func (s *styles) category(name string) lipgloss.Style {
	return s.r.NewStyle().Foreground(lipgloss.Color(models.CategoryColor(name)))
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func bar(percentage float64) string {
	filled := int(math.Round(percentage / 100 * barWidth))
	filled = max(0, min(filled, barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func (s *styles) groups(w io.Writer, groups []report.ExpenseGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, s.muted.Render("No expenses yet."))
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s  %s\n", s.header.Render(g.Title), money(g.Total))
		for _, e := range g.Items {
			fmt.Fprintf(w, "  #%-4d %s %10s\n", e.ID, s.category(e.Category).Render(fmt.Sprintf("%-15s", e.Category)), money(e.Amount))
		}
	}
}

func (s *styles) breakdown(w io.Writer, view report.BreakdownView) {
	fmt.Fprintf(w, "%s  %s\n", s.title.Render(fmt.Sprintf("%s %d", view.Month, view.Year)), money(view.Total))
	if len(view.Categories) == 0 {
		fmt.Fprintln(w, s.muted.Render("No expenses this month."))
		return
	}
	for _, item := range view.Categories {
		style := s.category(item.Category)
		fmt.Fprintf(w, "%-15s %s %5.1f%% %10s (%d)\n",
			item.Category, style.Render(bar(item.Percentage)), item.Percentage, money(item.Total), item.Count)
	}
}

func (s *styles) progress(w io.Writer, p report.ProgressView) {
	fmt.Fprintf(w, "Budget:   %s\n", money(p.Budget))
	fmt.Fprintf(w, "Expenses: %s\n", money(p.Spent))

	style, ok := s.status[p.Status]
	if !ok {
		fmt.Fprintf(w, "%s %s\n", s.muted.Render(bar(0)), s.muted.Render(p.Label()))
		return
	}
	fmt.Fprintf(w, "%s %s\n", style.Render(bar(p.BarPercentage)), style.Render(p.Label()))
}
