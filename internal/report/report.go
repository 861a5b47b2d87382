// Package report turns store results into the views the commands print:
// expenses grouped by day, a category breakdown, month navigation and
// budget progress.
package report

import (
	"sort"
	"strings"
	"time"

	"balanceup/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ExpenseGroup groups expenses by calendar date.
type ExpenseGroup struct {
	Title string
	Date  time.Time
	Total decimal.Decimal
	Items []models.Expense
}

// GroupByDay groups expenses by date, newest day first. Items keep their
// input order within a day.
func GroupByDay(expenses []models.Expense, now time.Time) []ExpenseGroup {
	groupsMap := make(map[string]*ExpenseGroup)
	for _, e := range expenses {
		key := e.Date.Format("2006-01-02")
		g, ok := groupsMap[key]
		if !ok {
			d := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC)
			g = &ExpenseGroup{Date: d, Title: groupTitle(d, now), Total: decimal.Zero}
			groupsMap[key] = g
		}
		g.Total = g.Total.Add(e.Amount)
		g.Items = append(g.Items, e)
	}

	groups := make([]ExpenseGroup, 0, len(groupsMap))
	for _, g := range groupsMap {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date.After(groups[j].Date) })
	return groups
}

func groupTitle(date, now time.Time) string {
	dateStr := date.Format("2006-01-02")
	if dateStr == now.Format("2006-01-02") {
		return "TODAY"
	}
	if dateStr == now.AddDate(0, 0, -1).Format("2006-01-02") {
		return "YESTERDAY"
	}
	return strings.ToUpper(date.Format("Mon, 02 Jan '06"))
}

// CategoryItem is one slice of the monthly breakdown.
type CategoryItem struct {
	Category   string
	Total      decimal.Decimal
	Count      int
	Percentage float64
	Color      string
}

// BreakdownView is the category breakdown for one month.
type BreakdownView struct {
	Year       int
	Month      time.Month
	Total      decimal.Decimal
	Categories []CategoryItem
}

// Breakdown computes each category's share of the month's spending.
func Breakdown(month time.Time, totals []models.CategoryTotal) BreakdownView {
	view := BreakdownView{
		Year:       month.Year(),
		Month:      month.Month(),
		Total:      decimal.Zero,
		Categories: make([]CategoryItem, 0, len(totals)),
	}
	for _, ct := range totals {
		view.Total = view.Total.Add(ct.Total)
	}

	for _, ct := range totals {
		percentage := 0.0
		if view.Total.IsPositive() {
			percentage = ct.Total.Div(view.Total).Mul(hundred).InexactFloat64()
		}
		view.Categories = append(view.Categories, CategoryItem{
			Category:   ct.Category,
			Total:      ct.Total,
			Count:      ct.Count,
			Percentage: percentage,
			Color:      models.CategoryColor(ct.Category),
		})
	}
	return view
}

// NavigationView says which neighbouring months can be browsed.
type NavigationView struct {
	Current   time.Time
	Prev      time.Time
	Next      time.Time
	HasPrev   bool
	HasNext   bool
	IsCurrent bool
}

// Navigation computes the months around month. The next month is only
// reachable when it is not in the future and has data; the previous month
// only when it has data. hasData is asked about each neighbour.
func Navigation(month, now time.Time, hasData func(time.Time) bool) NavigationView {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	return NavigationView{
		Current:   first,
		Prev:      prev,
		Next:      next,
		HasPrev:   hasData(prev),
		HasNext:   !next.After(thisMonth) && hasData(next),
		IsCurrent: first.Equal(thisMonth),
	}
}

// Status classifies spending against a budget.
type Status string

const (
	StatusNoBudget   Status = "no-budget"
	StatusNoExpenses Status = "no-expenses"
	StatusWithin     Status = "within"
	StatusNear       Status = "near"
	StatusOver       Status = "over"
)

// DefaultWarnPercent is where "within" turns into "near".
const DefaultWarnPercent = 80

// ProgressView is the home screen's budget bar.
type ProgressView struct {
	Budget     decimal.Decimal
	Spent      decimal.Decimal
	Percentage float64
	// BarPercentage is Percentage capped at 100.
	BarPercentage float64
	Status        Status
}

// Progress compares spent against budget. A nil or non-positive budget
// reports StatusNoBudget.
func Progress(budget *models.Budget, spent decimal.Decimal, warnPercent int) ProgressView {
	view := ProgressView{Spent: spent, Budget: decimal.Zero}
	if budget == nil || !budget.Amount.IsPositive() {
		view.Status = StatusNoBudget
		return view
	}
	view.Budget = budget.Amount

	if spent.IsZero() {
		view.Status = StatusNoExpenses
		return view
	}

	pct := spent.Div(budget.Amount).Mul(hundred)
	view.Percentage = pct.InexactFloat64()
	view.BarPercentage = decimal.Min(pct, hundred).InexactFloat64()

	switch {
	case pct.GreaterThanOrEqual(hundred):
		view.Status = StatusOver
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(warnPercent))):
		view.Status = StatusNear
	default:
		view.Status = StatusWithin
	}
	return view
}

// Label is the short status text shown next to the bar.
func (p ProgressView) Label() string {
	switch p.Status {
	case StatusNoBudget:
		return "Set a budget"
	case StatusNoExpenses:
		return "No expenses yet"
	case StatusOver:
		return "Over budget!"
	default:
		return decimal.NewFromFloat(p.Percentage).StringFixed(0) + "% used"
	}
}
