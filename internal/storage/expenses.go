package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	applog "balanceup/internal/log"
	"balanceup/internal/models"

	"github.com/shopspring/decimal"
)

// DateLayout is how expense dates are stored. Time of day is not kept.
const DateLayout = "2006-01-02"

const expenseColumns = "id, amount, category, date, user_id"

// InsertExpense stores e and writes the assigned ID back to it.
// With an owner, e.UserID is replaced by the owner's ID; the caller's value
// is never trusted. Without one, e is stored with the owner it carries.
func (db *DB) InsertExpense(ctx context.Context, owner *models.User, e *models.Expense) error {
	if owner != nil {
		e.UserID = owner.ID
	} else {
		db.log.WarnContext(ctx, "Expense inserted without a session user", applog.FieldUserID, e.UserID)
	}

	date := e.Date
	if date.IsZero() {
		date = db.now()
	}

	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO expenses (amount, category, date, user_id) VALUES (?, ?, ?, ?)",
		e.Amount.String(), e.Category, date.Format(DateLayout), e.UserID,
	)
	if err != nil {
		return failure("insert expense", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return failure("insert expense", err)
	}
	e.ID = id
	e.Date = truncateToDate(date)

	db.log.InfoContext(ctx, "Expense saved",
		applog.FieldExpenseID, id,
		applog.FieldUserID, e.UserID,
		applog.FieldAmount, e.Amount.String(),
		applog.FieldCategory, e.Category)
	return nil
}

// GetExpense retrieves a single expense by ID, or nil when absent.
func (db *DB) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)

	var (
		e      models.Expense
		amount string
		date   string
	)
	err := row.Scan(&e.ID, &amount, &e.Category, &date, &e.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, failure("get expense", err)
	}
	if err := decodeExpense(&e, amount, date); err != nil {
		return nil, failure("get expense", err)
	}
	return &e, nil
}

// DeleteExpense removes an expense by ID. A missing ID is not an error.
func (db *DB) DeleteExpense(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return failure("delete expense", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		db.log.DebugContext(ctx, "Expense not found", applog.FieldExpenseID, id)
		return nil
	}
	db.log.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id)
	return nil
}

// ListExpenses returns the owner's expenses in insertion order.
// A nil owner yields an empty list.
func (db *DB) ListExpenses(ctx context.Context, owner *models.User) ([]models.Expense, error) {
	if owner == nil {
		return []models.Expense{}, nil
	}
	return db.queryExpenses(ctx, "list expenses",
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY id",
		owner.ID,
	)
}

// TotalExpenses sums the amounts of the owner's expenses.
func (db *DB) TotalExpenses(ctx context.Context, owner *models.User) (decimal.Decimal, error) {
	expenses, err := db.ListExpenses(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}
	return sumAmounts(expenses), nil
}

// ExpensesByMonth returns the owner's expenses dated from the first to the
// last day, inclusive, of the month containing day.
func (db *DB) ExpensesByMonth(ctx context.Context, owner *models.User, day time.Time) ([]models.Expense, error) {
	if owner == nil {
		return []models.Expense{}, nil
	}
	first, last := MonthRange(day)
	return db.queryExpenses(ctx, "list expenses by month",
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY id",
		owner.ID, first.Format(DateLayout), last.Format(DateLayout),
	)
}

// CategoryTotalsByMonth aggregates the owner's spending per category for the
// month containing day, largest total first.
func (db *DB) CategoryTotalsByMonth(ctx context.Context, owner *models.User, day time.Time) ([]models.CategoryTotal, error) {
	expenses, err := db.ExpensesByMonth(ctx, owner, day)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*models.CategoryTotal)
	for _, e := range expenses {
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &models.CategoryTotal{Category: e.Category, Total: decimal.Zero}
			byCategory[e.Category] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}

	totals := make([]models.CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		totals = append(totals, *ct)
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}

// MonthRange returns the first and last calendar day of the month containing day.
func MonthRange(day time.Time) (first, last time.Time) {
	first = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

func (db *DB) queryExpenses(ctx context.Context, op, query string, args ...any) ([]models.Expense, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, failure(op, err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var (
			e      models.Expense
			amount string
			date   string
		)
		if err := rows.Scan(&e.ID, &amount, &e.Category, &date, &e.UserID); err != nil {
			return nil, failure(op, err)
		}
		if err := decodeExpense(&e, amount, date); err != nil {
			return nil, failure(op, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, failure(op, err)
	}
	return expenses, nil
}

func decodeExpense(e *models.Expense, amount, date string) error {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("expense %d amount %q: %w", e.ID, amount, err)
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("expense %d date %q: %w", e.ID, date, err)
	}
	e.Amount = a
	e.Date = d
	return nil
}

func sumAmounts(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
