package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	applog "balanceup/internal/log"
	"balanceup/internal/models"

	"github.com/shopspring/decimal"
)

// SaveBudget stores a budget for the owner stamped with the current time.
// It does not look for an existing budget in the same month; see
// SaveBudgetIfAbsent. A nil owner stores nothing and returns nil.
func (db *DB) SaveBudget(ctx context.Context, owner *models.User, amount decimal.Decimal) (*models.Budget, error) {
	if owner == nil {
		db.log.DebugContext(ctx, "No session user, budget not saved")
		return nil, nil
	}

	b, err := insertBudget(ctx, db.conn, owner.ID, amount, db.now())
	if err != nil {
		return nil, err
	}
	db.log.InfoContext(ctx, "Budget saved",
		applog.FieldBudgetID, b.ID,
		applog.FieldUserID, owner.ID,
		applog.FieldAmount, amount.String())
	return b, nil
}

// SaveBudgetIfAbsent stores a budget unless the owner already has one for the
// current month, in which case it returns ErrBudgetAlreadySet. The check and
// the insert share a transaction.
func (db *DB) SaveBudgetIfAbsent(ctx context.Context, owner *models.User, amount decimal.Decimal) (*models.Budget, error) {
	if owner == nil {
		return nil, nil
	}

	now := db.now()
	var saved *models.Budget
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		budgets, err := budgetsFor(ctx, tx, owner.ID)
		if err != nil {
			return err
		}
		if existing := pickForMonth(budgets, now); existing != nil {
			return fmt.Errorf("save budget for %s: %w", now.Format("2006-01"), ErrBudgetAlreadySet)
		}
		saved, err = insertBudget(ctx, tx, owner.ID, amount, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	db.log.InfoContext(ctx, "Budget saved",
		applog.FieldBudgetID, saved.ID,
		applog.FieldUserID, owner.ID,
		applog.FieldAmount, amount.String())
	return saved, nil
}

// CurrentMonthBudget returns the owner's budget for the current month, or nil.
func (db *DB) CurrentMonthBudget(ctx context.Context, owner *models.User) (*models.Budget, error) {
	return db.BudgetForMonth(ctx, owner, db.now())
}

// BudgetForMonth returns the owner's budget whose set date falls in the
// month of day. When several match, the one set last wins, then the higher ID.
func (db *DB) BudgetForMonth(ctx context.Context, owner *models.User, day time.Time) (*models.Budget, error) {
	if owner == nil {
		return nil, nil
	}

	budgets, err := budgetsFor(ctx, db.conn, owner.ID)
	if err != nil {
		return nil, err
	}
	db.log.DebugContext(ctx, "Looking for budget",
		applog.FieldUserID, owner.ID,
		applog.FieldYear, day.Year(),
		applog.FieldMonth, int(day.Month()),
		applog.FieldCount, len(budgets))

	return pickForMonth(budgets, day), nil
}

func insertBudget(ctx context.Context, q querier, userID int64, amount decimal.Decimal, setDate time.Time) (*models.Budget, error) {
	b := &models.Budget{UserID: userID, Amount: amount}
	b.SetSetDate(setDate)

	result, err := q.ExecContext(ctx,
		"INSERT INTO budgets (user_id, amount, set_date_str) VALUES (?, ?, ?)",
		b.UserID, b.Amount.String(), b.SetDateStr,
	)
	if err != nil {
		return nil, failure("insert budget", err)
	}
	if b.ID, err = result.LastInsertId(); err != nil {
		return nil, failure("insert budget", err)
	}
	return b, nil
}

func budgetsFor(ctx context.Context, q querier, userID int64) ([]models.Budget, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, user_id, amount, set_date_str FROM budgets WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, failure("list budgets", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var (
			b      models.Budget
			amount string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &amount, &b.SetDateStr); err != nil {
			return nil, failure("list budgets", err)
		}
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, failure("list budgets", fmt.Errorf("budget %d amount %q: %w", b.ID, amount, err))
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, failure("list budgets", err)
	}
	return budgets, nil
}

// pickForMonth compares set dates in the location of day.
func pickForMonth(budgets []models.Budget, day time.Time) *models.Budget {
	var best *models.Budget
	for i := range budgets {
		b := &budgets[i]
		set := b.SetDate()
		if set.IsZero() {
			continue
		}
		set = set.In(day.Location())
		if set.Year() != day.Year() || set.Month() != day.Month() {
			continue
		}
		if best == nil || set.After(best.SetDate()) || (set.Equal(best.SetDate()) && b.ID > best.ID) {
			best = b
		}
	}
	if best == nil {
		return nil
	}
	found := *best
	return &found
}
