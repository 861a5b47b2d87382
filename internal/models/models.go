package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user account.
type User struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"-"`
	ProfileImagePath string `json:"profile_image_path,omitempty"`
}

// Expense represents a single spending record.
type Expense struct {
	ID       int64           `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     time.Time       `json:"date"`
	UserID   int64           `json:"user_id"`
}

// Budget is the monthly spending limit a user sets.
// SetDateStr is persisted as text; use SetDate and SetSetDate to work with it.
type Budget struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	SetDateStr string          `json:"set_date"`
}

// SetDateLayout is the ISO-8601 layout budgets are stored with.
const SetDateLayout = time.RFC3339Nano

// SetDate parses SetDateStr. A budget without a stored date reports the zero time.
func (b Budget) SetDate() time.Time {
	if b.SetDateStr == "" {
		return time.Time{}
	}
	t, err := time.Parse(SetDateLayout, b.SetDateStr)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SetSetDate stores t in SetDateStr.
func (b *Budget) SetSetDate(t time.Time) {
	b.SetDateStr = t.Format(SetDateLayout)
}

// CategoryTotal is the aggregated spending of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}
