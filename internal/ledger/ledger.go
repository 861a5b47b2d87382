// Package ledger is the application service behind the user-facing commands.
// It owns the session and passes the logged-in user explicitly to every
// scoped store call.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"balanceup/internal/auth"
	applog "balanceup/internal/log"
	"balanceup/internal/models"
	"balanceup/internal/session"
	"balanceup/internal/storage"

	"github.com/shopspring/decimal"
)

// Service wires the store to a session.
type Service struct {
	db      *storage.DB
	session *session.Session
	log     *applog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *applog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l.WithComponent(applog.ComponentLedger)
		}
	}
}

// WithClock overrides the clock used for default expense dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSession shares an existing session.
func WithSession(sess *session.Session) Option {
	return func(s *Service) {
		if sess != nil {
			s.session = sess
		}
	}
}

// New creates a Service with an empty session.
func New(db *storage.DB, opts ...Option) *Service {
	s := &Service{
		db:      db,
		session: session.New(),
		log:     applog.Discard().WithComponent(applog.ComponentLedger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentUser returns the logged-in user, if any.
func (s *Service) CurrentUser() (*models.User, bool) {
	return s.session.Current()
}

func (s *Service) requireUser() (*models.User, error) {
	u, ok := s.session.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// owner returns the session user or nil; scoped reads treat nil as empty.
func (s *Service) owner() *models.User {
	u, _ := s.session.Current()
	return u
}

// SignUp validates and stores a new account, then logs it in.
func (s *Service) SignUp(ctx context.Context, username, email, password, confirm string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, ErrEmptyUsername
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Username: username, Email: email, Password: hash}
	if err := s.db.InsertUser(ctx, u); err != nil {
		return nil, err
	}

	s.session.SetCurrent(u)
	s.log.InfoContext(ctx, "Account created", applog.FieldUserID, u.ID, applog.FieldUsername, u.Username)
	return u, nil
}

// Login checks the credentials and makes the user current.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(password, u.Password) {
		s.log.WarnContext(ctx, "Login failed", applog.FieldUsername, username)
		return nil, ErrInvalidCredentials
	}

	s.session.SetCurrent(u)
	s.log.InfoContext(ctx, "Logged in", applog.FieldUserID, u.ID)
	return u, nil
}

// Logout clears the session.
func (s *Service) Logout() {
	s.session.ClearCurrent()
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}
	if !auth.CheckPassword(current, u.Password) {
		return ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	return s.saveUser(ctx, u)
}

// UpdateEmail changes the logged-in user's email address.
func (s *Service) UpdateEmail(ctx context.Context, email string) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if err := auth.ValidateEmail(email); err != nil {
		return err
	}
	u.Email = email
	return s.saveUser(ctx, u)
}

// SetProfileImage records the path of the user's profile picture.
func (s *Service) SetProfileImage(ctx context.Context, path string) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}
	u.ProfileImagePath = strings.TrimSpace(path)
	return s.saveUser(ctx, u)
}

func (s *Service) saveUser(ctx context.Context, u *models.User) error {
	if err := s.db.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.session.SetCurrent(u)
	return nil
}

// AddExpense records an expense for the logged-in user. A zero date means today.
func (s *Service) AddExpense(ctx context.Context, amount decimal.Decimal, category string, date time.Time) (*models.Expense, error) {
	u, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	if !models.IsCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if date.IsZero() {
		date = s.now()
	}

	e := &models.Expense{Amount: amount, Category: category, Date: date}
	if err := s.db.InsertExpense(ctx, u, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExpense removes one of the logged-in user's expenses. Unknown IDs,
// and IDs owned by someone else, are left alone.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}
	e, err := s.db.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if e == nil || e.UserID != u.ID {
		return nil
	}
	return s.db.DeleteExpense(ctx, id)
}

// Expenses lists the logged-in user's expenses; empty when logged out.
func (s *Service) Expenses(ctx context.Context) ([]models.Expense, error) {
	return s.db.ListExpenses(ctx, s.owner())
}

// TotalExpenses sums every expense of the logged-in user.
func (s *Service) TotalExpenses(ctx context.Context) (decimal.Decimal, error) {
	return s.db.TotalExpenses(ctx, s.owner())
}

// ExpensesByMonth lists the logged-in user's expenses in the month of day.
func (s *Service) ExpensesByMonth(ctx context.Context, day time.Time) ([]models.Expense, error) {
	return s.db.ExpensesByMonth(ctx, s.owner(), day)
}

// CategoryTotals aggregates the month of day by category.
func (s *Service) CategoryTotals(ctx context.Context, day time.Time) ([]models.CategoryTotal, error) {
	return s.db.CategoryTotalsByMonth(ctx, s.owner(), day)
}

// HasExpensesForMonth reports whether the month of day has any expense.
func (s *Service) HasExpensesForMonth(ctx context.Context, day time.Time) (bool, error) {
	expenses, err := s.ExpensesByMonth(ctx, day)
	if err != nil {
		return false, err
	}
	return len(expenses) > 0, nil
}

// SetBudget stores this month's budget. Only one budget per month is allowed.
func (s *Service) SetBudget(ctx context.Context, amount decimal.Decimal) (*models.Budget, error) {
	u, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: budget must be greater than zero", ErrInvalidAmount)
	}
	return s.db.SaveBudgetIfAbsent(ctx, u, amount)
}

// CurrentBudget returns this month's budget, or nil.
func (s *Service) CurrentBudget(ctx context.Context) (*models.Budget, error) {
	return s.db.CurrentMonthBudget(ctx, s.owner())
}
