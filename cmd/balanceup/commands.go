package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"balanceup/internal/ledger"
	applog "balanceup/internal/log"
	"balanceup/internal/models"
	"balanceup/internal/report"
	"balanceup/internal/storage"

	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

type command struct {
	name    string
	summary string
	run     func(a *app, args []string) error
}

var commands = []command{
	{"signup", "Create an account", runSignUp},
	{"add", "Record an expense", runAdd},
	{"delete", "Delete an expense", runDelete},
	{"list", "List all expenses grouped by day", runList},
	{"total", "Show the total of all expenses", runTotal},
	{"month", "List the expenses of one month", runMonth},
	{"chart", "Show spending by category for one month", runChart},
	{"budget", "Set or show this month's budget (set|show)", runBudget},
	{"home", "Show budget progress and recent expenses", runHome},
	{"passwd", "Change your password", runPasswd},
	{"profile", "Show or update your profile", runProfile},
	{"status", "Show the database location and row counts", runStatus},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// credentials are the -user and -password flags shared by commands that act
// on an account.
type credentials struct {
	user     *string
	password *string
}

func credentialFlags(fs *flag.FlagSet) credentials {
	return credentials{
		user:     fs.String("user", "", "Username"),
		password: fs.String("password", "", "Password (optional, will prompt if omitted)"),
	}
}

func (a *app) askPassword(label string) (string, error) {
	fmt.Fprint(a.out, label)
	password, err := a.in.Password()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(a.out) // Print newline after password input
	return password, nil
}

// login starts the session every scoped command needs. A prompted password
// is stored back into c.
func (a *app) login(c credentials) error {
	if strings.TrimSpace(*c.user) == "" {
		return fmt.Errorf("missing required flags: user")
	}
	if *c.password == "" {
		password, err := a.askPassword("Password: ")
		if err != nil {
			return err
		}
		*c.password = password
	}
	_, err := a.svc.Login(a.ctx, *c.user, *c.password)
	return err
}

func parseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, fmt.Errorf("missing required flags: amount")
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ledger.ErrInvalidAmount, s)
	}
	return d, nil
}

// parseMonth reads YYYY-MM; empty means the current month.
func (a *app) parseMonth(s string) (time.Time, error) {
	if s == "" {
		now := a.now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

func runSignUp(a *app, args []string) error {
	fs := a.flagSet("signup")
	c := credentialFlags(fs)
	email := fs.String("email", "", "Email address")
	confirm := fs.String("confirm", "", "Password confirmation (defaults to -password)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *c.user == "" || *email == "" {
		fmt.Fprintln(a.out, "Usage: balanceup signup -user <username> -email <email> [-password <password>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user, email")
	}

	password, confirmation := *c.password, *confirm
	if password == "" {
		var err error
		if password, err = a.askPassword("Password: "); err != nil {
			return err
		}
		if confirmation, err = a.askPassword("Confirm password: "); err != nil {
			return err
		}
	} else if confirmation == "" {
		confirmation = password
	}

	u, err := a.svc.SignUp(a.ctx, *c.user, *email, password, confirmation)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.styles.success.Render(fmt.Sprintf("Account %s created with ID %d", u.Username, u.ID)))
	return nil
}

func runAdd(a *app, args []string) error {
	fs := a.flagSet("add")
	c := credentialFlags(fs)
	amountFlag := fs.String("amount", "", "Amount spent")
	category := fs.String("category", "", "One of: "+strings.Join(categoryNames(), ", "))
	dateFlag := fs.String("date", "", "Date as YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := parseAmount(*amountFlag)
	if err != nil {
		return err
	}
	var date time.Time
	if *dateFlag != "" {
		if date, err = time.Parse(storage.DateLayout, *dateFlag); err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", *dateFlag)
		}
	}
	if err := a.login(c); err != nil {
		return err
	}

	e, err := a.svc.AddExpense(a.ctx, amount, *category, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s on %s (ID %d)\n", money(e.Amount), e.Category, e.Date.Format(storage.DateLayout), e.ID)
	return nil
}

func runDelete(a *app, args []string) error {
	fs := a.flagSet("delete")
	c := credentialFlags(fs)
	id := fs.Int64("id", 0, "Expense ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("missing required flags: id")
	}
	if err := a.login(c); err != nil {
		return err
	}
	if err := a.svc.DeleteExpense(a.ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Expense %d deleted\n", *id)
	return nil
}

func runList(a *app, args []string) error {
	fs := a.flagSet("list")
	c := credentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	expenses, err := a.svc.Expenses(a.ctx)
	if err != nil {
		return err
	}
	a.styles.groups(a.out, report.GroupByDay(expenses, a.now()))
	return nil
}

func runTotal(a *app, args []string) error {
	fs := a.flagSet("total")
	c := credentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	total, err := a.svc.TotalExpenses(a.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total: %s\n", money(total))
	return nil
}

func runMonth(a *app, args []string) error {
	fs := a.flagSet("month")
	c := credentialFlags(fs)
	monthFlag := fs.String("month", "", "Month as YYYY-MM (default current month)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	month, err := a.parseMonth(*monthFlag)
	if err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	expenses, err := a.svc.ExpensesByMonth(a.ctx, month)
	if err != nil {
		return err
	}
	nav, err := a.navigation(month)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.styles.title.Render(month.Format("January 2006")))
	a.styles.groups(a.out, report.GroupByDay(expenses, a.now()))
	a.printNavigation(nav)
	return nil
}

func runChart(a *app, args []string) error {
	fs := a.flagSet("chart")
	c := credentialFlags(fs)
	monthFlag := fs.String("month", "", "Month as YYYY-MM (default current month)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	month, err := a.parseMonth(*monthFlag)
	if err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	totals, err := a.svc.CategoryTotals(a.ctx, month)
	if err != nil {
		return err
	}
	nav, err := a.navigation(month)
	if err != nil {
		return err
	}

	a.styles.breakdown(a.out, report.Breakdown(month, totals))
	a.printNavigation(nav)
	return nil
}

func (a *app) navigation(month time.Time) (report.NavigationView, error) {
	var firstErr error
	hasData := func(m time.Time) bool {
		ok, err := a.svc.HasExpensesForMonth(a.ctx, m)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return ok
	}
	nav := report.Navigation(month, a.now(), hasData)
	return nav, firstErr
}

func (a *app) printNavigation(nav report.NavigationView) {
	var parts []string
	if nav.HasPrev {
		parts = append(parts, "< "+nav.Prev.Format(monthLayout))
	}
	if nav.HasNext {
		parts = append(parts, nav.Next.Format(monthLayout)+" >")
	}
	if len(parts) > 0 {
		fmt.Fprintln(a.out, a.styles.muted.Render(strings.Join(parts, "   ")))
	}
}

func runBudget(a *app, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: balanceup budget set -amount <amount> | balanceup budget show")
		return fmt.Errorf("missing budget action: set or show")
	}

	switch args[0] {
	case "set":
		return runBudgetSet(a, args[1:])
	case "show":
		return runBudgetShow(a, args[1:])
	default:
		return fmt.Errorf("unknown budget action %q: expected set or show", args[0])
	}
}

func runBudgetSet(a *app, args []string) error {
	fs := a.flagSet("budget set")
	c := credentialFlags(fs)
	amountFlag := fs.String("amount", "", "Budget for the current month")
	if err := fs.Parse(args); err != nil {
		return err
	}
	amount, err := parseAmount(*amountFlag)
	if err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	b, err := a.svc.SetBudget(a.ctx, amount)
	if err != nil {
		return err
	}
	a.log.DebugContext(a.ctx, "Budget set", applog.FieldBudgetID, b.ID)
	fmt.Fprintln(a.out, a.styles.success.Render(fmt.Sprintf("Budget for %s set to %s", b.SetDate().Format("January 2006"), money(b.Amount))))
	return nil
}

func runBudgetShow(a *app, args []string) error {
	fs := a.flagSet("budget show")
	c := credentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	p, err := a.progress()
	if err != nil {
		return err
	}
	a.styles.progress(a.out, p)
	return nil
}

// progress compares every expense on record with this month's budget.
func (a *app) progress() (report.ProgressView, error) {
	budget, err := a.svc.CurrentBudget(a.ctx)
	if err != nil {
		return report.ProgressView{}, err
	}
	spent, err := a.svc.TotalExpenses(a.ctx)
	if err != nil {
		return report.ProgressView{}, err
	}
	return report.Progress(budget, spent, a.cfg.BudgetWarnPercent), nil
}

func runHome(a *app, args []string) error {
	fs := a.flagSet("home")
	c := credentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	u, _ := a.svc.CurrentUser()
	fmt.Fprintln(a.out, a.styles.title.Render("Hello, "+u.Username))

	p, err := a.progress()
	if err != nil {
		return err
	}
	a.styles.progress(a.out, p)
	fmt.Fprintln(a.out)

	expenses, err := a.svc.Expenses(a.ctx)
	if err != nil {
		return err
	}
	a.styles.groups(a.out, report.GroupByDay(expenses, a.now()))
	return nil
}

func runPasswd(a *app, args []string) error {
	fs := a.flagSet("passwd")
	c := credentialFlags(fs)
	newFlag := fs.String("new", "", "New password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	newPassword, confirm := *newFlag, *newFlag
	if newPassword == "" {
		var err error
		if newPassword, err = a.askPassword("New password: "); err != nil {
			return err
		}
		if confirm, err = a.askPassword("Confirm password: "); err != nil {
			return err
		}
	}

	if err := a.svc.ChangePassword(a.ctx, *c.password, newPassword, confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.styles.success.Render("Password changed"))
	return nil
}

func runProfile(a *app, args []string) error {
	fs := a.flagSet("profile")
	c := credentialFlags(fs)
	email := fs.String("email", "", "New email address")
	image := fs.String("image", "", "Path to a profile picture")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.login(c); err != nil {
		return err
	}

	if *email != "" {
		if err := a.svc.UpdateEmail(a.ctx, *email); err != nil {
			return err
		}
	}
	if *image != "" {
		if err := a.svc.SetProfileImage(a.ctx, *image); err != nil {
			return err
		}
	}

	u, _ := a.svc.CurrentUser()
	fmt.Fprintf(a.out, "Username: %s\n", u.Username)
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	if u.ProfileImagePath != "" {
		fmt.Fprintf(a.out, "Picture:  %s\n", u.ProfileImagePath)
	}
	return nil
}

func runStatus(a *app, args []string) error {
	fs := a.flagSet("status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	users, err := a.db.UserCount(a.ctx)
	if err != nil {
		return err
	}
	expenses, err := a.db.ExpenseCount(a.ctx)
	if err != nil {
		return err
	}
	budgets, err := a.db.BudgetCount(a.ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Database: %s\n", a.cfg.DBPath)
	fmt.Fprintf(a.out, "Users:    %d\n", users)
	fmt.Fprintf(a.out, "Expenses: %d\n", expenses)
	fmt.Fprintf(a.out, "Budgets:  %d\n", budgets)
	return nil
}

func categoryNames() []string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, c.Name)
	}
	return names
}
