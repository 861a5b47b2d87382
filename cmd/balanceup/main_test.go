package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"balanceup/internal/ledger"
	"balanceup/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const password = "Secret!1"

type CLITestSuite struct {
	suite.Suite
	dbPath string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func (suite *CLITestSuite) SetupTest() {
	suite.dbPath = filepath.Join(suite.T().TempDir(), "balanceup.db")
	suite.stdout = new(bytes.Buffer)
	suite.stderr = new(bytes.Buffer)
}

// run executes one command against the suite database and returns its output.
func (suite *CLITestSuite) run(stdin string, args ...string) (string, error) {
	suite.stdout.Reset()
	suite.stderr.Reset()
	err := run(append([]string{"-db", suite.dbPath}, args...), bytes.NewBufferString(stdin), suite.stdout, suite.stderr)
	return suite.stdout.String(), err
}

func (suite *CLITestSuite) mustRun(args ...string) string {
	out, err := suite.run("", args...)
	require.NoError(suite.T(), err, "balanceup %v", args)
	return out
}

func (suite *CLITestSuite) signUp(user string) {
	suite.mustRun("signup", "-user", user, "-email", user+"@example.com", "-password", password)
}

func (suite *CLITestSuite) TestSignUp() {
	out := suite.mustRun("signup", "-user", "ana", "-email", "ana@example.com", "-password", password)
	assert.Contains(suite.T(), out, "Account ana created with ID 1")

	_, err := suite.run("", "signup", "-user", "ana", "-email", "ana@example.com", "-password", password)
	assert.ErrorIs(suite.T(), err, storage.ErrDuplicateUsername)
}

func (suite *CLITestSuite) TestSignUpInteractive() {
	out, err := suite.run(password+"\n"+password+"\n", "signup", "-user", "ana", "-email", "ana@example.com")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Password: ")
	assert.Contains(suite.T(), out, "Confirm password: ")
	assert.Contains(suite.T(), out, "Account ana created")
}

func (suite *CLITestSuite) TestSignUpRejectsWeakAndMismatched() {
	_, err := suite.run("", "signup", "-user", "ana", "-email", "ana@example.com", "-password", "weak")
	assert.Error(suite.T(), err)

	_, err = suite.run("", "signup", "-user", "ana", "-email", "ana@example.com", "-password", password, "-confirm", "Other!1")
	assert.ErrorIs(suite.T(), err, ledger.ErrPasswordMismatch)
}

func (suite *CLITestSuite) TestSignUpMissingFlags() {
	out, err := suite.run("", "signup", "-user", "ana")
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "missing required flags")
	assert.Contains(suite.T(), out, "Usage:")
}

func (suite *CLITestSuite) TestWrongPassword() {
	suite.signUp("ana")
	_, err := suite.run("", "total", "-user", "ana", "-password", "Wrong!1")
	assert.ErrorIs(suite.T(), err, ledger.ErrInvalidCredentials)
}

func (suite *CLITestSuite) TestPromptedLogin() {
	suite.signUp("ana")
	out, err := suite.run(password+"\n", "total", "-user", "ana")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Password: ")
	assert.Contains(suite.T(), out, "Total: $0.00")
}

func (suite *CLITestSuite) TestExpenseFlow() {
	suite.signUp("ana")
	login := []string{"-user", "ana", "-password", password}

	out := suite.mustRun(append([]string{"add", "-amount", "75", "-category", "Food", "-date", "2024-03-05"}, login...)...)
	assert.Contains(suite.T(), out, "Added $75.00 Food on 2024-03-05 (ID 1)")
	suite.mustRun(append([]string{"add", "-amount", "25.50", "-category", "Bills", "-date", "2024-02-10"}, login...)...)

	_, err := suite.run("", append([]string{"add", "-amount", "5", "-category", "Rent"}, login...)...)
	assert.ErrorIs(suite.T(), err, ledger.ErrInvalidCategory)
	_, err = suite.run("", append([]string{"add", "-amount", "abc", "-category", "Food"}, login...)...)
	assert.ErrorIs(suite.T(), err, ledger.ErrInvalidAmount)
	_, err = suite.run("", append([]string{"add", "-amount", "5", "-category", "Food", "-date", "05/03/2024"}, login...)...)
	assert.Error(suite.T(), err)

	out = suite.mustRun(append([]string{"total"}, login...)...)
	assert.Contains(suite.T(), out, "Total: $100.50")

	out = suite.mustRun(append([]string{"list"}, login...)...)
	assert.Contains(suite.T(), out, "TUE, 05 MAR '24")
	assert.Contains(suite.T(), out, "SAT, 10 FEB '24")

	out = suite.mustRun(append([]string{"month", "-month", "2024-03"}, login...)...)
	assert.Contains(suite.T(), out, "March 2024")
	assert.Contains(suite.T(), out, "$75.00")
	assert.NotContains(suite.T(), out, "$25.50")
	assert.Contains(suite.T(), out, "< 2024-02")
	assert.NotContains(suite.T(), out, "2024-04 >")

	out = suite.mustRun(append([]string{"chart", "-month", "2024-02"}, login...)...)
	assert.Contains(suite.T(), out, "February 2024")
	assert.Contains(suite.T(), out, "Bills")
	assert.Contains(suite.T(), out, "100.0%")
	assert.Contains(suite.T(), out, "2024-03 >")

	out = suite.mustRun(append([]string{"chart", "-month", "2023-01"}, login...)...)
	assert.Contains(suite.T(), out, "No expenses this month.")

	suite.mustRun(append([]string{"delete", "-id", "1"}, login...)...)
	out = suite.mustRun(append([]string{"total"}, login...)...)
	assert.Contains(suite.T(), out, "Total: $25.50")
}

func (suite *CLITestSuite) TestExpensesAreScopedToUser() {
	suite.signUp("ana")
	suite.signUp("bob")
	suite.mustRun("add", "-amount", "40", "-category", "Shopping", "-user", "ana", "-password", password)

	// bob cannot delete ana's expense
	suite.mustRun("delete", "-id", "1", "-user", "bob", "-password", password)

	out := suite.mustRun("total", "-user", "bob", "-password", password)
	assert.Contains(suite.T(), out, "Total: $0.00")
	out = suite.mustRun("total", "-user", "ana", "-password", password)
	assert.Contains(suite.T(), out, "Total: $40.00")
}

func (suite *CLITestSuite) TestBudget() {
	suite.signUp("ana")
	login := []string{"-user", "ana", "-password", password}

	out := suite.mustRun(append([]string{"budget", "show"}, login...)...)
	assert.Contains(suite.T(), out, "Set a budget")

	out = suite.mustRun(append([]string{"budget", "set", "-amount", "500"}, login...)...)
	assert.Contains(suite.T(), out, "set to $500.00")

	_, err := suite.run("", append([]string{"budget", "set", "-amount", "600"}, login...)...)
	assert.ErrorIs(suite.T(), err, storage.ErrBudgetAlreadySet)

	out = suite.mustRun(append([]string{"budget", "show"}, login...)...)
	assert.Contains(suite.T(), out, "Budget:   $500.00")
	assert.Contains(suite.T(), out, "No expenses yet")

	suite.mustRun(append([]string{"add", "-amount", "450", "-category", "Bills"}, login...)...)
	out = suite.mustRun(append([]string{"home"}, login...)...)
	assert.Contains(suite.T(), out, "Hello, ana")
	assert.Contains(suite.T(), out, "90% used")
	assert.Contains(suite.T(), out, "TODAY")

	suite.mustRun(append([]string{"add", "-amount", "50", "-category", "Food"}, login...)...)
	out = suite.mustRun(append([]string{"budget", "show"}, login...)...)
	assert.Contains(suite.T(), out, "Over budget!")
}

func (suite *CLITestSuite) TestBudgetUsage() {
	suite.signUp("ana")
	_, err := suite.run("", "budget")
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), suite.stdout.String(), "Usage:")

	_, err = suite.run("", "budget", "drop")
	assert.Error(suite.T(), err)

	_, err = suite.run("", "budget", "set", "-amount", "0", "-user", "ana", "-password", password)
	assert.ErrorIs(suite.T(), err, ledger.ErrInvalidAmount)
}

func (suite *CLITestSuite) TestPasswd() {
	suite.signUp("ana")

	out, err := suite.run(password+"\nNewPass!1\nNewPass!1\n", "passwd", "-user", "ana")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Password changed")

	_, err = suite.run("", "total", "-user", "ana", "-password", password)
	assert.ErrorIs(suite.T(), err, ledger.ErrInvalidCredentials)
	suite.mustRun("total", "-user", "ana", "-password", "NewPass!1")

	suite.mustRun("passwd", "-user", "ana", "-password", "NewPass!1", "-new", "Third!pw")
	suite.mustRun("total", "-user", "ana", "-password", "Third!pw")
}

func (suite *CLITestSuite) TestProfile() {
	suite.signUp("ana")

	out := suite.mustRun("profile", "-user", "ana", "-password", password, "-email", "ana@new.org", "-image", "/pics/ana.png")
	assert.Contains(suite.T(), out, "ana@new.org")
	assert.Contains(suite.T(), out, "/pics/ana.png")

	out = suite.mustRun("profile", "-user", "ana", "-password", password)
	assert.Contains(suite.T(), out, "Email:    ana@new.org")

	_, err := suite.run("", "profile", "-user", "ana", "-password", password, "-email", "broken")
	assert.Error(suite.T(), err)
}

func (suite *CLITestSuite) TestStatus() {
	suite.signUp("ana")
	suite.mustRun("add", "-amount", "3", "-category", "Transportation", "-user", "ana", "-password", password)

	out := suite.mustRun("status")
	assert.Contains(suite.T(), out, "Database: "+suite.dbPath)
	assert.Contains(suite.T(), out, "Users:    1")
	assert.Contains(suite.T(), out, "Expenses: 1")
	assert.Contains(suite.T(), out, "Budgets:  0")
}

func (suite *CLITestSuite) TestMissingUser() {
	_, err := suite.run("", "total")
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "missing required flags: user")
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func TestRun_MissingCommand(t *testing.T) {
	stdout := new(bytes.Buffer)
	err := run(nil, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Usage:")
	assert.Contains(t, stdout.String(), "budget")
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestRun_InvalidDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	err := run([]string{"-db", tmpDir, "total", "-user", "x", "-password", "y"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "x.db")
	err := run([]string{"-db", dbPath, "-log-level", "loud", "total"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRun_EnvVarDBPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("DB_PATH", dbPath)

	err := run([]string{"signup", "-user", "envuser", "-email", "e@example.com", "-password", password}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.NoError(t, err)
	assert.FileExists(t, dbPath)
}
