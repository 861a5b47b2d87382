package ledger

import "errors"

var (
	ErrNotLoggedIn        = errors.New("no user is logged in")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyUsername      = errors.New("username is required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)
