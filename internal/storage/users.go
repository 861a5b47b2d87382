package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	applog "balanceup/internal/log"
	"balanceup/internal/models"
)

const userColumns = "id, username, email, password, profile_image_path"

// InsertUser stores a new user and writes the assigned ID back to u.
// The username check and the insert run in one transaction; a taken
// username fails with ErrDuplicateUsername and nothing is written.
func (db *DB) InsertUser(ctx context.Context, u *models.User) error {
	var id int64
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := getUserByUsername(ctx, tx, u.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("insert user %q: %w", u.Username, ErrDuplicateUsername)
		}

		result, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, email, password, profile_image_path) VALUES (?, ?, ?, ?)",
			u.Username, u.Email, u.Password, u.ProfileImagePath,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert user %q: %w", u.Username, ErrDuplicateUsername)
			}
			return failure("insert user", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return failure("insert user", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			db.log.WarnContext(ctx, "Username already exists", applog.FieldUsername, u.Username)
		}
		return err
	}

	u.ID = id
	db.log.InfoContext(ctx, "User inserted", applog.FieldUserID, id, applog.FieldUsername, u.Username)
	return nil
}

// UpdateUser overwrites the row matching u.ID.
func (db *DB) UpdateUser(ctx context.Context, u *models.User) error {
	result, err := db.conn.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ?, password = ?, profile_image_path = ? WHERE id = ?",
		u.Username, u.Email, u.Password, u.ProfileImagePath, u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %d: %w", u.ID, ErrDuplicateUsername)
		}
		return failure("update user", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return failure("update user", err)
	}
	if n == 0 {
		return fmt.Errorf("update user %d: %w", u.ID, ErrNotFound)
	}

	db.log.InfoContext(ctx, "User updated", applog.FieldUserID, u.ID)
	return nil
}

// GetUserByUsername retrieves a user by exact, case-sensitive username.
// It returns nil and no error when the user does not exist.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return getUserByUsername(ctx, db.conn, username)
}

// GetUserByID retrieves a user by ID, or nil when absent.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row, "get user by id")
}

func getUserByUsername(ctx context.Context, q querier, username string) (*models.User, error) {
	row := q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row, "get user by username")
}

func scanUser(row *sql.Row, op string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.ProfileImagePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, failure(op, err)
	}
	return &u, nil
}
