package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/userdir-be/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const userColumns = "id, username, account_number, email_address, identity_number, created_at, updated_at"

var sqliteColumns = map[string]string{
	models.FieldAccountNumber:  "account_number",
	models.FieldIdentityNumber: "identity_number",
}

// SQLiteStore keeps user records in a SQLite users table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a store over an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: timestamp}
}

// Insert stores a new user with a generated id.
func (s *SQLiteStore) Insert(ctx context.Context, fields models.NewUserFields) (*models.User, error) {
	now := s.now()
	user := models.User{
		ID:             uuid.New().String(),
		Username:       fields.Username,
		AccountNumber:  fields.AccountNumber,
		EmailAddress:   fields.EmailAddress,
		IdentityNumber: fields.IdentityNumber,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users("+userColumns+") VALUES(?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.AccountNumber, user.EmailAddress, user.IdentityNumber,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		return nil, wrapSQLiteErr("insert user", err)
	}
	return &user, nil
}

// FindOne returns the user matching filter, or nil.
func (s *SQLiteStore) FindOne(ctx context.Context, filter models.Filter) (*models.User, error) {
	column, ok := sqliteColumns[filter.Field]
	if !ok {
		return nil, fmt.Errorf("unsupported filter field %q", filter.Field)
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", filter.Value)
	return scanUser(row)
}

// UpdateByID applies patch to the user with the given id and returns the updated record.
func (s *SQLiteStore) UpdateByID(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := scanUser(tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil || user == nil {
		return nil, err
	}

	patch.Apply(user)
	user.UpdatedAt = s.now()

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET username = ?, account_number = ?, email_address = ?, identity_number = ?, updated_at = ? WHERE id = ?",
		user.Username, user.AccountNumber, user.EmailAddress, user.IdentityNumber, formatTime(user.UpdatedAt), id,
	)
	if err != nil {
		return nil, wrapSQLiteErr("update user", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteByID removes the user with the given id and returns its last state.
func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "DELETE FROM users WHERE id = ? RETURNING "+userColumns, id)
	return scanUser(row)
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var createdAt, updatedAt string
	err := row.Scan(&user.ID, &user.Username, &user.AccountNumber, &user.EmailAddress, &user.IdentityNumber, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if user.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at for user %s: %w", user.ID, err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at for user %s: %w", user.ID, err)
	}
	return &user, nil
}

func wrapSQLiteErr(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %s: %v", models.ErrValidation, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestamp returns the current time at the millisecond precision Mongo keeps.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
