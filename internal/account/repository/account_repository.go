package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/notes/internal/account/domain"
	"github.com/AlibekovAA/notes/internal/common/constants"
	"github.com/AlibekovAA/notes/internal/common/db"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

var (
	ErrAccountNotFound = commonerrors.ErrAccountNotFound
	ErrEmailTaken      = commonerrors.ErrEmailAlreadyInUse
)

type Repository interface {
	Create(ctx context.Context, account domain.Account) error
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Account, error)
	UpdateDisplayName(ctx context.Context, id domain.ID, displayName string) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, account domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO accounts (id, email, display_name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(account.ID),
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.CreatedAt.UTC(),
	)
	if db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create account", start)
		return ErrEmailTaken
	}
	return db.HandleExecError(err, "create account", start)
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.findOne(ctx, "find account by email",
		`SELECT id, email, display_name, password_hash, created_at FROM accounts WHERE email = $1`, email)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	return r.findOne(ctx, "find account by id",
		`SELECT id, email, display_name, password_hash, created_at FROM accounts WHERE id = $1`, string(id))
}

func (r *PgRepository) findOne(ctx context.Context, operation, query string, arg string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	var account domain.Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		return domain.Account{}, db.HandleQueryError(err, ErrAccountNotFound, operation, start)
	}
	db.MeasureQueryDuration(operation, start)
	return account, nil
}

func (r *PgRepository) UpdateDisplayName(ctx context.Context, id domain.ID, displayName string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET display_name = $2 WHERE id = $1`, string(id), displayName)
	if err != nil {
		return db.HandleExecError(err, "update account display name", start)
	}
	db.MeasureQueryDuration("update account display name", start)
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(sqlDB *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: sqlDB}
}

func (r *SQLiteRepository) Create(ctx context.Context, account domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO accounts (id, email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(account.ID),
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create account", start)
		return ErrEmailTaken
	}
	return db.HandleExecError(err, "create account", start)
}

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.findOne(ctx, "find account by email",
		`SELECT id, email, display_name, password_hash, created_at FROM accounts WHERE email = ?`, email)
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	return r.findOne(ctx, "find account by id",
		`SELECT id, email, display_name, password_hash, created_at FROM accounts WHERE id = ?`, string(id))
}

func (r *SQLiteRepository) findOne(ctx context.Context, operation, query string, arg string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	var account domain.Account
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&createdAt,
	)
	if err != nil {
		return domain.Account{}, db.HandleQueryError(err, ErrAccountNotFound, operation, start)
	}
	db.MeasureQueryDuration(operation, start)

	account.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse account created_at %q: %w", createdAt, err)
	}
	return account, nil
}

func (r *SQLiteRepository) UpdateDisplayName(ctx context.Context, id domain.ID, displayName string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET display_name = ? WHERE id = ?`, displayName, string(id))
	if err != nil {
		return db.HandleExecError(err, "update account display name", start)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return db.HandleExecError(err, "update account display name", start)
	}
	db.MeasureQueryDuration("update account display name", start)
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
