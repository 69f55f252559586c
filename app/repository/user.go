package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/petmatch/auth-service/app/entity"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateEmail is returned by Create when the canonical_email unique
// index rejects the row, closing the concurrent-registration race at the
// store rather than in application code.
var ErrDuplicateEmail = errors.New("email already registered")

const mysqlErrDuplicateEntry = 1062

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, user_type, email, canonical_email, password_hash, name, phone, address, locality, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.UserType,
		user.Email,
		user.CanonicalEmail,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Address,
		user.Locality,
		user.CreatedAt,
		user.UpdatedAt,
	)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
		return ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) FindByCanonicalEmail(ctx context.Context, canonicalEmail string) (*entity.User, error) {
	query := `
		SELECT id, user_type, email, canonical_email, password_hash, name, phone, address, locality, created_at, updated_at
		FROM users WHERE canonical_email = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, canonicalEmail))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, user_type, email, canonical_email, password_hash, name, phone, address, locality, created_at, updated_at
		FROM users WHERE id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			email = ?,
			canonical_email = ?,
			password_hash = ?,
			name = ?,
			phone = ?,
			address = ?,
			locality = ?,
			updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.CanonicalEmail,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Address,
		user.Locality,
		user.UpdatedAt,
		user.ID,
	)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
		return ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *UserRepository) scanOne(row *sql.Row) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.UserType,
		&user.Email,
		&user.CanonicalEmail,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&user.Address,
		&user.Locality,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
