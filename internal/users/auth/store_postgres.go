// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
	"github.com/taibuivan/wanderly/internal/platform/dberr"
	"github.com/taibuivan/wanderly/internal/platform/sec"
	"github.com/taibuivan/wanderly/pkg/pagination"
	"github.com/taibuivan/wanderly/pkg/uuid"
)

// userColumns is the projection shared by every user query; it expects the
// users table aliased as u joined with roles aliased as r.
const userColumns = `
	u.id, u.role_id, r.role::text, u.full_name, u.phone_number, u.email,
	u.password_hash, u.is_verified, u.created_at, u.updated_at`

// DB is the subset of a pgx pool the repositories run queries through.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool DB
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool DB) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create inserts the user and fills in the database timestamps.

Duplicate emails and phone numbers are caught by the partial unique indexes,
so two concurrent registrations for one address cannot both succeed.
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (id, role_id, full_name, phone_number, email, password_hash, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := repository.pool.QueryRow(ctx, query,
		user.ID,
		user.RoleID,
		user.FullName,
		user.PhoneNumber,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		constraint, _ := dberr.UniqueViolation(err)
		switch constraint {
		case constraintEmail:
			return apperr.UserAlreadyExists("User with this email already exists").WithCause(err)
		case constraintPhone:
			return apperr.UserAlreadyExists("User with this phone number already exists").WithCause(err)
		}
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err), "User")
	}

	return nil
}

// FindByID retrieves a live user by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `SELECT` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1 AND u.deleted_at IS NULL`

	return repository.findOne(ctx, query, id)
}

// FindByEmail retrieves a live user by email address.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `SELECT` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1 AND u.deleted_at IS NULL`

	return repository.findOne(ctx, query, email)
}

func (repository *PostgresUserRepository) findOne(ctx context.Context, query string, argument string) (*User, error) {
	user, err := scanUser(repository.pool.QueryRow(ctx, query, argument))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.UserNotFound()
		}
		return nil, dberr.Wrap(fmt.Errorf("postgres_user_repo_find_failed: %w", err), "User")
	}
	return user, nil
}

// MarkVerified flips is_verified on a live user.
func (repository *PostgresUserRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE users SET is_verified = TRUE, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	return repository.execOne(ctx, "mark_verified", query, id)
}

// UpdatePassword overwrites the password hash of a live user.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	return repository.execOne(ctx, "update_password", query, id, passwordHash)
}

// SoftDelete stamps deleted_at on a live user.
func (repository *PostgresUserRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
		UPDATE users SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	return repository.execOne(ctx, "soft_delete", query, id)
}

// execOne runs an UPDATE that must touch exactly one live row.
func (repository *PostgresUserRepository) execOne(ctx context.Context, action, query string, arguments ...any) error {
	tag, err := repository.pool.Exec(ctx, query, arguments...)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_%s_failed: %w", action, err), "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.UserNotFound()
	}
	return nil
}

// List returns one page of live users ordered by creation time.
func (repository *PostgresUserRepository) List(ctx context.Context, params pagination.Params) ([]*User, int, error) {
	const countQuery = `SELECT count(*) FROM users WHERE deleted_at IS NULL`
	const listQuery = `SELECT` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.deleted_at IS NULL
		ORDER BY u.created_at, u.id
		LIMIT $1 OFFSET $2`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_user_repo_count_failed: %w", err), "User")
	}

	rows, err := repository.pool.Query(ctx, listQuery, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_user_repo_list_failed: %w", err), "User")
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("postgres_user_repo_scan_failed: %w", err), "User")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_user_repo_rows_failed: %w", err), "User")
	}

	return users, total, nil
}

// scanUser hydrates a User from a row produced with [userColumns].
func scanUser(row pgx.Row) (*User, error) {
	var roleName string
	user := &User{}

	err := row.Scan(
		&user.ID,
		&user.RoleID,
		&roleName,
		&user.FullName,
		&user.PhoneNumber,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = sec.UserRole(roleName)
	return user, nil
}

// # Role Repository

// PostgresRoleRepository implements [RoleRepository] using pgx.
type PostgresRoleRepository struct {
	pool DB
}

// NewRoleRepository creates a new PostgreSQL implementation of the RoleRepository.
func NewRoleRepository(pool DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

/*
Ensure inserts the role if missing and returns the stored row.

The insert is a no-op when the unique role name already exists, so the
follow-up SELECT always reads the single winner of any concurrent race.
*/
func (repository *PostgresRoleRepository) Ensure(ctx context.Context, name sec.UserRole) (*Role, error) {
	if !name.Valid() {
		return nil, apperr.ValidationError(fmt.Sprintf("Unknown role %q", name))
	}

	const insertQuery = `
		INSERT INTO roles (id, role) VALUES ($1, $2::role_name)
		ON CONFLICT (role) DO NOTHING`
	const selectQuery = `
		SELECT id, role::text, created_at
		FROM roles
		WHERE role = $1::role_name`

	if _, err := repository.pool.Exec(ctx, insertQuery, uuid.New(), string(name)); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_role_repo_insert_failed: %w", err), "Role")
	}

	var roleName string
	role := &Role{}
	err := repository.pool.QueryRow(ctx, selectQuery, string(name)).Scan(&role.ID, &roleName, &role.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_role_repo_select_failed: %w", err), "Role")
	}

	role.Name = sec.UserRole(roleName)
	return role, nil
}
