package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/model"
)

const userCols = "id,email,password_hash,first_name,last_name,role,is_active,created_at,updated_at"

// UserRepo encapsulates all database queries against the `users` table.
// Emails are normalized to lower-case on write and lookup so credentials
// compare the way email addresses actually behave.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// UserPatch describes a partial update. Nil fields are left untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Role      *model.Role
	IsActive  *bool
}

// Create inserts a user with an app-generated UUID and the already-hashed
// password. The users.email unique index backs up the application-level
// uniqueness check against concurrent inserts.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, firstName, lastName string, role model.Role) (*model.User, error) {
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	u.UpdatedAt = u.CreatedAt
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,email,password_hash,first_name,last_name,role,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// Update applies a partial update and returns the fresh record. Users are
// never hard-deleted; deactivation sets is_active=false through this path.
func (r *UserRepo) Update(ctx context.Context, id string, p UserPatch) (*model.User, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if p.FirstName != nil {
		set = append(set, "first_name=?")
		args = append(args, *p.FirstName)
	}
	if p.LastName != nil {
		set = append(set, "last_name=?")
		args = append(args, *p.LastName)
	}
	if p.Role != nil {
		set = append(set, "role=?")
		args = append(args, string(*p.Role))
	}
	if p.IsActive != nil {
		set = append(set, "is_active=?")
		args = append(args, *p.IsActive)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	set = append(set, "updated_at=?")
	args = append(args, time.Now().UTC(), id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ",")+" WHERE id=?", args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the row is missing or the patch was a no-op; a follow-up
		// read settles it.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// List returns a page of users plus the total count.
func (r *UserRepo) List(ctx context.Context, page, limit int) ([]*model.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		parsed, err := model.ParseRole(role)
		if err != nil {
			return nil, 0, err
		}
		u.Role = parsed
		out = append(out, &u)
	}
	return out, total, rows.Err()
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Unknown role values in the database are a data error, not something
	// to pass through silently.
	parsed, err := model.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = parsed
	return &u, nil
}
