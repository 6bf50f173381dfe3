package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/model"
)

const accountCols = `id,name,description,industry,website,phone,email,address,city,state,zip_code,
	country,size,annual_revenue,owner_id,assigned_to,status,created_at,updated_at`

// AccountRepo encapsulates queries against the `accounts` table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	if a.Status == "" {
		a.Status = "active"
	}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO accounts
		(id,name,description,industry,website,phone,email,address,city,state,zip_code,country,
		 size,annual_revenue,owner_id,assigned_to,status,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.Name, a.Description, a.Industry, a.Website, a.Phone, a.Email,
		a.Address, a.City, a.State, a.ZipCode, a.Country, a.Size, a.AnnualRevenue,
		a.OwnerID, nullable(a.AssignedTo), a.Status, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanAccount(row)
}

func (r *AccountRepo) List(ctx context.Context, opts ListOpts) ([]*model.Account, int, error) {
	opts.normalize()
	where := "deleted_at IS NULL"
	args := []any{}
	if opts.Status != "" {
		where += " AND status=?"
		args = append(args, opts.Status)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, opts.Limit, opts.offset())
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE "+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *AccountRepo) Update(ctx context.Context, a *model.Account) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `UPDATE accounts SET
		name=?,description=?,industry=?,website=?,phone=?,email=?,address=?,city=?,state=?,
		zip_code=?,country=?,size=?,annual_revenue=?,assigned_to=?,status=?,updated_at=?
		WHERE id=? AND deleted_at IS NULL`,
		a.Name, a.Description, a.Industry, a.Website, a.Phone, a.Email, a.Address,
		a.City, a.State, a.ZipCode, a.Country, a.Size, a.AnnualRevenue,
		nullable(a.AssignedTo), a.Status, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *AccountRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET deleted_at=? WHERE id=? AND deleted_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	var assignedTo sql.NullString
	var revenue sql.NullFloat64
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Industry, &a.Website, &a.Phone,
		&a.Email, &a.Address, &a.City, &a.State, &a.ZipCode, &a.Country, &a.Size,
		&revenue, &a.OwnerID, &assignedTo, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.AssignedTo = assignedTo.String
	a.AnnualRevenue = revenue.Float64
	return &a, nil
}
