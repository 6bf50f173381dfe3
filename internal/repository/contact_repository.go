package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/model"
)

const contactCols = `id,first_name,last_name,email,phone,job_title,department,account_id,owner_id,
	assigned_to,status,lead_source,description,address,city,state,zip_code,country,created_at,updated_at`

// ContactRepo encapsulates queries against the `contacts` table.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	if c.Status == "" {
		c.Status = "active"
	}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO contacts
		(id,first_name,last_name,email,phone,job_title,department,account_id,owner_id,assigned_to,
		 status,lead_source,description,address,city,state,zip_code,country,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.JobTitle, c.Department,
		nullable(c.AccountID), c.OwnerID, nullable(c.AssignedTo), c.Status, c.LeadSource,
		c.Description, c.Address, c.City, c.State, c.ZipCode, c.Country, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ContactRepo) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+contactCols+" FROM contacts WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanContact(row)
}

func (r *ContactRepo) List(ctx context.Context, opts ListOpts) ([]*model.Contact, int, error) {
	opts.normalize()
	where := "deleted_at IS NULL"
	args := []any{}
	if opts.Status != "" {
		where += " AND status=?"
		args = append(args, opts.Status)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contacts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, opts.Limit, opts.offset())
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+contactCols+" FROM contacts WHERE "+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *ContactRepo) Update(ctx context.Context, c *model.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `UPDATE contacts SET
		first_name=?,last_name=?,email=?,phone=?,job_title=?,department=?,account_id=?,
		assigned_to=?,status=?,lead_source=?,description=?,address=?,city=?,state=?,
		zip_code=?,country=?,updated_at=?
		WHERE id=? AND deleted_at IS NULL`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.JobTitle, c.Department,
		nullable(c.AccountID), nullable(c.AssignedTo), c.Status, c.LeadSource, c.Description,
		c.Address, c.City, c.State, c.ZipCode, c.Country, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *ContactRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE contacts SET deleted_at=? WHERE id=? AND deleted_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanContact(row interface{ Scan(...any) error }) (*model.Contact, error) {
	var c model.Contact
	var accountID, assignedTo sql.NullString
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.JobTitle,
		&c.Department, &accountID, &c.OwnerID, &assignedTo, &c.Status, &c.LeadSource,
		&c.Description, &c.Address, &c.City, &c.State, &c.ZipCode, &c.Country,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.AccountID = accountID.String
	c.AssignedTo = assignedTo.String
	return &c, nil
}
