package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/model"
)

const leadCols = `id,first_name,last_name,company,email,phone,job_title,lead_source,status,
	lead_score,owner_id,assigned_to,description,address,city,state,zip_code,country,
	contact_id,account_id,converted_at,created_at,updated_at`

// LeadRepo encapsulates queries against the `leads` table. Deleted rows are
// retained with deleted_at set and excluded from every read path.
type LeadRepo struct{ DB *sql.DB }

func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{DB: db} }

// Create inserts a lead, filling ID and timestamps on the passed model.
func (r *LeadRepo) Create(ctx context.Context, l *model.Lead) error {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	if l.Status == "" {
		l.Status = "new"
	}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO leads
		(id,first_name,last_name,company,email,phone,job_title,lead_source,status,lead_score,
		 owner_id,assigned_to,description,address,city,state,zip_code,country,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.ID, l.FirstName, l.LastName, l.Company, l.Email, l.Phone, l.JobTitle, l.LeadSource,
		l.Status, l.LeadScore, l.OwnerID, nullable(l.AssignedTo), l.Description,
		l.Address, l.City, l.State, l.ZipCode, l.Country, l.CreatedAt, l.UpdatedAt)
	return err
}

// GetByID fetches a live (non-deleted) lead.
func (r *LeadRepo) GetByID(ctx context.Context, id string) (*model.Lead, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+leadCols+" FROM leads WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanLead(row)
}

// List returns a page of live leads, optionally filtered by status, with the
// total count for pagination.
func (r *LeadRepo) List(ctx context.Context, opts ListOpts) ([]*model.Lead, int, error) {
	opts.normalize()
	where := "deleted_at IS NULL"
	args := []any{}
	if opts.Status != "" {
		where += " AND status=?"
		args = append(args, opts.Status)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leads WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, opts.Limit, opts.offset())
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+leadCols+" FROM leads WHERE "+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// Update rewrites all mutable columns from the passed model.
func (r *LeadRepo) Update(ctx context.Context, l *model.Lead) error {
	l.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `UPDATE leads SET
		first_name=?,last_name=?,company=?,email=?,phone=?,job_title=?,lead_source=?,status=?,
		lead_score=?,assigned_to=?,description=?,address=?,city=?,state=?,zip_code=?,country=?,updated_at=?
		WHERE id=? AND deleted_at IS NULL`,
		l.FirstName, l.LastName, l.Company, l.Email, l.Phone, l.JobTitle, l.LeadSource, l.Status,
		l.LeadScore, nullable(l.AssignedTo), l.Description, l.Address, l.City, l.State,
		l.ZipCode, l.Country, l.UpdatedAt, l.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// SoftDelete stamps deleted_at; the row stays behind for audits.
func (r *LeadRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE leads SET deleted_at=? WHERE id=? AND deleted_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// Convert turns a lead into a contact plus an optional account in one
// transaction, then marks the lead converted. The caller supplies the
// pre-built contact and account models; account may be nil when the lead
// has no company to promote.
func (r *LeadRepo) Convert(ctx context.Context, lead *model.Lead, contact *model.Contact, account *model.Account) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if account != nil {
		account.ID = uuid.NewString()
		account.CreatedAt = now
		account.UpdatedAt = now
		if account.Status == "" {
			account.Status = "active"
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO accounts
			(id,name,description,industry,website,phone,email,address,city,state,zip_code,country,
			 size,annual_revenue,owner_id,assigned_to,status,created_at,updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			account.ID, account.Name, account.Description, account.Industry, account.Website,
			account.Phone, account.Email, account.Address, account.City, account.State,
			account.ZipCode, account.Country, account.Size, account.AnnualRevenue,
			account.OwnerID, nullable(account.AssignedTo), account.Status, now, now); err != nil {
			return err
		}
		contact.AccountID = account.ID
	}

	contact.ID = uuid.NewString()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	if contact.Status == "" {
		contact.Status = "active"
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO contacts
		(id,first_name,last_name,email,phone,job_title,department,account_id,owner_id,assigned_to,
		 status,lead_source,description,address,city,state,zip_code,country,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		contact.ID, contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.JobTitle, contact.Department, nullable(contact.AccountID), contact.OwnerID,
		nullable(contact.AssignedTo), contact.Status, contact.LeadSource, contact.Description,
		contact.Address, contact.City, contact.State, contact.ZipCode, contact.Country, now, now); err != nil {
		return err
	}

	lead.Status = "converted"
	lead.ContactID = contact.ID
	if account != nil {
		lead.AccountID = account.ID
	}
	lead.ConvertedAt = &now
	lead.UpdatedAt = now
	res, err := tx.ExecContext(ctx, `UPDATE leads SET
		status=?,contact_id=?,account_id=?,converted_at=?,updated_at=?
		WHERE id=? AND deleted_at IS NULL`,
		lead.Status, lead.ContactID, nullable(lead.AccountID), now, now, lead.ID)
	if err != nil {
		return err
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func scanLead(row interface{ Scan(...any) error }) (*model.Lead, error) {
	var l model.Lead
	var assignedTo, contactID, accountID sql.NullString
	var convertedAt sql.NullTime
	err := row.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Company, &l.Email, &l.Phone,
		&l.JobTitle, &l.LeadSource, &l.Status, &l.LeadScore, &l.OwnerID, &assignedTo,
		&l.Description, &l.Address, &l.City, &l.State, &l.ZipCode, &l.Country,
		&contactID, &accountID, &convertedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	l.AssignedTo = assignedTo.String
	l.ContactID = contactID.String
	l.AccountID = accountID.String
	if convertedAt.Valid {
		t := convertedAt.Time
		l.ConvertedAt = &t
	}
	return &l, nil
}
