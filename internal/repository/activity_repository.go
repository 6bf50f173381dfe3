package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/model"
)

const activityCols = `id,subject,type,status,priority,description,start_date,end_date,duration,
	owner_id,assigned_to,account_id,contact_id,opportunity_id,created_at,updated_at`

// ActivityRepo encapsulates queries against the `activities` table.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	if a.Status == "" {
		a.Status = "planned"
	}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO activities
		(id,subject,type,status,priority,description,start_date,end_date,duration,
		 owner_id,assigned_to,account_id,contact_id,opportunity_id,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.Subject, a.Type, a.Status, a.Priority, a.Description, a.StartDate, a.EndDate,
		a.Duration, a.OwnerID, nullable(a.AssignedTo), nullable(a.AccountID),
		nullable(a.ContactID), nullable(a.OpportunityID), a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *ActivityRepo) GetByID(ctx context.Context, id string) (*model.Activity, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+activityCols+" FROM activities WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanActivity(row)
}

func (r *ActivityRepo) List(ctx context.Context, opts ListOpts) ([]*model.Activity, int, error) {
	opts.normalize()
	where := "deleted_at IS NULL"
	args := []any{}
	if opts.Status != "" {
		where += " AND status=?"
		args = append(args, opts.Status)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM activities WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, opts.Limit, opts.offset())
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+activityCols+" FROM activities WHERE "+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *ActivityRepo) Update(ctx context.Context, a *model.Activity) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `UPDATE activities SET
		subject=?,type=?,status=?,priority=?,description=?,start_date=?,end_date=?,duration=?,
		assigned_to=?,account_id=?,contact_id=?,opportunity_id=?,updated_at=?
		WHERE id=? AND deleted_at IS NULL`,
		a.Subject, a.Type, a.Status, a.Priority, a.Description, a.StartDate, a.EndDate,
		a.Duration, nullable(a.AssignedTo), nullable(a.AccountID), nullable(a.ContactID),
		nullable(a.OpportunityID), a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *ActivityRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE activities SET deleted_at=? WHERE id=? AND deleted_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanActivity(row interface{ Scan(...any) error }) (*model.Activity, error) {
	var a model.Activity
	var assignedTo, accountID, contactID, opportunityID sql.NullString
	var start, end sql.NullTime
	err := row.Scan(&a.ID, &a.Subject, &a.Type, &a.Status, &a.Priority, &a.Description,
		&start, &end, &a.Duration, &a.OwnerID, &assignedTo, &accountID, &contactID,
		&opportunityID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.AssignedTo = assignedTo.String
	a.AccountID = accountID.String
	a.ContactID = contactID.String
	a.OpportunityID = opportunityID.String
	if start.Valid {
		t := start.Time
		a.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		a.EndDate = &t
	}
	return &a, nil
}
