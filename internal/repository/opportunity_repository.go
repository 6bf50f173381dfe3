package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/model"
)

const opportunityCols = `id,name,description,account_id,contact_id,stage,probability,amount,
	currency,close_date,owner_id,assigned_to,lead_source,next_step,created_at,updated_at`

// OpportunityRepo encapsulates queries against the `opportunities` table.
// The status filter in ListOpts matches the `stage` column here.
type OpportunityRepo struct{ DB *sql.DB }

func NewOpportunityRepo(db *sql.DB) *OpportunityRepo { return &OpportunityRepo{DB: db} }

func (r *OpportunityRepo) Create(ctx context.Context, o *model.Opportunity) error {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	if o.Stage == "" {
		o.Stage = "prospecting"
	}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO opportunities
		(id,name,description,account_id,contact_id,stage,probability,amount,currency,close_date,
		 owner_id,assigned_to,lead_source,next_step,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.Name, o.Description, nullable(o.AccountID), nullable(o.ContactID), o.Stage,
		o.Probability, o.Amount, o.Currency, o.CloseDate, o.OwnerID, nullable(o.AssignedTo),
		o.LeadSource, o.NextStep, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OpportunityRepo) GetByID(ctx context.Context, id string) (*model.Opportunity, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+opportunityCols+" FROM opportunities WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanOpportunity(row)
}

func (r *OpportunityRepo) List(ctx context.Context, opts ListOpts) ([]*model.Opportunity, int, error) {
	opts.normalize()
	where := "deleted_at IS NULL"
	args := []any{}
	if opts.Status != "" {
		where += " AND stage=?"
		args = append(args, opts.Status)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM opportunities WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, opts.Limit, opts.offset())
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+opportunityCols+" FROM opportunities WHERE "+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *OpportunityRepo) Update(ctx context.Context, o *model.Opportunity) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `UPDATE opportunities SET
		name=?,description=?,account_id=?,contact_id=?,stage=?,probability=?,amount=?,
		currency=?,close_date=?,assigned_to=?,lead_source=?,next_step=?,updated_at=?
		WHERE id=? AND deleted_at IS NULL`,
		o.Name, o.Description, nullable(o.AccountID), nullable(o.ContactID), o.Stage,
		o.Probability, o.Amount, o.Currency, o.CloseDate, nullable(o.AssignedTo),
		o.LeadSource, o.NextStep, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *OpportunityRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE opportunities SET deleted_at=? WHERE id=? AND deleted_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanOpportunity(row interface{ Scan(...any) error }) (*model.Opportunity, error) {
	var o model.Opportunity
	var accountID, contactID, assignedTo sql.NullString
	var closeDate sql.NullTime
	err := row.Scan(&o.ID, &o.Name, &o.Description, &accountID, &contactID, &o.Stage,
		&o.Probability, &o.Amount, &o.Currency, &closeDate, &o.OwnerID, &assignedTo,
		&o.LeadSource, &o.NextStep, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.AccountID = accountID.String
	o.ContactID = contactID.String
	o.AssignedTo = assignedTo.String
	if closeDate.Valid {
		t := closeDate.Time
		o.CloseDate = &t
	}
	return &o, nil
}
