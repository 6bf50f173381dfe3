package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/model"
)

const customFieldCols = "id,entity,field_name,field_type,display_name,required,default_value,options,created_at,updated_at"

// CustomFieldRepo encapsulates queries against the `custom_fields` table.
// Definitions are deleted for real; there is no soft-delete path because a
// removed field must stop being offered to clients immediately.
type CustomFieldRepo struct{ DB *sql.DB }

func NewCustomFieldRepo(db *sql.DB) *CustomFieldRepo { return &CustomFieldRepo{DB: db} }

func (r *CustomFieldRepo) Create(ctx context.Context, f *model.CustomField) error {
	f.ID = uuid.NewString()
	f.CreatedAt = time.Now().UTC()
	f.UpdatedAt = f.CreatedAt
	opts, err := marshalOptions(f.Options)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO custom_fields
		(id,entity,field_name,field_type,display_name,required,default_value,options,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		f.ID, f.Entity, f.FieldName, string(f.FieldType), f.DisplayName, f.Required,
		nullable(f.DefaultValue), opts, f.CreatedAt, f.UpdatedAt)
	return err
}

// ListByEntity returns all field definitions for one entity type, newest
// first.
func (r *CustomFieldRepo) ListByEntity(ctx context.Context, entity string) ([]*model.CustomField, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customFieldCols+" FROM custom_fields WHERE entity=? ORDER BY created_at DESC", entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CustomField
	for rows.Next() {
		f, err := scanCustomField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *CustomFieldRepo) GetByID(ctx context.Context, id string) (*model.CustomField, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+customFieldCols+" FROM custom_fields WHERE id=? LIMIT 1", id)
	return scanCustomField(row)
}

// Update rewrites the mutable columns. The entity binding is fixed at
// creation and never changes.
func (r *CustomFieldRepo) Update(ctx context.Context, f *model.CustomField) error {
	f.UpdatedAt = time.Now().UTC()
	opts, err := marshalOptions(f.Options)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE custom_fields SET
		field_name=?,field_type=?,display_name=?,required=?,default_value=?,options=?,updated_at=?
		WHERE id=?`,
		f.FieldName, string(f.FieldType), f.DisplayName, f.Required,
		nullable(f.DefaultValue), opts, f.UpdatedAt, f.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *CustomFieldRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM custom_fields WHERE id=?", id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func marshalOptions(opts []string) (any, error) {
	if len(opts) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanCustomField(row interface{ Scan(...any) error }) (*model.CustomField, error) {
	var f model.CustomField
	var fieldType string
	var defaultValue, options sql.NullString
	err := row.Scan(&f.ID, &f.Entity, &f.FieldName, &fieldType, &f.DisplayName,
		&f.Required, &defaultValue, &options, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	parsed, err := model.ParseFieldType(fieldType)
	if err != nil {
		return nil, err
	}
	f.FieldType = parsed
	f.DefaultValue = defaultValue.String
	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &f.Options); err != nil {
			return nil, err
		}
	}
	return &f, nil
}
