package repository

import "database/sql"

// ListOpts carries pagination and the optional status filter shared by the
// CRM list queries.
type ListOpts struct {
	Page   int
	Limit  int
	Status string
}

func (o *ListOpts) normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 || o.Limit > 100 {
		o.Limit = 10
	}
}

func (o *ListOpts) offset() int { return (o.Page - 1) * o.Limit }

// nullable maps an empty string to SQL NULL so optional foreign keys and
// assignee columns do not store empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// checkAffected converts a zero-row UPDATE/DELETE into ErrNotFound.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
