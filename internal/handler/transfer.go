package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/auth"
	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/model"
	"github.com/abetworks/crm-backend/internal/repository"
)

// UserDirectory extends UserStore with the listing the user export needs.
type UserDirectory interface {
	UserStore
	List(ctx context.Context, page, limit int) ([]*model.User, int, error)
}

// TransferHandler serves the /api/data routes: bulk import, export, delete
// and update across all record types. Imports always land under the
// importing user's ownership; the user entity is admin-only in both
// directions.
type TransferHandler struct {
	Leads         LeadStore
	Contacts      ContactStore
	Accounts      AccountStore
	Opportunities OpportunityStore
	Activities    ActivityStore
	Users         UserDirectory
	BcryptCost    int
	Audit         AuditSink
}

// importedUserPassword is assigned to imported users that arrive without
// one; they are expected to change it on first login.
const importedUserPassword = "TempPass123!"

const exportPageSize = 100

type importReq struct {
	Entity string            `json:"entity"`
	Data   []json.RawMessage `json:"data"`
}

// Import creates one record per element of the data array and reports
// per-record failures without aborting the batch.
func (h *TransferHandler) Import(c echo.Context) error {
	var req importReq
	if err := c.Bind(&req); err != nil || req.Entity == "" || req.Data == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Entity and data array are required"})
	}
	if !model.ValidEntity(req.Entity) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid entity type"})
	}
	if req.Entity == "user" && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Only admin users can import user data"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor := middleware.UserID(c)
	var imported, failed int
	var errs []string
	for i, raw := range req.Data {
		if err := h.importOne(ctx, req.Entity, raw, actor); err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("Record %d: %v", i+1, err))
			continue
		}
		imported++
	}
	audit(h.Audit, actor, "import", req.Entity, strconv.Itoa(imported))
	return c.JSON(http.StatusOK, echo.Map{
		"message":       fmt.Sprintf("Successfully imported %d records, with %d errors", imported, failed),
		"importedCount": imported,
		"errorCount":    failed,
		"errors":        errs,
	})
}

func (h *TransferHandler) importOne(ctx context.Context, entity string, raw json.RawMessage, ownerID string) error {
	switch entity {
	case "lead":
		var m model.Lead
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.FirstName == "" || m.LastName == "" {
			return fmt.Errorf("first name and last name are required")
		}
		m.ID = ""
		m.OwnerID = ownerID
		return h.Leads.Create(ctx, &m)
	case "contact":
		var m model.Contact
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.FirstName == "" || m.LastName == "" {
			return fmt.Errorf("first name and last name are required")
		}
		m.ID = ""
		m.OwnerID = ownerID
		return h.Contacts.Create(ctx, &m)
	case "account":
		var m model.Account
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.Name == "" {
			return fmt.Errorf("name is required")
		}
		m.ID = ""
		m.OwnerID = ownerID
		return h.Accounts.Create(ctx, &m)
	case "opportunity":
		var m model.Opportunity
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.Name == "" {
			return fmt.Errorf("name is required")
		}
		if m.Probability < 0 || m.Probability > 100 {
			return fmt.Errorf("probability must be between 0 and 100")
		}
		m.ID = ""
		m.OwnerID = ownerID
		return h.Opportunities.Create(ctx, &m)
	case "activity":
		var m model.Activity
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.Subject == "" || m.Type == "" {
			return fmt.Errorf("subject and type are required")
		}
		m.ID = ""
		m.OwnerID = ownerID
		return h.Activities.Create(ctx, &m)
	case "user":
		var m struct {
			Email     string `json:"email"`
			Password  string `json:"password"`
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Role      string `json:"role"`
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		if m.Email == "" || m.FirstName == "" || m.LastName == "" {
			return fmt.Errorf("email, first name and last name are required")
		}
		role := model.RoleUser
		if m.Role != "" {
			var err error
			if role, err = model.ParseRole(m.Role); err != nil {
				return err
			}
		}
		if m.Password == "" {
			m.Password = importedUserPassword
		}
		hash, err := auth.HashPassword(m.Password, h.BcryptCost)
		if err != nil {
			return err
		}
		_, err = h.Users.Create(ctx, m.Email, hash, m.FirstName, m.LastName, role)
		return err
	}
	return fmt.Errorf("invalid entity type %q", entity)
}

// Export streams every live record of one entity type, as a JSON envelope
// or a CSV download. ?fields=a,b restricts the columns, ?limit= caps the
// row count.
func (h *TransferHandler) Export(c echo.Context) error {
	entity := c.Param("entity")
	if !model.ValidEntity(entity) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid entity type"})
	}
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid format. Valid formats are: json, csv"})
	}
	if entity == "user" && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Only admin users can export user data"})
	}
	max, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	records, err := h.collect(ctx, entity, max)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not export data"})
	}

	var fields []string
	if raw := c.QueryParam("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}
	rows, err := toRows(records, fields)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not export data"})
	}

	if format == "csv" {
		return writeCSV(c, entity, rows, fields)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "count": len(rows)})
}

// collect pages through the store until every record (or max, when set) is
// fetched.
func (h *TransferHandler) collect(ctx context.Context, entity string, max int) ([]any, error) {
	var out []any
	for page := 1; ; page++ {
		opts := repository.ListOpts{Page: page, Limit: exportPageSize}
		var batch int
		switch entity {
		case "lead":
			items, _, err := h.Leads.List(ctx, opts)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				out = append(out, it)
			}
			batch = len(items)
		case "contact":
			items, _, err := h.Contacts.List(ctx, opts)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				out = append(out, it)
			}
			batch = len(items)
		case "account":
			items, _, err := h.Accounts.List(ctx, opts)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				out = append(out, it)
			}
			batch = len(items)
		case "opportunity":
			items, _, err := h.Opportunities.List(ctx, opts)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				out = append(out, it)
			}
			batch = len(items)
		case "activity":
			items, _, err := h.Activities.List(ctx, opts)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				out = append(out, it)
			}
			batch = len(items)
		case "user":
			items, _, err := h.Users.List(ctx, page, exportPageSize)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				out = append(out, it.Public())
			}
			batch = len(items)
		}
		if max > 0 && len(out) >= max {
			return out[:max], nil
		}
		if batch < exportPageSize {
			return out, nil
		}
	}
}

// toRows flattens records into maps via their JSON form, optionally keeping
// only the requested fields.
func toRows(records []any, fields []string) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			filtered := make(map[string]any, len(fields))
			for _, f := range fields {
				if v, ok := m[f]; ok {
					filtered[f] = v
				}
			}
			m = filtered
		}
		rows = append(rows, m)
	}
	return rows, nil
}

func writeCSV(c echo.Context, entity string, rows []map[string]any, fields []string) error {
	header := fields
	if len(header) == 0 {
		seen := map[string]bool{}
		for _, row := range rows {
			for k := range row {
				seen[k] = true
			}
		}
		for k := range seen {
			header = append(header, k)
		}
		sort.Strings(header)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+entity+`.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		line := make([]string, len(header))
		for i, k := range header {
			line[i] = csvCell(row[k])
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// csvCell renders one value; nested structures fall back to their JSON
// form.
func csvCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

type bulkDeleteReq struct {
	Entity string   `json:"entity"`
	IDs    []string `json:"ids"`
}

// BulkDelete soft-deletes a list of records of one entity type, reporting
// per-id failures. Users cannot be bulk-deleted; deactivation goes through
// the admin user routes.
func (h *TransferHandler) BulkDelete(c echo.Context) error {
	var req bulkDeleteReq
	if err := c.Bind(&req); err != nil || req.Entity == "" || req.IDs == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Entity and ids array are required"})
	}
	if !model.ValidEntity(req.Entity) || req.Entity == "user" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid entity type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	var deleted, failed int
	var errs []string
	for _, id := range req.IDs {
		var err error
		switch req.Entity {
		case "lead":
			err = h.Leads.SoftDelete(ctx, id)
		case "contact":
			err = h.Contacts.SoftDelete(ctx, id)
		case "account":
			err = h.Accounts.SoftDelete(ctx, id)
		case "opportunity":
			err = h.Opportunities.SoftDelete(ctx, id)
		case "activity":
			err = h.Activities.SoftDelete(ctx, id)
		}
		if err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("ID %s: %v", id, err))
			continue
		}
		deleted++
	}
	audit(h.Audit, middleware.UserID(c), "bulk-delete", req.Entity, strconv.Itoa(deleted))
	return c.JSON(http.StatusOK, echo.Map{
		"deletedCount": deleted,
		"errorCount":   failed,
		"errors":       errs,
	})
}

type bulkUpdateReq struct {
	Entity  string `json:"entity"`
	Updates []struct {
		ID   string          `json:"id"`
		Data json.RawMessage `json:"data"`
	} `json:"updates"`
}

// BulkUpdate applies partial updates to a list of records of one entity
// type. Each update loads the row, merges the patch over it and writes it
// back, exactly like the single-record update routes.
func (h *TransferHandler) BulkUpdate(c echo.Context) error {
	var req bulkUpdateReq
	if err := c.Bind(&req); err != nil || req.Entity == "" || req.Updates == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Entity and updates array are required"})
	}
	if !model.ValidEntity(req.Entity) || req.Entity == "user" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid entity type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	var updated, failed int
	var errs []string
	for _, u := range req.Updates {
		if err := h.updateOne(ctx, req.Entity, u.ID, u.Data); err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("ID %s: %v", u.ID, err))
			continue
		}
		updated++
	}
	audit(h.Audit, middleware.UserID(c), "bulk-update", req.Entity, strconv.Itoa(updated))
	return c.JSON(http.StatusOK, echo.Map{
		"updatedCount": updated,
		"errorCount":   failed,
		"errors":       errs,
	})
}

func (h *TransferHandler) updateOne(ctx context.Context, entity, id string, patch json.RawMessage) error {
	switch entity {
	case "lead":
		m, err := h.Leads.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(patch, m); err != nil {
			return err
		}
		m.ID = id
		return h.Leads.Update(ctx, m)
	case "contact":
		m, err := h.Contacts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(patch, m); err != nil {
			return err
		}
		m.ID = id
		return h.Contacts.Update(ctx, m)
	case "account":
		m, err := h.Accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(patch, m); err != nil {
			return err
		}
		m.ID = id
		return h.Accounts.Update(ctx, m)
	case "opportunity":
		m, err := h.Opportunities.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(patch, m); err != nil {
			return err
		}
		m.ID = id
		if m.Probability < 0 || m.Probability > 100 {
			return fmt.Errorf("probability must be between 0 and 100")
		}
		return h.Opportunities.Update(ctx, m)
	case "activity":
		m, err := h.Activities.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(patch, m); err != nil {
			return err
		}
		m.ID = id
		return h.Activities.Update(ctx, m)
	}
	return fmt.Errorf("invalid entity type %q", entity)
}

func isAdmin(c echo.Context) bool {
	role, ok := c.Get(middleware.CtxRole).(model.Role)
	return ok && role == model.RoleAdmin
}
