package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abetworks/crm-backend/internal/auth"
	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/model"
)

type fakeDirectory struct {
	*fakeUserStore
}

func (s *fakeDirectory) List(_ context.Context, page, limit int) ([]*model.User, int, error) {
	if page > 1 {
		return nil, len(s.users), nil
	}
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func transferRequest(method, target, body string, role model.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, "actor-1")
	c.Set(middleware.CtxRole, role)
	return c, rec
}

func TestImportLeadsSetsOwnerAndReportsErrors(t *testing.T) {
	store := newFakeLeadStore()
	h := &TransferHandler{Leads: store, Audit: &captureSink{}}

	body := `{"entity":"lead","data":[
		{"firstName":"Ada","lastName":"Lovelace","ownerId":"spoofed"},
		{"firstName":"NoLastName"}
	]}`
	c, rec := transferRequest(http.MethodPost, "/api/data/import", body, model.RoleUser)
	require.NoError(t, h.Import(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ImportedCount int      `json:"importedCount"`
		ErrorCount    int      `json:"errorCount"`
		Errors        []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ImportedCount)
	assert.Equal(t, 1, resp.ErrorCount)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "Record 2")

	// Imported records belong to the importer regardless of the payload.
	assert.Equal(t, "actor-1", store.leads["generated"].OwnerID)
}

func TestImportUserRequiresAdmin(t *testing.T) {
	h := &TransferHandler{Users: &fakeDirectory{newFakeUserStore()}}

	body := `{"entity":"user","data":[{"email":"a@b.c","firstName":"A","lastName":"B"}]}`
	c, rec := transferRequest(http.MethodPost, "/api/data/import", body, model.RoleUser)
	require.NoError(t, h.Import(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Only admin users can import user data", resp["message"])
}

func TestImportUserDefaultsPassword(t *testing.T) {
	users := &fakeDirectory{newFakeUserStore()}
	h := &TransferHandler{Users: users, BcryptCost: 4, Audit: &captureSink{}}

	body := `{"entity":"user","data":[{"email":"new@example.com","firstName":"New","lastName":"Hire"}]}`
	c, rec := transferRequest(http.MethodPost, "/api/data/import", body, model.RoleAdmin)
	require.NoError(t, h.Import(c))
	require.Equal(t, http.StatusOK, rec.Code)

	u := users.users["new@example.com"]
	require.NotNil(t, u)
	assert.True(t, auth.VerifyPassword(u.PasswordHash, importedUserPassword))
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestExportCSVHonorsFieldFilter(t *testing.T) {
	store := newFakeLeadStore(
		&model.Lead{ID: "l1", FirstName: "Ada", LastName: "Lovelace", Status: "new"},
	)
	h := &TransferHandler{Leads: store}

	c, rec := transferRequest(http.MethodGet, "/api/data/export/lead?format=csv&fields=firstName,lastName", "", model.RoleUser)
	c.SetParamNames("entity")
	c.SetParamValues("lead")
	require.NoError(t, h.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "lead.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "firstName,lastName", lines[0])
	assert.Equal(t, "Ada,Lovelace", lines[1])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	h := &TransferHandler{Leads: newFakeLeadStore()}

	c, rec := transferRequest(http.MethodGet, "/api/data/export/lead?format=xml", "", model.RoleUser)
	c.SetParamNames("entity")
	c.SetParamValues("lead")
	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid format. Valid formats are: json, csv", resp["message"])
}

func TestExportUserRequiresAdmin(t *testing.T) {
	h := &TransferHandler{Users: &fakeDirectory{newFakeUserStore()}}

	c, rec := transferRequest(http.MethodGet, "/api/data/export/user", "", model.RoleSales)
	c.SetParamNames("entity")
	c.SetParamValues("user")
	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBulkUpdateKeepsAddressedID(t *testing.T) {
	store := newFakeLeadStore(
		&model.Lead{ID: "addressed", FirstName: "Old", LastName: "Name", Status: "new"},
		&model.Lead{ID: "victim", FirstName: "Innocent", LastName: "Bystander", Status: "new"},
	)
	h := &TransferHandler{Leads: store, Audit: &captureSink{}}

	body := `{"entity":"lead","updates":[{"id":"addressed","data":{"firstName":"New","id":"victim"}}]}`
	c, rec := transferRequest(http.MethodPut, "/api/data/bulk-update", body, model.RoleUser)
	require.NoError(t, h.BulkUpdate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, store.lastUpdate)
	assert.Equal(t, "addressed", store.lastUpdate.ID)
	assert.Equal(t, "New", store.lastUpdate.FirstName)
	assert.Equal(t, "Innocent", store.leads["victim"].FirstName)
}

func TestBulkDeleteCountsFailures(t *testing.T) {
	store := newFakeLeadStore(&model.Lead{ID: "l1", FirstName: "A", LastName: "B"})
	h := &TransferHandler{Leads: store, Audit: &captureSink{}}

	body := `{"entity":"lead","ids":["l1","ghost"]}`
	c, rec := transferRequest(http.MethodDelete, "/api/data/bulk-delete", body, model.RoleUser)
	require.NoError(t, h.BulkDelete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DeletedCount int      `json:"deletedCount"`
		ErrorCount   int      `json:"errorCount"`
		Errors       []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.DeletedCount)
	assert.Equal(t, 1, resp.ErrorCount)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "ghost")
}

func TestBulkDeleteRejectsUserEntity(t *testing.T) {
	h := &TransferHandler{}

	body := `{"entity":"user","ids":["u1"]}`
	c, rec := transferRequest(http.MethodDelete, "/api/data/bulk-delete", body, model.RoleAdmin)
	require.NoError(t, h.BulkDelete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
