package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abetworks/crm-backend/internal/auth"
	"github.com/abetworks/crm-backend/internal/config"
	"github.com/abetworks/crm-backend/internal/model"
	"github.com/abetworks/crm-backend/internal/repository"
)

// fakeUserStore is an in-memory UserStore with the same error contract as
// repository.UserRepo.
type fakeUserStore struct {
	users map[string]*model.User // keyed by normalized email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash, firstName, lastName string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.users[email]; ok {
		return nil, repository.ErrEmailExists
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.users[email] = u
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func testCfg() config.Config {
	return config.Config{
		AccessSecret:  "handler-test-access",
		RefreshSecret: "handler-test-refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		BcryptCost:    4, // fast hashing for tests
	}
}

func postJSON(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

const registerBody = `{"email":"a@x.com","password":"secret123","firstName":"A","lastName":"B"}`

func TestRegisterSuccess(t *testing.T) {
	cfg := testCfg()
	h := NewAuthHandler(cfg, newFakeUserStore())

	rec, resp := postJSON(t, h.Register, registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully", resp["message"])

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, rec.Body.String(), "secret123")
	assert.NotContains(t, rec.Body.String(), "password")

	// Both tokens embed the registered identity under their own secret.
	ident, err := auth.Verify(cfg.AccessSecret, resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user["id"], ident.UserID)
	assert.Equal(t, "a@x.com", ident.Email)

	rident, err := auth.Verify(cfg.RefreshSecret, resp["refreshToken"].(string))
	require.NoError(t, err)
	assert.Equal(t, ident.UserID, rident.UserID)
}

func TestRegisterMissingFields(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	bodies := []string{
		`{}`,
		`{"email":"a@x.com"}`,
		`{"email":"a@x.com","password":"secret123"}`,
		`{"email":"a@x.com","password":"secret123","firstName":"A"}`,
		`{"password":"secret123","firstName":"A","lastName":"B"}`,
	}
	for _, body := range bodies {
		rec, resp := postJSON(t, h.Register, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
		assert.Equal(t, "All fields are required", resp["message"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())

	rec, _ := postJSON(t, h.Register, registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := postJSON(t, h.Register, registerBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists with this email", resp["message"])
}

func TestRegisterThenLoginRoundTrip(t *testing.T) {
	cfg := testCfg()
	h := NewAuthHandler(cfg, newFakeUserStore())

	// Mixed-case registration must not prevent lower-case login.
	rec, created := postJSON(t, h.Register, `{"email":"A@X.com","password":"secret123","firstName":"A","lastName":"B"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	createdUser := created["user"].(map[string]any)

	rec, resp := postJSON(t, h.Login, `{"email":"a@x.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", resp["message"])

	ident, err := auth.Verify(cfg.AccessSecret, resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, createdUser["id"], ident.UserID)
	assert.Equal(t, "a@x.com", ident.Email)
}

func TestLoginRejectionShapeIsUniform(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	_, _ = postJSON(t, h.Register, registerBody)

	recWrongPw, wrongPw := postJSON(t, h.Login, `{"email":"a@x.com","password":"nope"}`)
	recNoUser, noUser := postJSON(t, h.Login, `{"email":"ghost@x.com","password":"secret123"}`)

	assert.Equal(t, http.StatusBadRequest, recWrongPw.Code)
	assert.Equal(t, http.StatusBadRequest, recNoUser.Code)
	// Identical shape and message: the endpoint must not reveal whether
	// the email exists.
	assert.Equal(t, wrongPw, noUser)
	assert.Equal(t, "Invalid email or password", wrongPw["message"])
}

func TestLoginDeactivatedUser(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(testCfg(), store)
	_, _ = postJSON(t, h.Register, registerBody)
	store.users["a@x.com"].IsActive = false

	rec, resp := postJSON(t, h.Login, `{"email":"a@x.com","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email or password", resp["message"])
}

func TestLoginMissingFields(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	for _, body := range []string{`{}`, `{"email":"a@x.com"}`, `{"password":"x"}`} {
		rec, resp := postJSON(t, h.Login, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and password are required", resp["message"])
	}
}

func TestRefreshSuccess(t *testing.T) {
	cfg := testCfg()
	h := NewAuthHandler(cfg, newFakeUserStore())
	_, created := postJSON(t, h.Register, registerBody)

	rec, resp := postJSON(t, h.Refresh, `{"refreshToken":"`+created["refreshToken"].(string)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	ident, err := auth.Verify(cfg.AccessSecret, resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, created["user"].(map[string]any)["id"], ident.UserID)
	require.NotEmpty(t, resp["refreshToken"])
}

func TestRefreshRejections(t *testing.T) {
	cfg := testCfg()
	store := newFakeUserStore()
	h := NewAuthHandler(cfg, store)
	_, created := postJSON(t, h.Register, registerBody)
	userID := created["user"].(map[string]any)["id"].(string)

	expired, err := auth.NewRefreshToken(cfg.RefreshSecret, auth.Identity{UserID: userID, Email: "a@x.com"}, -time.Minute)
	require.NoError(t, err)

	tampered := []byte(created["refreshToken"].(string))
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	unknownUser, err := auth.NewRefreshToken(cfg.RefreshSecret, auth.Identity{UserID: uuid.NewString(), Email: "ghost@x.com"}, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"missing token", `{}`, "Refresh token is required"},
		{"expired token", `{"refreshToken":"` + expired.Value + `"}`, "Invalid refresh token"},
		{"tampered token", `{"refreshToken":"` + string(tampered) + `"}`, "Invalid refresh token"},
		{"access token used as refresh", `{"refreshToken":"` + created["token"].(string) + `"}`, "Invalid refresh token"},
		{"unknown subject", `{"refreshToken":"` + unknownUser.Value + `"}`, "Invalid refresh token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := postJSON(t, h.Refresh, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.msg, resp["message"])
		})
	}
}

func TestRefreshDeactivatedUser(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(testCfg(), store)
	_, created := postJSON(t, h.Register, registerBody)
	store.users["a@x.com"].IsActive = false

	rec, resp := postJSON(t, h.Refresh, `{"refreshToken":"`+created["refreshToken"].(string)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid refresh token", resp["message"])
}
