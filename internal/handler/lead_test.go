package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/model"
	"github.com/abetworks/crm-backend/internal/queue"
	"github.com/abetworks/crm-backend/internal/repository"
)

type fakeLeadStore struct {
	leads      map[string]*model.Lead
	lastUpdate *model.Lead
}

func newFakeLeadStore(leads ...*model.Lead) *fakeLeadStore {
	s := &fakeLeadStore{leads: map[string]*model.Lead{}}
	for _, l := range leads {
		s.leads[l.ID] = l
	}
	return s
}

func (s *fakeLeadStore) Create(_ context.Context, l *model.Lead) error {
	l.ID = "generated"
	s.leads[l.ID] = l
	return nil
}

func (s *fakeLeadStore) GetByID(_ context.Context, id string) (*model.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeLeadStore) List(_ context.Context, _ repository.ListOpts) ([]*model.Lead, int, error) {
	out := make([]*model.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (s *fakeLeadStore) Update(_ context.Context, l *model.Lead) error {
	if _, ok := s.leads[l.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *l
	s.lastUpdate = &cp
	s.leads[l.ID] = &cp
	return nil
}

func (s *fakeLeadStore) SoftDelete(_ context.Context, id string) error {
	if _, ok := s.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *fakeLeadStore) Convert(_ context.Context, lead *model.Lead, contact *model.Contact, account *model.Account) error {
	lead.Status = "converted"
	contact.ID = "converted-contact"
	lead.ContactID = contact.ID
	if account != nil {
		account.ID = "converted-account"
		lead.AccountID = account.ID
	}
	return nil
}

// captureSink records published audit events; audit() publishes from a
// goroutine so reads go through events() under the lock.
type captureSink struct {
	mu   sync.Mutex
	seen []queue.AuditEvent
}

func (s *captureSink) Publish(_ context.Context, ev queue.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, ev)
	return nil
}

func (s *captureSink) events() []queue.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]queue.AuditEvent, len(s.seen))
	copy(out, s.seen)
	return out
}

func leadRequest(method, body, id string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	c.Set(middleware.CtxUserID, "actor-1")
	return c, rec
}

func TestLeadUpdateIgnoresBodyID(t *testing.T) {
	store := newFakeLeadStore(
		&model.Lead{ID: "addressed", FirstName: "Old", LastName: "Name", Status: "new"},
		&model.Lead{ID: "victim", FirstName: "Innocent", LastName: "Bystander", Status: "new"},
	)
	sink := &captureSink{}
	h := NewLeadHandler(store, sink)

	// A body smuggling a different "id" must not retarget the write away
	// from the row the URL addresses.
	c, rec := leadRequest(http.MethodPut, `{"firstName":"New","id":"victim"}`, "addressed")
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, store.lastUpdate)
	assert.Equal(t, "addressed", store.lastUpdate.ID)
	assert.Equal(t, "New", store.lastUpdate.FirstName)
	assert.Equal(t, "Name", store.lastUpdate.LastName, "absent fields keep their values")
	assert.Equal(t, "Innocent", store.leads["victim"].FirstName, "other row untouched")

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "addressed", resp["lead"].(map[string]any)["id"])

	assert.Eventually(t, func() bool {
		evs := sink.events()
		return len(evs) == 1 && evs[0].EntityID == "addressed" && evs[0].Action == "update"
	}, time.Second, 10*time.Millisecond, "audit event must carry the addressed id")
}

func TestLeadUpdateNotFound(t *testing.T) {
	h := NewLeadHandler(newFakeLeadStore(), &captureSink{})

	c, rec := leadRequest(http.MethodPut, `{"firstName":"X"}`, "ghost")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Lead not found", resp["message"])
}

func TestLeadCreateSetsOwnerFromToken(t *testing.T) {
	store := newFakeLeadStore()
	h := NewLeadHandler(store, &captureSink{})

	// ownerId in the body is overridden by the authenticated identity.
	c, rec := leadRequest(http.MethodPost, `{"firstName":"A","lastName":"B","ownerId":"spoofed"}`, "")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "actor-1", store.leads["generated"].OwnerID)
}

func TestLeadConvertAlreadyConverted(t *testing.T) {
	store := newFakeLeadStore(&model.Lead{ID: "l1", FirstName: "A", LastName: "B", Status: "converted"})
	h := NewLeadHandler(store, &captureSink{})

	c, rec := leadRequest(http.MethodPost, `{}`, "l1")
	require.NoError(t, h.Convert(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Lead is already converted", resp["message"])
}
