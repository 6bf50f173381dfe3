package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/model"
	"github.com/abetworks/crm-backend/internal/repository"
)

// ContactStore is the slice of the contact repository the handlers need.
type ContactStore interface {
	Create(ctx context.Context, m *model.Contact) error
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, opts repository.ListOpts) ([]*model.Contact, int, error)
	Update(ctx context.Context, m *model.Contact) error
	SoftDelete(ctx context.Context, id string) error
}

// ContactHandler serves the /api/contacts routes.
type ContactHandler struct {
	Contacts ContactStore
	Audit    AuditSink
}

func NewContactHandler(contacts ContactStore, audit AuditSink) *ContactHandler {
	return &ContactHandler{Contacts: contacts, Audit: audit}
}

func (h *ContactHandler) Create(c echo.Context) error {
	var m model.Contact
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(m.FirstName) == "" || strings.TrimSpace(m.LastName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "First name and last name are required"})
	}
	m.OwnerID = middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Contacts.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create contact"})
	}
	audit(h.Audit, m.OwnerID, "create", "contact", m.ID)
	return c.JSON(http.StatusCreated, echo.Map{"contact": m})
}

func (h *ContactHandler) List(c echo.Context) error {
	opts := listOpts(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	contacts, total, err := h.Contacts.List(ctx, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not list contacts"})
	}
	return c.JSON(http.StatusOK, echo.Map{"contacts": contacts, "pagination": pagination(opts, total)})
}

func (h *ContactHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Contacts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load contact"})
	}
	return c.JSON(http.StatusOK, echo.Map{"contact": m})
}

func (h *ContactHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Contacts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load contact"})
	}
	if err := c.Bind(m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	// The URL decides which row is updated, not an "id" in the body.
	m.ID = c.Param("id")
	if err := h.Contacts.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update contact"})
	}
	audit(h.Audit, middleware.UserID(c), "update", "contact", m.ID)
	return c.JSON(http.StatusOK, echo.Map{"contact": m})
}

func (h *ContactHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Contacts.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete contact"})
	}
	audit(h.Audit, middleware.UserID(c), "delete", "contact", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Contact deleted successfully"})
}
