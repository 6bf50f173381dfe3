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

// AccountStore is the slice of the account repository the handlers need.
type AccountStore interface {
	Create(ctx context.Context, m *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	List(ctx context.Context, opts repository.ListOpts) ([]*model.Account, int, error)
	Update(ctx context.Context, m *model.Account) error
	SoftDelete(ctx context.Context, id string) error
}

// AccountHandler serves the /api/accounts routes.
type AccountHandler struct {
	Accounts AccountStore
	Audit    AuditSink
}

func NewAccountHandler(accounts AccountStore, audit AuditSink) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Audit: audit}
}

func (h *AccountHandler) Create(c echo.Context) error {
	var m model.Account
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(m.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name is required"})
	}
	m.OwnerID = middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Accounts.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account"})
	}
	audit(h.Audit, m.OwnerID, "create", "account", m.ID)
	return c.JSON(http.StatusCreated, echo.Map{"account": m})
}

func (h *AccountHandler) List(c echo.Context) error {
	opts := listOpts(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	accounts, total, err := h.Accounts.List(ctx, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not list accounts"})
	}
	return c.JSON(http.StatusOK, echo.Map{"accounts": accounts, "pagination": pagination(opts, total)})
}

func (h *AccountHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Accounts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load account"})
	}
	return c.JSON(http.StatusOK, echo.Map{"account": m})
}

func (h *AccountHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Accounts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load account"})
	}
	if err := c.Bind(m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	// The URL decides which row is updated, not an "id" in the body.
	m.ID = c.Param("id")
	if err := h.Accounts.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update account"})
	}
	audit(h.Audit, middleware.UserID(c), "update", "account", m.ID)
	return c.JSON(http.StatusOK, echo.Map{"account": m})
}

func (h *AccountHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Accounts.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete account"})
	}
	audit(h.Audit, middleware.UserID(c), "delete", "account", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted successfully"})
}
