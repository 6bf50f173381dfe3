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

// ActivityStore is the slice of the activity repository the handlers need.
type ActivityStore interface {
	Create(ctx context.Context, m *model.Activity) error
	GetByID(ctx context.Context, id string) (*model.Activity, error)
	List(ctx context.Context, opts repository.ListOpts) ([]*model.Activity, int, error)
	Update(ctx context.Context, m *model.Activity) error
	SoftDelete(ctx context.Context, id string) error
}

// ActivityHandler serves the /api/activities routes.
type ActivityHandler struct {
	Activities ActivityStore
	Audit      AuditSink
}

func NewActivityHandler(activities ActivityStore, audit AuditSink) *ActivityHandler {
	return &ActivityHandler{Activities: activities, Audit: audit}
}

func (h *ActivityHandler) Create(c echo.Context) error {
	var m model.Activity
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(m.Subject) == "" || strings.TrimSpace(m.Type) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Subject and type are required"})
	}
	m.OwnerID = middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Activities.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create activity"})
	}
	audit(h.Audit, m.OwnerID, "create", "activity", m.ID)
	return c.JSON(http.StatusCreated, echo.Map{"activity": m})
}

func (h *ActivityHandler) List(c echo.Context) error {
	opts := listOpts(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	activities, total, err := h.Activities.List(ctx, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not list activities"})
	}
	return c.JSON(http.StatusOK, echo.Map{"activities": activities, "pagination": pagination(opts, total)})
}

func (h *ActivityHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Activities.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Activity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load activity"})
	}
	return c.JSON(http.StatusOK, echo.Map{"activity": m})
}

func (h *ActivityHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Activities.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Activity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load activity"})
	}
	if err := c.Bind(m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	// The URL decides which row is updated, not an "id" in the body.
	m.ID = c.Param("id")
	if err := h.Activities.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Activity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update activity"})
	}
	audit(h.Audit, middleware.UserID(c), "update", "activity", m.ID)
	return c.JSON(http.StatusOK, echo.Map{"activity": m})
}

func (h *ActivityHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Activities.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Activity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete activity"})
	}
	audit(h.Audit, middleware.UserID(c), "delete", "activity", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Activity deleted successfully"})
}
