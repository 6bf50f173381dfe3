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

// OpportunityStore is the slice of the opportunity repository the handlers
// need.
type OpportunityStore interface {
	Create(ctx context.Context, m *model.Opportunity) error
	GetByID(ctx context.Context, id string) (*model.Opportunity, error)
	List(ctx context.Context, opts repository.ListOpts) ([]*model.Opportunity, int, error)
	Update(ctx context.Context, m *model.Opportunity) error
	SoftDelete(ctx context.Context, id string) error
}

// OpportunityHandler serves the /api/opportunities routes. The ?status=
// query parameter filters on the pipeline stage.
type OpportunityHandler struct {
	Opportunities OpportunityStore
	Audit         AuditSink
}

func NewOpportunityHandler(opps OpportunityStore, audit AuditSink) *OpportunityHandler {
	return &OpportunityHandler{Opportunities: opps, Audit: audit}
}

func (h *OpportunityHandler) Create(c echo.Context) error {
	var m model.Opportunity
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(m.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name is required"})
	}
	if m.Probability < 0 || m.Probability > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Probability must be between 0 and 100"})
	}
	m.OwnerID = middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Opportunities.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create opportunity"})
	}
	audit(h.Audit, m.OwnerID, "create", "opportunity", m.ID)
	return c.JSON(http.StatusCreated, echo.Map{"opportunity": m})
}

func (h *OpportunityHandler) List(c echo.Context) error {
	opts := listOpts(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	opps, total, err := h.Opportunities.List(ctx, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not list opportunities"})
	}
	return c.JSON(http.StatusOK, echo.Map{"opportunities": opps, "pagination": pagination(opts, total)})
}

func (h *OpportunityHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Opportunities.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Opportunity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load opportunity"})
	}
	return c.JSON(http.StatusOK, echo.Map{"opportunity": m})
}

func (h *OpportunityHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Opportunities.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Opportunity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load opportunity"})
	}
	if err := c.Bind(m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	// The URL decides which row is updated, not an "id" in the body.
	m.ID = c.Param("id")
	if m.Probability < 0 || m.Probability > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Probability must be between 0 and 100"})
	}
	if err := h.Opportunities.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Opportunity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update opportunity"})
	}
	audit(h.Audit, middleware.UserID(c), "update", "opportunity", m.ID)
	return c.JSON(http.StatusOK, echo.Map{"opportunity": m})
}

func (h *OpportunityHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Opportunities.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Opportunity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete opportunity"})
	}
	audit(h.Audit, middleware.UserID(c), "delete", "opportunity", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Opportunity deleted successfully"})
}
