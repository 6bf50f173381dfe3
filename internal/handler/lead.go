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

// LeadStore is the slice of the lead repository the handlers need.
type LeadStore interface {
	Create(ctx context.Context, l *model.Lead) error
	GetByID(ctx context.Context, id string) (*model.Lead, error)
	List(ctx context.Context, opts repository.ListOpts) ([]*model.Lead, int, error)
	Update(ctx context.Context, l *model.Lead) error
	SoftDelete(ctx context.Context, id string) error
	Convert(ctx context.Context, lead *model.Lead, contact *model.Contact, account *model.Account) error
}

// LeadHandler serves the /api/leads routes.
type LeadHandler struct {
	Leads LeadStore
	Audit AuditSink
}

func NewLeadHandler(leads LeadStore, audit AuditSink) *LeadHandler {
	return &LeadHandler{Leads: leads, Audit: audit}
}

func (h *LeadHandler) Create(c echo.Context) error {
	var l model.Lead
	if err := c.Bind(&l); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(l.FirstName) == "" || strings.TrimSpace(l.LastName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "First name and last name are required"})
	}
	l.OwnerID = middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Leads.Create(ctx, &l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create lead"})
	}
	audit(h.Audit, l.OwnerID, "create", "lead", l.ID)
	return c.JSON(http.StatusCreated, echo.Map{"lead": l})
}

func (h *LeadHandler) List(c echo.Context) error {
	opts := listOpts(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	leads, total, err := h.Leads.List(ctx, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not list leads"})
	}
	return c.JSON(http.StatusOK, echo.Map{"leads": leads, "pagination": pagination(opts, total)})
}

func (h *LeadHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	l, err := h.Leads.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Lead not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load lead"})
	}
	return c.JSON(http.StatusOK, echo.Map{"lead": l})
}

func (h *LeadHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	l, err := h.Leads.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Lead not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load lead"})
	}
	// Bind over the loaded record: absent JSON fields keep their values, so
	// clients send only what changed. The URL decides which row is updated;
	// an "id" in the body must not retarget the write.
	if err := c.Bind(l); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	l.ID = c.Param("id")
	if err := h.Leads.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Lead not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update lead"})
	}
	audit(h.Audit, middleware.UserID(c), "update", "lead", l.ID)
	return c.JSON(http.StatusOK, echo.Map{"lead": l})
}

func (h *LeadHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Leads.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Lead not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete lead"})
	}
	audit(h.Audit, middleware.UserID(c), "delete", "lead", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Lead deleted successfully"})
}

type convertReq struct {
	CreateAccount bool `json:"createAccount"`
}

// Convert promotes a lead into a contact, optionally creating an account
// from the lead's company, inside one transaction.
func (h *LeadHandler) Convert(c echo.Context) error {
	var req convertReq
	_ = c.Bind(&req) // empty body means contact-only conversion

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	l, err := h.Leads.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Lead not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load lead"})
	}
	if l.Status == "converted" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Lead is already converted"})
	}

	contact := &model.Contact{
		FirstName:  l.FirstName,
		LastName:   l.LastName,
		Email:      l.Email,
		Phone:      l.Phone,
		JobTitle:   l.JobTitle,
		OwnerID:    l.OwnerID,
		AssignedTo: l.AssignedTo,
		LeadSource: l.LeadSource,
		Address:    l.Address,
		City:       l.City,
		State:      l.State,
		ZipCode:    l.ZipCode,
		Country:    l.Country,
	}
	var account *model.Account
	if req.CreateAccount && strings.TrimSpace(l.Company) != "" {
		account = &model.Account{
			Name:    l.Company,
			Phone:   l.Phone,
			OwnerID: l.OwnerID,
			Address: l.Address,
			City:    l.City,
			State:   l.State,
			ZipCode: l.ZipCode,
			Country: l.Country,
		}
	}

	if err := h.Leads.Convert(ctx, l, contact, account); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Lead not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not convert lead"})
	}
	audit(h.Audit, middleware.UserID(c), "convert", "lead", l.ID)

	resp := echo.Map{"lead": l, "contactId": l.ContactID}
	if account != nil {
		resp["accountId"] = l.AccountID
	}
	return c.JSON(http.StatusOK, resp)
}
