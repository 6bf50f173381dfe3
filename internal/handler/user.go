package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/model"
	"github.com/abetworks/crm-backend/internal/repository"
)

// UserHandler serves the admin-only /api/users routes: listing users,
// changing roles and deactivating accounts. Deactivation is the soft
// delete for users; rows are never removed.
type UserHandler struct {
	Users *repository.UserRepo
	Audit AuditSink
}

func NewUserHandler(users *repository.UserRepo, audit AuditSink) *UserHandler {
	return &UserHandler{Users: users, Audit: audit}
}

func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	users, total, err := h.Users.List(ctx, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not list users"})
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":      out,
		"pagination": pagination(repository.ListOpts{Page: page, Limit: limit}, total),
	})
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u.Public()})
}

type userPatchReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

func (h *UserHandler) Update(c echo.Context) error {
	var req userPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	patch := repository.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid role"})
		}
		patch.Role = &role
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	u, err := h.Users.Update(ctx, c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update user"})
	}
	audit(h.Audit, middleware.UserID(c), "update", "user", u.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": u.Public()})
}

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	Log *repository.AuditRepo
}

func NewAuditHandler(log *repository.AuditRepo) *AuditHandler {
	return &AuditHandler{Log: log}
}

func (h *AuditHandler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	entries, err := h.Log.Recent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load audit log"})
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries})
}
