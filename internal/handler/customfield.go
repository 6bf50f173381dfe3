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

// CustomFieldStore is the slice of the custom field repository the handlers
// need.
type CustomFieldStore interface {
	Create(ctx context.Context, f *model.CustomField) error
	ListByEntity(ctx context.Context, entity string) ([]*model.CustomField, error)
	GetByID(ctx context.Context, id string) (*model.CustomField, error)
	Update(ctx context.Context, f *model.CustomField) error
	Delete(ctx context.Context, id string) error
}

// CustomFieldHandler serves the /api/custom-fields routes. Field
// definitions describe admin-configured extra attributes per entity type;
// mutations are admin-gated by the router.
type CustomFieldHandler struct {
	Fields CustomFieldStore
	Audit  AuditSink
}

func NewCustomFieldHandler(fields CustomFieldStore, audit AuditSink) *CustomFieldHandler {
	return &CustomFieldHandler{Fields: fields, Audit: audit}
}

type customFieldReq struct {
	Entity       string   `json:"entity"`
	FieldName    string   `json:"fieldName"`
	FieldType    string   `json:"fieldType"`
	DisplayName  string   `json:"displayName"`
	Required     bool     `json:"required"`
	DefaultValue string   `json:"defaultValue"`
	Options      []string `json:"options"`
}

func (h *CustomFieldHandler) Create(c echo.Context) error {
	var req customFieldReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.Entity == "" || req.FieldName == "" || req.FieldType == "" || req.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Entity, fieldName, fieldType, and displayName are required"})
	}
	if !model.ValidEntity(req.Entity) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid entity type"})
	}
	fieldType, err := model.ParseFieldType(req.FieldType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid field type"})
	}
	if (fieldType == model.FieldSelect || fieldType == model.FieldMultiSelect) && len(req.Options) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Options are required for select and multiselect field types"})
	}

	f := &model.CustomField{
		Entity:       req.Entity,
		FieldName:    strings.TrimSpace(req.FieldName),
		FieldType:    fieldType,
		DisplayName:  req.DisplayName,
		Required:     req.Required,
		DefaultValue: req.DefaultValue,
		Options:      req.Options,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Fields.Create(ctx, f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create custom field"})
	}
	audit(h.Audit, middleware.UserID(c), "create", "custom_field", f.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Custom field created successfully",
		"customField": f,
	})
}

func (h *CustomFieldHandler) ListByEntity(c echo.Context) error {
	entity := c.Param("entity")
	if !model.ValidEntity(entity) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid entity type"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	fields, err := h.Fields.ListByEntity(ctx, entity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not list custom fields"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customFields": fields, "total": len(fields)})
}

func (h *CustomFieldHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	f, err := h.Fields.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Custom field not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load custom field"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customField": f})
}

func (h *CustomFieldHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	f, err := h.Fields.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Custom field not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load custom field"})
	}
	entity := f.Entity
	if err := c.Bind(f); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	// The URL picks the definition and the entity binding is immutable.
	f.ID = c.Param("id")
	f.Entity = entity
	if _, err := model.ParseFieldType(string(f.FieldType)); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid field type"})
	}
	if (f.FieldType == model.FieldSelect || f.FieldType == model.FieldMultiSelect) && len(f.Options) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Options are required for select and multiselect field types"})
	}
	if err := h.Fields.Update(ctx, f); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Custom field not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update custom field"})
	}
	audit(h.Audit, middleware.UserID(c), "update", "custom_field", f.ID)
	return c.JSON(http.StatusOK, echo.Map{"customField": f})
}

func (h *CustomFieldHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Fields.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Custom field not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete custom field"})
	}
	audit(h.Audit, middleware.UserID(c), "delete", "custom_field", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Custom field deleted successfully"})
}
