package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/cache"
	"github.com/abetworks/crm-backend/internal/middleware"
)

// FileStore is the slice of the object store the file routes need.
type FileStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Presign(ctx context.Context, name string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, name string) error
	Stat(ctx context.Context, name string) error
}

const (
	maxUploadBytes = 10 << 20 // 10 MiB
	presignExpiry  = 15 * time.Minute
	urlCacheTTL    = 10 * time.Minute // below presignExpiry so cached URLs stay usable
)

// FileHandler serves the /api/files routes backed by the object store.
// Presigned URLs are memoized in the injected cache.
type FileHandler struct {
	Store FileStore
	URLs  *cache.Cache
	Audit AuditSink
}

func NewFileHandler(store FileStore, urls *cache.Cache, audit AuditSink) *FileHandler {
	return &FileHandler{Store: store, URLs: urls, Audit: audit}
}

// Upload accepts a single multipart file and stores it under a generated
// name, returning that name for later retrieval.
func (h *FileHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File is required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File too large"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not read file"})
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()
	if err := h.Store.Put(ctx, name, src, fh.Size, contentType); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not store file"})
	}
	audit(h.Audit, middleware.UserID(c), "create", "file", name)
	return c.JSON(http.StatusCreated, echo.Map{
		"fileName":     name,
		"originalName": fh.Filename,
		"size":         fh.Size,
	})
}

// URL returns a presigned download link. Links are cached for slightly
// less than their validity so repeated requests do not hit the store.
func (h *FileHandler) URL(c echo.Context) error {
	name := c.Param("fileName")

	if u, ok := h.URLs.Get("fileurl:" + name); ok {
		return c.JSON(http.StatusOK, echo.Map{"url": u})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Store.Stat(ctx, name); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "File not found"})
	}
	u, err := h.Store.Presign(ctx, name, presignExpiry)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not generate URL"})
	}
	h.URLs.Set("fileurl:"+name, u, urlCacheTTL)
	return c.JSON(http.StatusOK, echo.Map{"url": u})
}

// Delete removes the object and drops any cached URL for it.
func (h *FileHandler) Delete(c echo.Context) error {
	name := c.Param("fileName")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Store.Stat(ctx, name); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "File not found"})
	}
	if err := h.Store.Remove(ctx, name); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete file"})
	}
	h.URLs.Delete("fileurl:" + name)
	audit(h.Audit, middleware.UserID(c), "delete", "file", name)
	return c.JSON(http.StatusOK, echo.Map{"message": "File deleted successfully"})
}
