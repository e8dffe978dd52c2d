package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/middleware"
)

// inlineTypes are rendered by the browser; anything else is served as a
// download.
var inlineTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// StorageHandler serves objects of public buckets
// (GET /storage/v1/object/public/:bucket/*).
type StorageHandler struct {
	objects ObjectReader
	public  map[string]bool
}

func NewStorageHandler(objects ObjectReader, publicBuckets ...string) *StorageHandler {
	public := make(map[string]bool, len(publicBuckets))
	for _, b := range publicBuckets {
		public[b] = true
	}
	return &StorageHandler{objects: objects, public: public}
}

func (h *StorageHandler) PublicObject(c echo.Context) error {
	ctx := c.Request().Context()
	bucket, path := c.Param("bucket"), c.Param("*")
	if !h.public[bucket] || path == "" {
		return c.String(http.StatusNotFound, "Object not found")
	}

	obj, content, err := h.objects.Open(ctx, bucket, path)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return c.String(http.StatusNotFound, "Object not found")
		}
		middleware.FromContext(ctx).Error("Failed to open object", "bucket", bucket, "path", path, "error", err)
		return c.String(http.StatusInternalServerError, "Could not retrieve object")
	}
	defer content.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderXContentTypeOptions, "nosniff")
	if !inlineTypes[obj.MIMEType] {
		header.Set(echo.HeaderContentDisposition, "attachment")
	}
	if obj.CacheControl != "" {
		header.Set("Cache-Control", "max-age="+obj.CacheControl)
	}
	return c.Stream(http.StatusOK, obj.MIMEType, content)
}
