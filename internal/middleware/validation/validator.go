package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DocTypes accepted by the upload endpoint.
var DocTypes = map[string]bool{
	"proposal":  true,
	"call":      true,
	"questions": true,
}

type Config struct {
	MaxUploadBytes int
	Logger         *zap.Logger
}

// Middleware rejects malformed requests before they reach the handlers:
// wrong content type for the route, oversized uploads, unknown doc types.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 50 * 1024 * 1024
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		method := c.Method()

		if method != fiber.MethodPost && method != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get("Content-Type")

		if strings.HasSuffix(path, "/api/v1/documents") {
			if !strings.Contains(contentType, "multipart/form-data") {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Document upload must be multipart/form-data",
				})
			}

			if len(c.Body()) > cfg.MaxUploadBytes {
				cfg.Logger.Warn("Oversized upload rejected",
					zap.String("ip", c.IP()),
					zap.Int("size", len(c.Body())),
				)
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "Uploaded file exceeds maximum size",
				})
			}

			docType := c.FormValue("doctype")
			if docType != "" && !DocTypes[docType] {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "doctype must be one of: proposal, call, questions",
				})
			}

			return c.Next()
		}

		if contentType != "" &&
			!strings.Contains(contentType, "application/json") &&
			!strings.Contains(contentType, "multipart/form-data") &&
			!strings.Contains(contentType, "text/plain") {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		return c.Next()
	}
}

// SanitizeFilename strips path components and control bytes from a
// client-supplied filename. Used by both the upload and download paths.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}
