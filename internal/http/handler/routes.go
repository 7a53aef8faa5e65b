package handler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/repository"
	"docvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin: decode, delegate to the service, map errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, authn fiber.Handler) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	offerings := app.Group("/offerings", authn)
	offerings.Get("/:id/documents", ListDocuments(docSvc))
	offerings.Post("/:id/documents/presign", PresignUpload(docSvc))
	offerings.Post("/:id/documents/confirm", ConfirmUpload(docSvc))

	documents := app.Group("/documents", authn)
	documents.Patch("/:id", UpdateDocument(docSvc))
	documents.Delete("/:id", DeleteDocument(docSvc))
	documents.Post("/:id/view-url", ViewURL(docSvc))
	documents.Post("/:id/download-url", DownloadURL(docSvc))
	documents.Get("/:id/download", DownloadDocument(docSvc))
	documents.Post("/:id/migrate", MigrateDocument(docSvc))
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns an offering's documents, optionally filtered by
// category, visibility and a free-text query.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := repository.DocumentFilter{
			Category:   c.Query("category"),
			Visibility: c.Query("visibility"),
			Query:      c.Query("q"),
		}

		docs, err := svc.List(c.UserContext(), middleware.UserID(c), c.Params("id"), filter)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"documents": docs})
	}
}

// PresignUpload validates the declared upload and issues a direct write URL.
func PresignUpload(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.PresignRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}
		if req.Filename == "" || req.MimeType == "" || req.Size <= 0 {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "filename, mimeType and size are required")
		}

		res, err := svc.Presign(c.UserContext(), middleware.UserID(c), c.Params("id"), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ConfirmUpload commits a completed client transfer as a document.
func ConfirmUpload(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.ConfirmRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}
		if req.Path == "" || req.Filename == "" || req.MimeType == "" || req.Size <= 0 {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "path, filename, mimeType and size are required")
		}

		doc, err := svc.Confirm(c.UserContext(), middleware.UserID(c), c.Params("id"), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"document": doc})
	}
}

// UpdateDocument patches title, category and visibility.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}
		if req.Title == nil && req.Category == nil && req.Visibility == nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "no fields to update")
		}

		doc, err := svc.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"document": doc})
	}
}

// DeleteDocument removes a document. Idempotent: deleting an already-absent
// document still returns 204.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ViewURL issues a time-limited signed link for inline viewing.
func ViewURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.ViewURL(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DownloadURL issues a time-limited signed link for download.
func DownloadURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.DownloadURL(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DownloadDocument proxies the raw bytes through the server.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Download(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, res.MimeType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Filename))
		return c.SendStream(res.Body, int(res.Size))
	}
}

// MigrateDocument relocates a legacy-stored blob to the canonical key and
// rewrites storage_key.
func MigrateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Migrate(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"document": doc})
	}
}
