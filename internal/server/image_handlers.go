package server

import (
	"strings"

	"skatespot/internal/models"

	"github.com/gofiber/fiber/v2"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// IssueUploadURL handles POST /api/spots/image-upload-url
//
// Returns a short-lived URL the client PUTs the image bytes to, plus the
// public URL to store on the spot afterwards. The server never sees the
// bytes.
func (s *Server) IssueUploadURL(c *fiber.Ctx) error {
	if s.uploads == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUpstreamError("Image uploads are not configured", nil))
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Filename == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Filename is required"))
	}
	if !allowedImageTypes[strings.ToLower(req.ContentType)] {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unsupported content type"))
	}

	ticket, err := s.uploads.IssueUploadURL(c.Context(), req.Filename, req.ContentType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadGateway, err)
	}

	return c.JSON(ticket)
}
