package server

import (
	"skatespot/internal/models"
	"skatespot/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateComment handles POST /api/spots/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateCommentContent(req.Content); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	// The spot must exist before we attach a comment to it.
	if _, err := s.spotRepo.GetByID(ctx, spotID, uuid.Nil); err != nil {
		return respondRepoError(c, err)
	}

	comment := &models.Comment{
		Content: req.Content,
		SpotID:  spotID,
		UserID:  userID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/spots/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 50)

	if _, err := s.spotRepo.GetByID(ctx, spotID, uuid.Nil); err != nil {
		return respondRepoError(c, err)
	}

	comments, err := s.commentRepo.ListBySpot(ctx, spotID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(comments)
}

// UpdateComment handles PUT /api/spots/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseUUID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateCommentContent(req.Content); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if comment.SpotID != spotID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment", commentID))
	}
	if comment.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only edit your own comments"))
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/spots/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseUUID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if comment.SpotID != spotID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment", commentID))
	}
	if comment.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own comments"))
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
