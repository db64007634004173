package server

import (
	"strconv"

	"skatespot/internal/models"
	"skatespot/internal/repository"
	"skatespot/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type spotRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Location    *models.Point    `json:"location"`
	Photos      models.PhotoList `json:"photos"`
}

// CreateSpot handles POST /api/spots
func (s *Server) CreateSpot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)

	var req spotRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateSpotName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if req.Location == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Location is required"))
	}
	if err := validation.ValidatePoint(*req.Location); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	spot := &models.Spot{
		Name:        req.Name,
		Description: req.Description,
		Location:    *req.Location,
		Photos:      req.Photos,
		UserID:      userID,
	}

	if err := s.spotRepo.Create(ctx, spot); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Reload so the response carries the author and computed fields.
	spot, err := s.spotRepo.GetByID(ctx, spot.ID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(spot)
}

// GetSpots handles GET /api/spots
//
// The bounding box comes as four query parameters (west, south, east, north
// in degrees) and must be supplied as a complete set. A degenerate box is
// rejected before any query runs.
func (s *Server) GetSpots(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 100)
	viewerID, _ := s.optionalUserID(c)

	params := repository.ListSpotsParams{
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	bbox, err := parseBoundingBox(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	params.BBox = bbox

	spots, err := s.spotRepo.List(ctx, params, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(spots)
}

// GetSpot handles GET /api/spots/:id
func (s *Server) GetSpot(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	spot, err := s.spotRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return respondRepoError(c, err)
	}

	return c.JSON(spot)
}

// GetSpotByShortID handles GET /api/spots/s/:shortId
func (s *Server) GetSpotByShortID(c *fiber.Ctx) error {
	ctx := c.Context()
	shortID := c.Params("shortId")
	if len(shortID) != models.ShortIDLength {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid short ID"))
	}
	viewerID, _ := s.optionalUserID(c)

	spot, err := s.spotRepo.GetByShortID(ctx, shortID, viewerID)
	if err != nil {
		return respondRepoError(c, err)
	}

	return c.JSON(spot)
}

// UpdateSpot handles PUT /api/spots/:id
func (s *Server) UpdateSpot(c *fiber.Ctx) error {
	ctx := c.Context()
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	spot, err := s.spotRepo.GetByID(ctx, spotID, currentUserID(c))
	if err != nil {
		return respondRepoError(c, err)
	}

	return s.applySpotUpdate(c, spot)
}

// UpdateSpotByShortID handles PUT /api/spots/by-short-id/:shortId
func (s *Server) UpdateSpotByShortID(c *fiber.Ctx) error {
	ctx := c.Context()
	shortID := c.Params("shortId")
	if len(shortID) != models.ShortIDLength {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid short ID"))
	}

	spot, err := s.spotRepo.GetByShortID(ctx, shortID, currentUserID(c))
	if err != nil {
		return respondRepoError(c, err)
	}

	return s.applySpotUpdate(c, spot)
}

func (s *Server) applySpotUpdate(c *fiber.Ctx, spot *models.Spot) error {
	userID := currentUserID(c)
	if spot.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only update your own spots"))
	}

	var req spotRequest
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Name != "" {
		if err := validation.ValidateSpotName(req.Name); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		spot.Name = req.Name
	}
	if req.Description != "" {
		spot.Description = req.Description
	}
	if req.Location != nil {
		if err := validation.ValidatePoint(*req.Location); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		spot.Location = *req.Location
	}
	if req.Photos != nil {
		spot.Photos = req.Photos
	}

	if err := s.spotRepo.Update(c.Context(), spot); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Reload so the response carries the same enriched shape as every other
	// spot read and mutation.
	updated, err := s.spotRepo.GetByID(c.Context(), spot.ID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(updated)
}

// DeleteSpot handles DELETE /api/spots/:id
func (s *Server) DeleteSpot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	spot, err := s.spotRepo.GetByID(ctx, spotID, userID)
	if err != nil {
		return respondRepoError(c, err)
	}

	if spot.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own spots"))
	}

	if err := s.spotRepo.Delete(ctx, spotID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}

// VoteSpot handles POST /api/spots/:id/vote
//
// A user has at most one vote per spot; voting again replaces the old value.
func (s *Server) VoteSpot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateVoteValue(req.Value); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	// Confirm the spot exists before upserting; a vote on a missing spot is
	// 404, not a foreign-key error.
	if _, err := s.spotRepo.GetByID(ctx, spotID, uuid.Nil); err != nil {
		return respondRepoError(c, err)
	}

	if err := s.spotRepo.UpsertVote(ctx, userID, spotID, req.Value); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	spot, err := s.spotRepo.GetByID(ctx, spotID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(spot)
}

// UnvoteSpot handles DELETE /api/spots/:id/vote
//
// Removing a vote that was never cast succeeds quietly.
func (s *Server) UnvoteSpot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)
	spotID, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.spotRepo.GetByID(ctx, spotID, uuid.Nil); err != nil {
		return respondRepoError(c, err)
	}

	if err := s.spotRepo.RemoveVote(ctx, userID, spotID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	spot, err := s.spotRepo.GetByID(ctx, spotID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(spot)
}

// parseBoundingBox reads the west/south/east/north query parameters. All four
// must appear together; a partial set is an error rather than a silent
// unfiltered query.
func parseBoundingBox(c *fiber.Ctx) (*repository.BoundingBox, error) {
	raw := map[string]string{
		"west":  c.Query("west"),
		"south": c.Query("south"),
		"east":  c.Query("east"),
		"north": c.Query("north"),
	}

	present := 0
	for _, v := range raw {
		if v != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present < len(raw) {
		return nil, models.NewValidationError("Bounding box requires all of west, south, east and north")
	}

	vals := make(map[string]float64, len(raw))
	for name, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, models.NewValidationError("Invalid bounding box parameter: " + name)
		}
		vals[name] = f
	}

	if err := validation.ValidateBoundingBox(vals["west"], vals["south"], vals["east"], vals["north"]); err != nil {
		return nil, err
	}

	return &repository.BoundingBox{
		West:  vals["west"],
		South: vals["south"],
		East:  vals["east"],
		North: vals["north"],
	}, nil
}
