package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skatespot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// shortIDAttempts bounds the regenerate-and-retry loop when a freshly
// generated short ID collides with an existing one.
const shortIDAttempts = 5

// BoundingBox is a north/south/east/west rectangle in degrees used to
// geographically filter spots.
type BoundingBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// ListSpotsParams carries pagination and the optional geofilter.
type ListSpotsParams struct {
	Limit  int
	Offset int
	BBox   *BoundingBox
}

// SpotRepository defines the interface for spot and vote data operations.
// Every read takes the viewer's user ID (uuid.Nil when anonymous) so results
// carry the viewer's own vote alongside the aggregate score.
type SpotRepository interface {
	Create(ctx context.Context, spot *models.Spot) error
	GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*models.Spot, error)
	GetByShortID(ctx context.Context, shortID string, viewerID uuid.UUID) (*models.Spot, error)
	List(ctx context.Context, params ListSpotsParams, viewerID uuid.UUID) ([]*models.Spot, error)
	Update(ctx context.Context, spot *models.Spot) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertVote(ctx context.Context, userID, spotID uuid.UUID, value int) error
	RemoveVote(ctx context.Context, userID, spotID uuid.UUID) error
}

type spotRepository struct {
	db *gorm.DB
}

// NewSpotRepository creates a new spot repository
func NewSpotRepository(db *gorm.DB) SpotRepository {
	return &spotRepository{db: db}
}

// Create inserts the spot, regenerating the short ID on a uniqueness
// collision. The loop is bounded; with an 8-character alphanumeric alias a
// collision is already rare, two in a row vanishingly so.
func (r *spotRepository) Create(ctx context.Context, spot *models.Spot) error {
	for attempt := 0; attempt < shortIDAttempts; attempt++ {
		err := r.db.WithContext(ctx).Create(spot).Error
		if err == nil {
			return nil
		}
		if isShortIDCollision(err) {
			spot.ShortID = models.NewShortID()
			continue
		}
		return err
	}
	return fmt.Errorf("repository: could not allocate a unique short ID after %d attempts", shortIDAttempts)
}

func (r *spotRepository) GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*models.Spot, error) {
	var spot models.Spot
	err := r.applySpotDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Comments", commentOrder).
		Preload("Comments.User").
		First(&spot, "spots.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Spot", id)
		}
		return nil, err
	}
	return &spot, nil
}

func (r *spotRepository) GetByShortID(ctx context.Context, shortID string, viewerID uuid.UUID) (*models.Spot, error) {
	var spot models.Spot
	err := r.applySpotDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Comments", commentOrder).
		Preload("Comments.User").
		First(&spot, "spots.short_id = ?", shortID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Spot", shortID)
		}
		return nil, err
	}
	return &spot, nil
}

func (r *spotRepository) List(ctx context.Context, params ListSpotsParams, viewerID uuid.UUID) ([]*models.Spot, error) {
	var spots []*models.Spot
	q := r.applySpotDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Comments", commentOrder).
		Preload("Comments.User")

	if params.BBox != nil {
		b := params.BBox
		// ST_MakeEnvelope takes (xmin, ymin, xmax, ymax): longitude first,
		// matching the storage engine's geometry convention.
		q = q.Where(
			"ST_Within(spots.location, ST_MakeEnvelope(?, ?, ?, ?, 4326))",
			b.West, b.South, b.East, b.North,
		)
	}

	err := q.Order("spots.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&spots).Error
	if err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *spotRepository) Update(ctx context.Context, spot *models.Spot) error {
	return r.db.WithContext(ctx).Save(spot).Error
}

func (r *spotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Comments and votes go with the spot via the FK cascade.
	return r.db.WithContext(ctx).Delete(&models.Spot{}, "id = ?", id).Error
}

// UpsertVote enforces one vote row per (user, spot): a second vote by the
// same user overwrites the value. Concurrent upserts are resolved by the
// uniqueness constraint; the last writer wins.
func (r *spotRepository) UpsertVote(ctx context.Context, userID, spotID uuid.UUID, value int) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO votes (id, user_id, spot_id, value, created_at)
		 VALUES (?, ?, ?, ?, NOW())
		 ON CONFLICT (user_id, spot_id) DO UPDATE SET value = EXCLUDED.value`,
		uuid.New(), userID, spotID, value,
	).Error
}

// RemoveVote deletes the caller's vote. Removing a vote that does not exist
// is a no-op.
func (r *spotRepository) RemoveVote(ctx context.Context, userID, spotID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND spot_id = ?", userID, spotID).
		Delete(&models.Vote{}).Error
}

// applySpotDetails adds subqueries computing the aggregate score and the
// viewer's own vote in a single query.
func (r *spotRepository) applySpotDetails(db *gorm.DB, viewerID uuid.UUID) *gorm.DB {
	selectQuery := "spots.*, " +
		"COALESCE((SELECT SUM(votes.value) FROM votes WHERE votes.spot_id = spots.id), 0) as score"

	if viewerID != uuid.Nil {
		return db.Select(
			selectQuery+", (SELECT votes.value FROM votes WHERE votes.spot_id = spots.id AND votes.user_id = ?) as my_vote",
			viewerID,
		)
	}

	return db.Select(selectQuery + ", NULL as my_vote")
}

func commentOrder(db *gorm.DB) *gorm.DB {
	return db.Order("comments.created_at DESC")
}

// isShortIDCollision checks for a unique violation on the spot short-ID index.
func isShortIDCollision(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "short_id")
	}
	// Fallback for drivers that do not expose SQLSTATE
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") && strings.Contains(msg, "short_id")
}
