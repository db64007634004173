package repository

import (
	"context"
	"testing"

	"skatespot/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func shortIDViolation() *pgconn.PgError {
	return &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_spots_short_id",
	}
}

func TestSpotRepository_Create_RetriesShortIDCollision(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)
	ctx := context.Background()

	spot := &models.Spot{
		Name:     "Plaza Ledges",
		Location: models.Point{Lon: -114.07, Lat: 51.04},
		UserID:   uuid.New(),
	}

	// first insert collides, second succeeds with a fresh short ID
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "spots"`).
		WillReturnError(shortIDViolation())
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "spots"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(ctx, spot)
	require.NoError(t, err)
	assert.Len(t, spot.ShortID, models.ShortIDLength)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotRepository_Create_GivesUpAfterBoundedAttempts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	for i := 0; i < shortIDAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "spots"`).
			WillReturnError(shortIDViolation())
		mock.ExpectRollback()
	}

	spot := &models.Spot{
		Name:     "Cursed Rail",
		Location: models.Point{Lon: -114.07, Lat: 51.04},
		UserID:   uuid.New(),
	}
	err := repo.Create(context.Background(), spot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short ID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotRepository_Create_OtherErrorsAreNotRetried(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "spots"`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "fk_spots_user"})
	mock.ExpectRollback()

	spot := &models.Spot{
		Name:     "Orphan Spot",
		Location: models.Point{Lon: -114.07, Lat: 51.04},
		UserID:   uuid.New(),
	}
	err := repo.Create(context.Background(), spot)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotRepository_List_BoundingBoxFilter(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	mock.ExpectQuery(`ST_Within\(spots\.location, ST_MakeEnvelope\(\$1, \$2, \$3, \$4, 4326\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "score"}))

	params := ListSpotsParams{
		Limit:  50,
		Offset: 0,
		BBox:   &BoundingBox{West: -114.2, South: 50.9, East: -113.9, North: 51.2},
	}
	spots, err := repo.List(context.Background(), params, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, spots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotRepository_List_AnonymousViewerGetsNullMyVote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "score", "my_vote", "user_id"}).
		AddRow(id, "Downtown Ledges", 7, nil, uuid.New())
	mock.ExpectQuery(`NULL as my_vote`).
		WillReturnRows(rows)
	// preloads for the returned row
	mock.ExpectQuery(`SELECT \* FROM "comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	spots, err := repo.List(context.Background(), ListSpotsParams{Limit: 10}, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, 7, spots[0].Score)
	assert.Nil(t, spots[0].MyVote)
}

func TestSpotRepository_List_SignedInViewerGetsOwnVote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	viewerID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "score", "my_vote", "user_id"}).
		AddRow(uuid.New(), "Downtown Ledges", 7, 1, uuid.New())
	mock.ExpectQuery(`votes\.user_id = \$1\) as my_vote`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	spots, err := repo.List(context.Background(), ListSpotsParams{Limit: 10}, viewerID)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	require.NotNil(t, spots[0].MyVote)
	assert.Equal(t, 1, *spots[0].MyVote)
}

func TestSpotRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	mock.ExpectQuery(`FROM "spots"`).
		WillReturnError(gorm.ErrRecordNotFound)

	spot, err := repo.GetByID(context.Background(), uuid.New(), uuid.Nil)
	assert.Nil(t, spot)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestSpotRepository_GetByShortID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	mock.ExpectQuery(`spots\.short_id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	spot, err := repo.GetByShortID(context.Background(), "abCD1234", uuid.Nil)
	assert.Nil(t, spot)
	assert.Error(t, err)
}

func TestSpotRepository_UpsertVote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	userID := uuid.New()
	spotID := uuid.New()

	mock.ExpectExec(`ON CONFLICT \(user_id, spot_id\) DO UPDATE SET value = EXCLUDED\.value`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertVote(context.Background(), userID, spotID, -1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotRepository_RemoveVote_AbsentVoteIsNoOp(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSpotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "votes"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.RemoveVote(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsShortIDCollision(t *testing.T) {
	assert.True(t, isShortIDCollision(shortIDViolation()))
	assert.False(t, isShortIDCollision(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}))
	assert.False(t, isShortIDCollision(&pgconn.PgError{Code: "23503", ConstraintName: "idx_spots_short_id"}))
	assert.False(t, isShortIDCollision(gorm.ErrRecordNotFound))
}
