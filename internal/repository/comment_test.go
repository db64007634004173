package repository

import (
	"context"
	"testing"

	"skatespot/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	spotID := uuid.New()
	userID := uuid.New()
	comment := &models.Comment{
		Content: "waxed ledge, grinds fine",
		SpotID:  spotID,
		UserID:  userID,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// reload with author
	mock.ExpectQuery(`SELECT \* FROM "comments" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "spot_id", "user_id"}).
			AddRow(comment.ID, comment.Content, spotID, userID))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(userID, "Author"))

	err := repo.Create(context.Background(), comment)
	require.NoError(t, err)
	assert.Equal(t, "Author", comment.User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`FROM "comments"`).
		WillReturnError(gorm.ErrRecordNotFound)

	comment, err := repo.GetByID(context.Background(), uuid.New())
	assert.Nil(t, comment)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCommentRepository_ListBySpot_NewestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	spotID := uuid.New()
	mock.ExpectQuery(`WHERE spot_id = \$1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "spot_id"}))

	comments, err := repo.ListBySpot(context.Background(), spotID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), uuid.New()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
