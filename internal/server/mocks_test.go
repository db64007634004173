package server

import (
	"context"

	"skatespot/internal/models"
	"skatespot/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpsertByEmail(ctx context.Context, email, name, avatarURL string) (*models.User, error) {
	args := m.Called(ctx, email, name, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockSpotRepository is a mock of the SpotRepository interface
type MockSpotRepository struct {
	mock.Mock
}

func (m *MockSpotRepository) Create(ctx context.Context, spot *models.Spot) error {
	args := m.Called(ctx, spot)
	return args.Error(0)
}

func (m *MockSpotRepository) GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*models.Spot, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Spot), args.Error(1)
}

func (m *MockSpotRepository) GetByShortID(ctx context.Context, shortID string, viewerID uuid.UUID) (*models.Spot, error) {
	args := m.Called(ctx, shortID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Spot), args.Error(1)
}

func (m *MockSpotRepository) List(ctx context.Context, params repository.ListSpotsParams, viewerID uuid.UUID) ([]*models.Spot, error) {
	args := m.Called(ctx, params, viewerID)
	return args.Get(0).([]*models.Spot), args.Error(1)
}

func (m *MockSpotRepository) Update(ctx context.Context, spot *models.Spot) error {
	args := m.Called(ctx, spot)
	return args.Error(0)
}

func (m *MockSpotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSpotRepository) UpsertVote(ctx context.Context, userID, spotID uuid.UUID, value int) error {
	args := m.Called(ctx, userID, spotID, value)
	return args.Error(0)
}

func (m *MockSpotRepository) RemoveVote(ctx context.Context, userID, spotID uuid.UUID) error {
	args := m.Called(ctx, userID, spotID)
	return args.Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListBySpot(ctx context.Context, spotID uuid.UUID, limit, offset int) ([]*models.Comment, error) {
	args := m.Called(ctx, spotID, limit, offset)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
