// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"skatespot/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertByEmail(ctx context.Context, email, name, avatarURL string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// UpsertByEmail creates the user on first sign-in and refreshes name, avatar
// and last login on every subsequent one. Email matching is a case-sensitive
// exact match.
func (r *userRepository) UpsertByEmail(ctx context.Context, email, name, avatarURL string) (*models.User, error) {
	now := time.Now().UTC()

	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			Email:     email,
			Name:      name,
			AvatarURL: avatarURL,
			LastLogin: now,
		}
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		return user, nil
	}

	user.Name = name
	user.AvatarURL = avatarURL
	user.LastLogin = now
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}
