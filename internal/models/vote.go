package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is a single user's +1/-1 on a spot.
// The combination of UserID and SpotID must be unique; a second vote by the
// same user on the same spot overwrites the value.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_spot_vote" json:"user_id"`
	SpotID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_spot_vote" json:"spot_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (v *Vote) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
