package models

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShortIDLength is the length of a spot's URL-friendly alias.
const ShortIDLength = 8

const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Spot is a user-submitted geotagged point of interest.
type Spot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShortID     string    `gorm:"type:varchar(8);uniqueIndex;not null" json:"short_id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Location    Point     `json:"location"`
	Photos      PhotoList `gorm:"type:jsonb" json:"photos"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	Comments    []Comment `gorm:"foreignKey:SpotID;constraint:OnDelete:CASCADE" json:"comments"`
	Votes       []Vote    `gorm:"foreignKey:SpotID;constraint:OnDelete:CASCADE" json:"-"`
	// Score is not persisted; computed at query time as the sum of vote values
	Score int `gorm:"->" json:"score"`
	// MyVote is the requesting user's own vote value (computed, nil when anonymous or not voted)
	MyVote    *int      `gorm:"->" json:"my_vote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID and a short ID when the caller did not set them.
func (s *Spot) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.ShortID == "" {
		s.ShortID = NewShortID()
	}
	return nil
}

// NewShortID returns a random fixed-length alphanumeric alias. Uniqueness is
// enforced by the database constraint; callers retry on collision.
func NewShortID() string {
	b := make([]byte, ShortIDLength)
	max := big.NewInt(int64(len(shortIDAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("models: reading random bytes: %v", err))
		}
		b[i] = shortIDAlphabet[n.Int64()]
	}
	return string(b)
}

// PhotoList is an ordered list of photo URLs stored as a JSONB column.
type PhotoList []string

// Value marshals the list for storage.
func (p PhotoList) Value() (driver.Value, error) {
	if p == nil {
		p = PhotoList{}
	}
	return json.Marshal(p)
}

// Scan unmarshals the stored JSONB value.
func (p *PhotoList) Scan(value interface{}) error {
	if value == nil {
		*p = PhotoList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into PhotoList", value)
	}
	return json.Unmarshal(data, p)
}
