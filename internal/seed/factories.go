// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"skatespot/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Spot names lean on real skate vocabulary rather than generic lorem ipsum.
var spotNouns = []string{
	"Ledges", "Rail", "Stair Set", "Banks", "Plaza", "Bowl", "Gap",
	"Manual Pad", "Quarterpipe", "Hubba", "Curb", "Flatground",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand

	// Seeded spots cluster around this point so the map view has something
	// to show. Defaults to downtown Calgary.
	centerLon float64
	centerLat float64
	spreadDeg float64
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:        db,
		r:         rand.New(rand.NewSource(time.Now().UnixNano())),
		centerLon: -114.0719,
		centerLat: 51.0447,
		spreadDeg: 0.12,
	}
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:     gofakeit.Email(),
		Name:      gofakeit.Name(),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		LastLogin: time.Now().Add(-time.Duration(f.r.Intn(720)) * time.Hour),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSpot constructs and persists a sample spot near the factory's center
// point, authored by the given user.
func (f *Factory) CreateSpot(user *models.User, overrides ...func(*models.Spot)) (*models.Spot, error) {
	noun := spotNouns[f.r.Intn(len(spotNouns))]
	spot := &models.Spot{
		Name:        fmt.Sprintf("%s %s", gofakeit.Street(), noun),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Location: models.Point{
			Lon: f.centerLon + (f.r.Float64()-0.5)*f.spreadDeg,
			Lat: f.centerLat + (f.r.Float64()-0.5)*f.spreadDeg,
		},
		Photos: models.PhotoList{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		},
		UserID: user.ID,
	}
	spot.CreatedAt = time.Now().Add(-time.Duration(f.r.Intn(90*24)) * time.Hour)

	for _, override := range overrides {
		override(spot)
	}
	if err := f.db.Create(spot).Error; err != nil {
		return nil, err
	}
	return spot, nil
}

// CreateComment persists a comment by the given user on the given spot.
func (f *Factory) CreateComment(user *models.User, spot *models.Spot) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(f.r.Intn(12) + 3),
		SpotID:  spot.ID,
		UserID:  user.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateVote persists a vote, skewed towards upvotes the way real voting
// data tends to be.
func (f *Factory) CreateVote(user *models.User, spot *models.Spot) error {
	value := 1
	if f.r.Intn(5) == 0 {
		value = -1
	}
	vote := &models.Vote{
		UserID: user.ID,
		SpotID: spot.ID,
		Value:  value,
	}
	return f.db.Create(vote).Error
}
