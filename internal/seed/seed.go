package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"skatespot/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with demo users, spots, comments and votes.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	r       *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		r:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order respects foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Vote{}, &models.Comment{}, &models.Spot{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("seed: clearing %T: %w", model, err)
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// Run seeds the requested number of users and spots, then sprinkles comments
// and votes over them so scores and threads look lived-in.
func (s *Seeder) Run(numUsers, numSpots int) error {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("seed: creating user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	spots := make([]*models.Spot, 0, numSpots)
	for i := 0; i < numSpots; i++ {
		author := users[s.r.Intn(len(users))]
		spot, err := s.factory.CreateSpot(author)
		if err != nil {
			return fmt.Errorf("seed: creating spot: %w", err)
		}
		spots = append(spots, spot)
	}
	log.Printf("Created %d spots", len(spots))

	comments := 0
	for _, spot := range spots {
		for i := 0; i < s.r.Intn(5); i++ {
			commenter := users[s.r.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, spot); err != nil {
				return fmt.Errorf("seed: creating comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("Created %d comments", comments)

	votes := 0
	for _, spot := range spots {
		// Each voter votes at most once per spot; pick a random prefix of a
		// shuffled user list to respect the uniqueness constraint.
		perm := s.r.Perm(len(users))
		n := s.r.Intn(len(users) + 1)
		for _, idx := range perm[:n] {
			if err := s.factory.CreateVote(users[idx], spot); err != nil {
				return fmt.Errorf("seed: creating vote: %w", err)
			}
			votes++
		}
	}
	log.Printf("Created %d votes", votes)

	return nil
}
