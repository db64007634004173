// Command seed runs the database seeder for skatespot.
package main

import (
	"flag"
	"log"

	"skatespot/internal/config"
	"skatespot/internal/database"
	"skatespot/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numSpots := flag.Int("spots", 80, "Number of spots to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d spots, clean=%v\n", *numUsers, *numSpots, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(*numUsers, *numSpots); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
