// Command migrate applies the database schema explicitly. Production
// deployments run this before starting the server; development environments
// migrate automatically on connect.
package main

import (
	"log"

	"skatespot/internal/config"
	"skatespot/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations applied")
}
