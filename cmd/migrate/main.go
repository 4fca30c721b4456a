package main

import (
	"log"

	"attendance-system/app/config"
	"attendance-system/app/database"
)

// Runs the schema migrations without starting the server. Useful for
// provisioning a fresh database before first deployment.
func main() {
	config.InitDB()
	db := config.GetDB()
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Migration failed:", err)
	}
	log.Println("Migrations applied")
}
