package main

import (
	"flag"
	"fmt"
	"log"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"
)

// Creates a user account from the command line, for provisioning the
// first accounts on a new installation.
func main() {
	username := flag.String("username", "", "login username (3-50 characters)")
	password := flag.String("password", "", "initial password (at least 6 characters)")
	role := flag.String("role", "student", "admin, teacher or student")
	fullName := flag.String("name", "", "full name")
	email := flag.String("email", "", "email address (optional)")
	flag.Parse()

	if len(*username) < 3 || len(*username) > 50 || len(*password) < 6 || *fullName == "" {
		log.Fatal("username must be 3-50 characters, password at least 6, and -name is required")
	}
	if !models.Role(*role).Valid() {
		log.Fatal("role must be admin, teacher or student")
	}

	config.InitDB()
	db := config.GetDB()
	defer db.Close()

	user := &models.User{
		Username: *username,
		Role:     models.Role(*role),
		FullName: *fullName,
		Email:    *email,
	}
	if err := database.CreateUser(db, user, *password); err != nil {
		log.Fatalf("Error creating user: %v", err)
	}

	fmt.Printf("User created successfully: %s (%s, %s)\n", user.FullName, user.Username, user.Role)
}
