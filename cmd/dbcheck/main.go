package main

import (
	"fmt"
	"log"

	"attendance-system/app/config"
)

// Connectivity check: connects with the same configuration the server
// uses and prints a few row counts.
func main() {
	config.InitDB()
	db := config.GetDB()
	defer db.Close()

	var users, attendance int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users); err != nil {
		log.Fatalf("users query failed: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM attendance").Scan(&attendance); err != nil {
		log.Fatalf("attendance query failed: %v", err)
	}

	fmt.Printf("Connection OK: %d users, %d attendance records\n", users, attendance)
}
