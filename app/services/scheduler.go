package services

import (
	"log"
	"time"

	"attendance-system/app/routes/auth"
)

// StartScheduler starts the background maintenance loop. The only
// periodic task is pruning stale login-attempt counters so clients that
// never came back do not accumulate in memory.
func StartScheduler() {
	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			auth.PruneLoginAttempts()
		}
	}()
}
