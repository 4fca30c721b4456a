package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const (
	AppName = "Student Attendance System"

	// SessionTimeout is the idle expiry for a logged-in session.
	SessionTimeout = 3600 * time.Second

	// SessionRotationInterval bounds how long one session id stays in
	// use; a live session gets a fresh id once this interval elapses.
	SessionRotationInterval = 30 * time.Minute

	// MaxLoginAttempts failed logins from one client trigger a lockout
	// that lasts LockoutWindow.
	MaxLoginAttempts = 5
	LockoutWindow    = 15 * time.Minute
)

type Config struct {
	DB *sql.DB
}

var AppConfig *Config

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	// .env is optional; deployments may set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	psqlInfo := os.Getenv("DATABASE_URL")
	if psqlInfo == "" {
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := os.Getenv("DB_PASSWORD")
		dbname := getEnv("DB_NAME", "attendance_system")
		sslmode := getEnv("DB_SSLMODE", "disable")

		psqlInfo = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s connect_timeout=10",
			host, port, user, dbname, sslmode)
		if password != "" {
			psqlInfo += " password=" + password
		}
		log.Printf("Connecting to PostgreSQL at %s:%s/%s", host, port, dbname)
	}

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err = db.Ping(); err != nil {
		log.Printf("Database connection failed: %v", err)
		log.Println("Check DATABASE_URL or DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME")
		log.Fatal("Cannot establish database connection")
	}

	AppConfig = &Config{DB: db}
	log.Println("Database connected successfully")
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

// ListenAddr returns the address the HTTP server binds to.
func ListenAddr() string {
	return getEnv("LISTEN_ADDR", ":8080")
}
