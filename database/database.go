package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// ConnectDB opens the Postgres pool from DATABASE_URL and verifies the
// connection with a bounded ping retry. Transient connectivity hiccups at
// startup are retried here so callers above never see them.
func ConnectDB() (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	const attempts = 5
	for i := 1; i <= attempts; i++ {
		err = db.Ping()
		if err == nil {
			return db, nil
		}
		log.Printf("ConnectDB ping attempt %d/%d failed: %v", i, attempts, err)
		time.Sleep(2 * time.Second)
	}
	db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
}
