package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/doorbell/internal/infrastructure/database"
	"github.com/johnquangdev/doorbell/pkg/config"
)

// migrate applies or rolls back the embedded schema migrations.
//
//	go run ./cmd/migrate            # up
//	go run ./cmd/migrate -down -n 1 # roll back one
//	go run ./cmd/migrate -status
func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	limit := flag.Int("n", 0, "maximum number of migrations to run (0 = all)")
	status := flag.Bool("status", false, "print applied migrations and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database using GORM
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Get the underlying SQL database connection from GORM
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database connection: %v", err)
	}

	if *status {
		records, err := migrate.GetMigrationRecords(sqlDB, "postgres")
		if err != nil {
			log.Fatalf("Failed to read migration records: %v", err)
		}
		for _, r := range records {
			fmt.Printf("%s\t%s\n", r.AppliedAt.Format("2006-01-02 15:04:05"), r.Id)
		}
		os.Exit(0)
	}

	direction := migrate.Up
	if *down {
		direction = migrate.Down
		log.Println("⏪ Rolling back embedded migrations...")
	} else {
		log.Println("🔄 Applying embedded migrations...")
	}

	n, err := migrate.ExecMax(sqlDB, "postgres", database.Migrations(), direction, *limit)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Printf("✅ Successfully ran %d migration(s)!\n", n)
}
