// Command migrate applies the embedded schema migrations without starting
// the server, for deployments that run migrations as a separate step.
package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/good-pics/backend/internal/config"
	"github.com/good-pics/backend/internal/migrations"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	down := flag.Bool("down", false, "roll back the most recent migration instead of migrating up")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	if *down {
		if err := goose.Down(db, "."); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Rolled back one migration")
		return
	}

	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}
