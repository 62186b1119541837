// Seed tool: fills the development database with synthetic search sessions.
package main

import (
	"flag"
	"log"

	"farelytics/internal/config"
	"farelytics/internal/database"
	"farelytics/internal/logger"
	"farelytics/internal/seeder"
)

func main() {
	count := flag.Int("count", 500, "number of search sessions to generate")
	daysBack := flag.Int("days", 45, "spread sessions over the past N days")
	flag.Parse()

	cfg := config.GetConfig()
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	slogger := logger.New(cfg)

	dbManager := database.NewManager(cfg, slogger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbManager.Close()

	if err := dbManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s := seeder.NewSeeder(dbManager.GetConnection(), slogger, *count)
	if err := s.Seed(*daysBack); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
