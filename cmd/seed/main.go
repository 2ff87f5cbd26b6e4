// Command seed fills a development database with registration requests.
package main

import (
	"context"
	"flag"
	"log"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/middleware"
	"docvault/internal/repository"
	"docvault/internal/security"
	"docvault/internal/seed"
	"docvault/internal/service"
)

func main() {
	fixtures := flag.String("fixtures", "", "YAML fixture file with registration requests")
	fake := flag.Int("fake", 20, "Number of generated pending requests")
	fakeSeed := flag.Int64("seed", 0, "Seed for generated data (0 picks a random one)")
	clean := flag.Bool("clean", false, "Delete all registration requests before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if *clean {
		if err := seed.ClearRequests(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	stores := repository.NewStores(db)
	hasher := security.NewBcryptHasher(security.ResolveCost(cfg.BcryptWork, middleware.Logger))
	registrations := service.NewRegistrationService(
		stores.Requests,
		service.NewAccountService(stores.Users, hasher),
		hasher,
		repository.NewTransactor(db),
		service.NewAccountProvisioner(service.ProvisioningDefaults{StorageQuota: cfg.DefaultStorageQuota}),
		service.NewAuditService(stores.AuditLogs),
	)
	s := seed.NewSeeder(registrations, seed.NewFactory(*fakeSeed))

	if *fixtures != "" {
		fx, err := seed.LoadFixtureFile(*fixtures)
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		res, err := s.ApplyFixtures(ctx, fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("Fixtures: %s", res)
	}

	if *fake > 0 {
		if _, err := s.SeedFake(ctx, *fake); err != nil {
			log.Fatalf("Generated seeding failed: %v", err)
		}
	}

	log.Println("Seeding complete")
}
