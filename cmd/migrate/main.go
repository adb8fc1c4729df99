package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"relay-chat/config"
	"relay-chat/internal/redis"
	"relay-chat/internal/repository"
	"relay-chat/internal/services"
	"relay-chat/pkg/database"
	"relay-chat/pkg/logger"

	"gorm.io/gorm"
)

const usage = `
Relay Chat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create or update all tables
  down        Drop all tables
  status      Show database connection and table status
  seed        Seed development users, a group and a direct message
  reset       Drop all tables and re-run migrations (DANGEROUS)

Flags:
  -password string   Password for seeded users (default "password123")
  -yes               Skip the reset countdown

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate seed
  go run ./cmd/migrate reset -yes
`

func main() {
	password := flag.String("password", "password123", "Password for seeded users")
	yes := flag.Bool("yes", false, "Skip the reset countdown")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	l := logger.New(cfg.AppMode)
	defer l.Sync()

	db, err := database.Connect(cfg, l)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer database.Close(db)

	switch command {
	case "up":
		runMigrationsUp(db)
	case "down":
		runMigrationsDown(db, profileFlusher(cfg, db, l))
	case "status":
		showStatus(db)
	case "seed":
		runSeed(db, cfg, l, *password)
	case "reset":
		runReset(db, profileFlusher(cfg, db, l), *yes)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("Running migrations UP...")
	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully!")
}

// profileFlusher connects to Redis when enabled so that dropping users also
// drops their cached profiles.
func profileFlusher(cfg *config.Config, db *gorm.DB, l *logger.Logger) database.ProfileFlusher {
	if !cfg.RedisEnabled {
		return nil
	}
	rdb, err := redis.Connect(context.Background(), redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, 3*time.Second)
	if err != nil {
		log.Printf("Redis unavailable, cached profiles are kept until they expire: %v", err)
		return nil
	}
	cache := redis.NewCacheStore(rdb, redis.CacheConfig{UserTTL: cfg.ProfileCacheTTL})
	return services.NewUserService(repository.NewStore(db).Users(), cache, l)
}

func runMigrationsDown(db *gorm.DB, profiles database.ProfileFlusher) {
	log.Println("Dropping all tables...")
	if err := database.Drop(context.Background(), db, profiles); err != nil {
		log.Fatalf("Rollback failed: %v", err)
	}
	log.Println("Rollback completed successfully!")
}

func showStatus(db *gorm.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	statuses, err := database.TableStatuses(db)
	if err != nil {
		log.Fatalf("Status check failed: %v", err)
	}
	for _, st := range statuses {
		if st.Exists {
			log.Printf("Table %-26s exists (%d rows)", st.Name, st.Rows)
		} else {
			log.Printf("Table %-26s does not exist", st.Name)
		}
	}
}

func runSeed(db *gorm.DB, cfg *config.Config, l *logger.Logger, password string) {
	log.Println("Seeding database...")

	seedCfg := database.DefaultSeedConfig()
	seedCfg.Password = password

	result, err := database.Seed(context.Background(), db, cfg, seedCfg, l)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	for _, u := range result.Users {
		log.Printf("   - user %s (ID: %s)", u.Username, u.ID)
	}
	log.Printf("   - group %q (ID: %s)", result.Group.ChatName, result.Group.ID)
	log.Println("Seeding completed!")
}

func runReset(db *gorm.DB, profiles database.ProfileFlusher, skipCountdown bool) {
	log.Println("WARNING: This will DROP all tables and re-run migrations!")

	if !skipCountdown {
		log.Println("Press Ctrl+C within 5 seconds to cancel...")
		time.Sleep(5 * time.Second)
	}

	if err := database.Reset(context.Background(), db, profiles); err != nil {
		log.Fatalf("Reset failed: %v", err)
	}
	log.Println("Database reset completed!")
}
