// Command migrate manages the database schema via sql-migrate and rewrites
// object storage paths.
//
//	migrate up|down|status
//	migrate storage --prefix <regex> --to <replacement> [--confirm]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/database"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/storage"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

const storageCopyRetries = 3

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	command := "status"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runSchema(cfg, migrate.Up)
	case "down":
		runSchema(cfg, migrate.Down)
	case "status":
		runStatus(cfg)
	case "storage":
		runStorage(cfg, os.Args[2:])
	default:
		log.Fatalf("Unknown command %q (want up, down, status or storage)", command)
	}
}

func runSchema(cfg *config.Config, direction migrate.MigrationDirection) {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database connection: %v", err)
	}

	migrations := &migrate.FileMigrationSource{Dir: "migrations"}

	n, err := migrate.Exec(sqlDB, "postgres", migrations, direction)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	word := "applied"
	if direction == migrate.Down {
		word = "rolled back"
	}
	log.Printf("✅ Successfully %s %d migration(s)", word, n)
}

func runStatus(cfg *config.Config) {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database connection: %v", err)
	}

	migrations := &migrate.FileMigrationSource{Dir: "migrations"}
	planned, err := migrations.FindMigrations()
	if err != nil {
		log.Fatalf("Failed to read migrations directory: %v", err)
	}

	records, err := migrate.GetMigrationRecords(sqlDB, "postgres")
	if err != nil {
		log.Fatalf("Failed to read migration records: %v", err)
	}
	applied := make(map[string]time.Time, len(records))
	for _, r := range records {
		applied[r.Id] = r.AppliedAt
	}

	for _, m := range planned {
		if at, ok := applied[m.Id]; ok {
			log.Printf("   ✅ %s (applied %s)", m.Id, at.Format(time.RFC3339))
		} else {
			log.Printf("   ⏳ %s (pending)", m.Id)
		}
	}
	log.Printf("%d migration(s), %d applied", len(planned), len(records))
}

// runStorage rewrites object keys matching a pattern. Each object is
// copied to its new key, verified by size, then deleted. Dry-run unless
// --confirm is given.
func runStorage(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("storage", flag.ExitOnError)
	prefix := fs.String("prefix", "", "regular expression matched against object keys")
	to := fs.String("to", "", "replacement for matched portion ($1-style groups allowed)")
	confirm := fs.Bool("confirm", false, "actually move objects")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	if *prefix == "" || *to == "" {
		log.Fatalf("Usage: migrate storage --prefix <regex> --to <replacement> [--confirm]")
	}

	pattern, err := regexp.Compile(*prefix)
	if err != nil {
		log.Fatalf("Invalid --prefix pattern: %v", err)
	}

	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	ctx := context.Background()
	keys, err := minioClient.ListFiles(ctx, "")
	if err != nil {
		log.Fatalf("Failed to list objects: %v", err)
	}

	var moved, skipped, failed int
	for _, key := range keys {
		if !pattern.MatchString(key) {
			continue
		}
		newKey := pattern.ReplaceAllString(key, *to)
		if newKey == key {
			skipped++
			continue
		}

		if !*confirm {
			log.Printf("   would move %s -> %s", key, newKey)
			moved++
			continue
		}

		if err := moveObject(ctx, minioClient, key, newKey); err != nil {
			log.Printf("❌ Failed to move %s: %v", key, err)
			failed++
			continue
		}
		log.Printf("   moved %s -> %s", key, newKey)
		moved++
	}

	if !*confirm {
		log.Printf("ℹ️  Dry run: %d object(s) would be moved, %d unchanged. Re-run with --confirm.", moved, skipped)
		return
	}
	log.Printf("✅ Storage migration complete: %d moved, %d unchanged, %d failed", moved, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// moveObject copies an object to its new key, verifies the copy by size
// and deletes the original. The copy is retried on transient errors.
func moveObject(ctx context.Context, minioClient *storage.MinIOClient, srcKey, dstKey string) error {
	srcSize, _, err := minioClient.StatFile(ctx, srcKey)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), storageCopyRetries)
	copyAndVerify := func() error {
		if err := minioClient.CopyFile(ctx, srcKey, dstKey); err != nil {
			return err
		}
		dstSize, _, err := minioClient.StatFile(ctx, dstKey)
		if err != nil {
			return fmt.Errorf("stat copy: %w", err)
		}
		if dstSize != srcSize {
			return fmt.Errorf("size mismatch after copy: source %d, copy %d", srcSize, dstSize)
		}
		return nil
	}
	if err := backoff.Retry(copyAndVerify, backoff.WithContext(policy, ctx)); err != nil {
		return err
	}

	// Only delete the original once the copy is verified
	if err := minioClient.RemoveFile(ctx, srcKey); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}
	return nil
}
