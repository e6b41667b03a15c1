// Command backup dumps the database to an encrypted archive in object
// storage, restores from one, or prunes old archives.
//
//	backup                      create a new archive
//	backup restore <key> --confirm
//	backup clean --keep N [--confirm]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/backup"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/database"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/storage"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

const restoreBatchSize = 500

// backupTables lists tables in dependency order so restore can insert
// parents before children
var backupTables = []string{
	"users",
	"sessions",
	"meetings",
	"transcripts",
	"voice_profiles",
	"ai_jobs",
	"api_calls",
	"cost_budgets",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	key, err := backup.ParseKey(cfg.Backup.EncryptionKey)
	if err != nil {
		log.Fatalf("BACKUP_ENCRYPTION_KEY invalid: %v", err)
	}

	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	ctx := context.Background()

	args := os.Args[1:]
	command := "backup"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "backup":
		runBackup(ctx, cfg, key, minioClient)
	case "restore":
		runRestore(ctx, cfg, key, minioClient, args[1:])
	case "clean":
		runClean(ctx, cfg, minioClient, args[1:])
	default:
		log.Fatalf("Unknown command %q (want backup, restore or clean)", command)
	}
}

func runBackup(ctx context.Context, cfg *config.Config, key []byte, minioClient *storage.MinIOClient) {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("🗄️  Dumping tables...")
	archive := backup.NewArchive()
	for _, table := range backupTables {
		var rows []map[string]interface{}
		if err := db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
			log.Fatalf("Failed to read table %s: %v", table, err)
		}
		for _, row := range rows {
			if err := archive.Append(table, row); err != nil {
				log.Fatalf("Failed to archive row from %s: %v", table, err)
			}
		}
		log.Printf("   %s: %d rows", table, len(rows))
	}

	sealed, manifest, err := archive.Seal(key)
	if err != nil {
		log.Fatalf("Failed to seal archive: %v", err)
	}

	ts := time.Now().UTC().Format("2006-01-02T150405Z")
	archiveKey := cfg.Backup.Prefix + ts + ".json.gz.enc"
	manifestKey := cfg.Backup.Prefix + ts + ".manifest.json"

	if err := minioClient.UploadBytes(ctx, archiveKey, sealed, "application/octet-stream"); err != nil {
		log.Fatalf("Failed to upload archive: %v", err)
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal manifest: %v", err)
	}
	if err := minioClient.UploadBytes(ctx, manifestKey, manifestJSON, "application/json"); err != nil {
		log.Fatalf("Failed to upload manifest: %v", err)
	}

	log.Printf("✅ Backup complete: %s (%d bytes, sha256 %s)", archiveKey, manifest.SizeBytes, manifest.SHA256[:12])
}

// parseRestoreArgs accepts --confirm before or after the archive key;
// stdlib flag parsing stops at the first positional, so a plain FlagSet
// would never see a trailing flag
func parseRestoreArgs(args []string) (archiveKey string, confirm bool, err error) {
	var positionals []string
	for _, arg := range args {
		switch {
		case arg == "--confirm" || arg == "-confirm":
			confirm = true
		case strings.HasPrefix(arg, "-"):
			return "", false, fmt.Errorf("unknown flag %q", arg)
		default:
			positionals = append(positionals, arg)
		}
	}
	if len(positionals) != 1 {
		return "", false, fmt.Errorf("usage: backup restore <archive-key> --confirm")
	}
	return positionals[0], confirm, nil
}

func runRestore(ctx context.Context, cfg *config.Config, key []byte, minioClient *storage.MinIOClient, args []string) {
	archiveKey, confirmed, err := parseRestoreArgs(args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if !confirmed {
		log.Fatalf("Refusing to restore without --confirm. Restoring inserts rows into the live database.")
	}

	sealed, err := minioClient.DownloadFile(ctx, archiveKey)
	if err != nil {
		log.Fatalf("Failed to download archive: %v", err)
	}

	// Verify against the manifest when one sits next to the archive
	manifestKey := strings.TrimSuffix(archiveKey, ".json.gz.enc") + ".manifest.json"
	if manifestJSON, err := minioClient.DownloadFile(ctx, manifestKey); err == nil {
		var manifest backup.Manifest
		if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
			log.Fatalf("Failed to parse manifest: %v", err)
		}
		if err := backup.Verify(sealed, &manifest); err != nil {
			log.Fatalf("Archive verification failed: %v", err)
		}
		log.Println("✅ Archive verified against manifest")
	} else {
		log.Printf("⚠️  No manifest found at %s, restoring without verification", manifestKey)
	}

	records, err := backup.Open(sealed, key)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}

	byTable := make(map[string][]map[string]interface{})
	for _, rec := range records {
		var row map[string]interface{}
		if err := json.Unmarshal(rec.Row, &row); err != nil {
			log.Fatalf("Failed to parse row for table %s: %v", rec.Table, err)
		}
		byTable[rec.Table] = append(byTable[rec.Table], row)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	for _, table := range backupTables {
		rows := byTable[table]
		if len(rows) == 0 {
			continue
		}
		if err := insertBatches(ctx, db, table, rows); err != nil {
			log.Fatalf("Failed to restore table %s: %v", table, err)
		}
		log.Printf("   %s: %d rows restored", table, len(rows))
	}

	log.Printf("✅ Restore complete: %d records from %s", len(records), archiveKey)
}

// insertBatches writes rows in fixed-size chunks
func insertBatches(ctx context.Context, db *gorm.DB, table string, rows []map[string]interface{}) error {
	for start := 0; start < len(rows); start += restoreBatchSize {
		end := start + restoreBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := db.WithContext(ctx).Table(table).Create(rows[start:end]).Error; err != nil {
			return fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func runClean(ctx context.Context, cfg *config.Config, minioClient *storage.MinIOClient, args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	keep := fs.Int("keep", 5, "number of most recent archives to keep")
	confirm := fs.Bool("confirm", false, "actually delete old archives")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	if *keep < 1 {
		log.Fatalf("--keep must be at least 1")
	}

	files, err := minioClient.ListFiles(ctx, cfg.Backup.Prefix)
	if err != nil {
		log.Fatalf("Failed to list archives: %v", err)
	}

	var archives []string
	for _, f := range files {
		if strings.HasSuffix(f, ".json.gz.enc") {
			archives = append(archives, f)
		}
	}
	// Keys embed a UTC timestamp, so lexical order is chronological
	sort.Sort(sort.Reverse(sort.StringSlice(archives)))

	if len(archives) <= *keep {
		log.Printf("✅ Nothing to clean: %d archive(s), keeping %d", len(archives), *keep)
		return
	}

	stale := archives[*keep:]
	for _, archiveKey := range stale {
		manifestKey := strings.TrimSuffix(archiveKey, ".json.gz.enc") + ".manifest.json"
		if !*confirm {
			log.Printf("   would delete %s", archiveKey)
			continue
		}
		if err := minioClient.RemoveFile(ctx, archiveKey); err != nil {
			log.Fatalf("Failed to delete %s: %v", archiveKey, err)
		}
		if err := minioClient.RemoveFile(ctx, manifestKey); err != nil {
			log.Printf("⚠️  Failed to delete manifest %s: %v", manifestKey, err)
		}
		log.Printf("   deleted %s", archiveKey)
	}

	if !*confirm {
		log.Printf("ℹ️  Dry run: %d archive(s) would be deleted. Re-run with --confirm.", len(stale))
		return
	}
	log.Printf("✅ Clean complete: deleted %d archive(s), kept %d", len(stale), *keep)
}
