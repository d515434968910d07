package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cmegrid/adapters/sqlstore"
	"cmegrid/domain/run"
	"cmegrid/internal/config"
	"cmegrid/internal/errors"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <archive_dsn> [manifest_dir]")
	}

	dsn := os.Args[1]
	driver := os.Getenv("ARCHIVE_DRIVER")
	if driver == "" {
		driver = config.DefaultArchiveDriver
	}

	ctx := context.Background()
	db, err := sqlstore.Open(ctx, driver, dsn)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer db.Close()
	log.Printf("Archive schema is up to date (%s)", driver)

	if len(os.Args) < 3 {
		return
	}

	manifestDir := os.Args[2]
	repo := sqlstore.NewRunRepository(db)

	files, err := findManifestFiles(manifestDir)
	if err != nil {
		log.Fatalf("Failed to find manifest files: %v", err)
	}
	log.Printf("Found %d manifest files to import", len(files))

	imported := 0
	skipped := 0

	for _, file := range files {
		manifests, err := loadManifestsFromFile(file)
		if err != nil {
			log.Printf("Failed to load manifests from %s: %v", file, err)
			skipped++
			continue
		}

		for i := range manifests {
			m := &manifests[i]
			if _, err := repo.GetRun(ctx, m.RunID); err == nil {
				log.Printf("Run %s already archived, skipping", m.RunID)
				skipped++
				continue
			} else if !errors.HasCode(err, errors.CodeNotFound) {
				log.Printf("Failed to look up run %s: %v", m.RunID, err)
				skipped++
				continue
			}

			if err := repo.SaveRun(ctx, m); err != nil {
				log.Printf("Failed to save run %s: %v", m.RunID, err)
				skipped++
				continue
			}

			imported++
			log.Printf("Imported run %s from %s", m.RunID, filepath.Base(file))
		}
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

func findManifestFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// loadManifestsFromFile accepts a single manifest or the array printed by
// the history command
func loadManifestsFromFile(filePath string) ([]run.Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var manifests []run.Manifest
		if err := json.Unmarshal(data, &manifests); err != nil {
			return nil, err
		}
		return manifests, nil
	}

	var manifest run.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return []run.Manifest{manifest}, nil
}
